package handlers

import (
	"net/http"

	"golang.org/x/oauth2"

	"mailagent/internal/database"
	"mailagent/internal/gmail"
	"mailagent/internal/models"

	"github.com/labstack/echo/v4"
)

// AuthURLHandler starts the Gmail account linking flow
// @Summary Get Gmail OAuth URL
// @Description Returns the Google consent URL for linking a mailbox
// @Tags auth
// @Produce json
// @Success 200 {object} models.AuthURLResponse
// @Router /api/auth/gmail [get]
func AuthURLHandler(conf *oauth2.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.AuthURLResponse{
			AuthURL: gmail.AuthURL(conf, "state-token"),
		})
	}
}

// AuthCallbackHandler completes the Gmail account linking flow
// @Summary OAuth callback
// @Description Exchanges the authorization code and stores the user's tokens
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Success 200 {object} models.AuthCallbackResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /auth/callback [get]
func AuthCallbackHandler(conf *oauth2.Config, users *database.UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		code := c.QueryParam("code")
		if code == "" {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Authentication failed",
				Error:   "missing authorization code",
			})
		}

		ctx := c.Request().Context()
		token, email, err := gmail.ExchangeCode(ctx, conf, code)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Authentication failed",
				Error:   err.Error(),
			})
		}

		user, err := users.UpsertOAuthUser(ctx, email, token.AccessToken, token.RefreshToken)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Authentication failed",
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.AuthCallbackResponse{
			Message: "Authentication successful",
			UserID:  user.ID,
			Email:   user.Email,
		})
	}
}
