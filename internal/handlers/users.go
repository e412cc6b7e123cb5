package handlers

import (
	"net/http"
	"strconv"

	"mailagent/internal/database"
	"mailagent/internal/models"

	"github.com/labstack/echo/v4"
)

// UsersHandler lists connected users
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} models.UsersResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/users [get]
func UsersHandler(users *database.UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := users.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to list users",
				Error:   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, models.UsersResponse{Users: list})
	}
}

// SetUserActiveHandler activates or deactivates a user
// @Summary Activate or deactivate a user
// @Tags users
// @Produce json
// @Param id path int true "User id"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Router /api/users/{id}/activate [post]
func SetUserActiveHandler(users *database.UserStore, active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Invalid user id",
				Error:   err.Error(),
			})
		}

		found, err := users.SetActive(c.Request().Context(), id, active)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to update user",
				Error:   err.Error(),
			})
		}
		if !found {
			return c.JSON(http.StatusNotFound, models.MessageResponse{
				Message: "User not found",
			})
		}

		msg := "User deactivated"
		if active {
			msg = "User activated"
		}
		return c.JSON(http.StatusOK, models.MessageResponse{Message: msg})
	}
}
