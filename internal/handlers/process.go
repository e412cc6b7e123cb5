package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"mailagent/internal/database"
	"mailagent/internal/models"
	"mailagent/internal/scheduler"

	"github.com/labstack/echo/v4"
)

// ProcessUserHandler triggers a processing pass for one user
// @Summary Process a user's inbox now
// @Description Runs one triage pass outside the scheduled loop
// @Tags processing
// @Produce json
// @Param id path int true "User id"
// @Success 202 {object} models.MessageResponse
// @Failure 400 {object} models.MessageResponse
// @Failure 404 {object} models.MessageResponse
// @Router /api/process/{id} [post]
func ProcessUserHandler(sched *scheduler.Scheduler, users *database.UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Invalid user id",
				Error:   err.Error(),
			})
		}

		user, err := users.GetByID(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to load user",
				Error:   err.Error(),
			})
		}
		if user == nil {
			return c.JSON(http.StatusNotFound, models.MessageResponse{
				Message: "User not found",
			})
		}
		if !user.IsActive {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "User is not active",
			})
		}

		// Detached from the request so a client disconnect does not
		// cancel processing mid-message.
		go func() {
			if err := sched.ProcessUser(context.Background(), user); err != nil {
				fmt.Printf("[API] Manual processing failed for %s: %v\n", user.Email, err)
			}
		}()

		return c.JSON(http.StatusAccepted, models.MessageResponse{
			Message: "Processing started for " + user.Email,
		})
	}
}
