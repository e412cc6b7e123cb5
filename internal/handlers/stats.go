package handlers

import (
	"net/http"

	"mailagent/internal/database"
	"mailagent/internal/models"
	"mailagent/internal/scheduler"

	"github.com/labstack/echo/v4"
)

// StatsHandler returns aggregate processing counters
// @Summary System statistics
// @Tags stats
// @Produce json
// @Success 200 {object} models.StatsResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/stats [get]
func StatsHandler(store *database.TriageStore, sched *scheduler.Scheduler) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := store.Stats(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to load stats",
				Error:   err.Error(),
			})
		}

		stats.ProcessingActive = sched != nil && sched.Running()
		return c.JSON(http.StatusOK, stats)
	}
}
