package handlers

import (
	"net/http"
	"strings"

	"mailagent/internal/database"
	"mailagent/internal/models"

	"github.com/labstack/echo/v4"
)

// OrdersHandler lists ledger orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {object} models.OrdersResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/orders [get]
func OrdersHandler(orders *database.OrderStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := orders.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to list orders",
				Error:   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, models.OrdersResponse{Orders: list})
	}
}

// CreateOrderHandler adds an order to the ledger
// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.MessageResponse
// @Failure 500 {object} models.MessageResponse
// @Router /api/orders [post]
func CreateOrderHandler(orders *database.OrderStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.CreateOrderRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "Invalid request body",
				Error:   err.Error(),
			})
		}

		req.OrderID = strings.TrimSpace(req.OrderID)
		req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
		if req.OrderID == "" || req.CustomerEmail == "" || req.Amount <= 0 {
			return c.JSON(http.StatusBadRequest, models.MessageResponse{
				Message: "order_id, customer_email and a positive amount are required",
			})
		}

		order := &models.Order{
			OrderID:       strings.ToUpper(req.OrderID),
			CustomerEmail: req.CustomerEmail,
			Amount:        req.Amount,
			Status:        req.Status,
		}
		if err := orders.Create(c.Request().Context(), order); err != nil {
			return c.JSON(http.StatusInternalServerError, models.MessageResponse{
				Message: "Failed to create order",
				Error:   err.Error(),
			})
		}

		return c.JSON(http.StatusCreated, order)
	}
}
