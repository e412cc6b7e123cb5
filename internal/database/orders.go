package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mailagent/internal/models"

	"github.com/jmoiron/sqlx"
)

// OrderStore reads and writes the order ledger. The triage engine is
// the only writer of refund_status.
type OrderStore struct {
	db *sqlx.DB
}

// NewOrderStore creates a new order store
func NewOrderStore(db *sqlx.DB) *OrderStore {
	return &OrderStore{db: db}
}

// GetByOrderID looks up an order by its external order id. Returns
// (nil, nil) when no order matches.
func (s *OrderStore) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	query := `
		SELECT id, order_id, customer_email, amount, status, refund_status, refund_requested_at, created_at
		FROM orders
		WHERE order_id = $1
	`
	err := s.db.GetContext(ctx, &order, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	return &order, nil
}

// SetRefundRequested marks an order's refund as requested and stamps
// the request time.
func (s *OrderStore) SetRefundRequested(ctx context.Context, id int, when time.Time) error {
	query := `
		UPDATE orders
		SET refund_status = $1, refund_requested_at = $2
		WHERE id = $3
	`
	if _, err := s.db.ExecContext(ctx, query, models.RefundRequested, when, id); err != nil {
		return fmt.Errorf("failed to set refund requested: %w", err)
	}
	return nil
}

// List returns all orders, newest first.
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	query := `
		SELECT id, order_id, customer_email, amount, status, refund_status, refund_requested_at, created_at
		FROM orders
		ORDER BY created_at DESC
	`
	if err := s.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Create inserts a new order. Fails on a duplicate order id.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.Status == "" {
		order.Status = "completed"
	}
	query := `
		INSERT INTO orders (order_id, customer_email, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := s.db.QueryRowxContext(ctx, query, order.OrderID, order.CustomerEmail, order.Amount, order.Status)
	if err := row.Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// SeedSampleOrders inserts a few well-known orders for testing the
// refund flow end to end. Existing order ids are left untouched.
func (s *OrderStore) SeedSampleOrders(ctx context.Context) error {
	samples := []models.Order{
		{OrderID: "ORD001", CustomerEmail: "customer1@example.com", Amount: 99.99},
		{OrderID: "ORD002", CustomerEmail: "customer2@example.com", Amount: 149.50},
		{OrderID: "ABC123", CustomerEmail: "customer3@example.com", Amount: 75.00},
	}

	query := `
		INSERT INTO orders (order_id, customer_email, amount, status)
		VALUES ($1, $2, $3, 'completed')
		ON CONFLICT (order_id) DO NOTHING
	`
	for _, o := range samples {
		if _, err := s.db.ExecContext(ctx, query, o.OrderID, o.CustomerEmail, o.Amount); err != nil {
			return fmt.Errorf("failed to seed order %s: %w", o.OrderID, err)
		}
	}
	return nil
}
