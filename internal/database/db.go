package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL deployments
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL (default)
)

// New creates a new database connection. The driver is picked from the
// URL scheme; the schema and queries target PostgreSQL.
func New(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Auto-detect driver from URL
	const (
		driverMySQL    = "mysql"
		driverPostgres = "postgres"
	)
	driver := driverMySQL
	if len(databaseURL) > 8 && databaseURL[:8] == driverPostgres {
		driver = driverPostgres
	}

	db, err := sqlx.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// CreateSchema creates the application tables if they don't exist.
// The unique constraints on emails.gmail_message_id, orders.order_id
// and (customer_email, invalid_order_id) are load-bearing: the triage
// engine relies on them for idempotent inserts and atomic upserts.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			gmail_token TEXT NOT NULL,
			gmail_refresh_token TEXT NOT NULL,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_id VARCHAR(100) UNIQUE NOT NULL,
			customer_email VARCHAR(255) NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			status VARCHAR(50) DEFAULT 'completed',
			refund_status VARCHAR(50),
			refund_requested_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS emails (
			id SERIAL PRIMARY KEY,
			gmail_message_id VARCHAR(255) UNIQUE NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id),
			sender_email VARCHAR(255) NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			category VARCHAR(20) NOT NULL,
			processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			response_sent BOOLEAN DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_gmail_message_id ON emails(gmail_message_id)`,
		`CREATE TABLE IF NOT EXISTS unhandled_emails (
			id SERIAL PRIMARY KEY,
			email_id INTEGER NOT NULL REFERENCES emails(id),
			importance_level VARCHAR(20) NOT NULL DEFAULT 'medium',
			reason TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS refund_requests (
			id SERIAL PRIMARY KEY,
			email_id INTEGER NOT NULL REFERENCES emails(id),
			order_id INTEGER REFERENCES orders(id),
			customer_email VARCHAR(255) NOT NULL,
			requested_order_id VARCHAR(100),
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS not_found_refund_requests (
			id SERIAL PRIMARY KEY,
			customer_email VARCHAR(255) NOT NULL,
			invalid_order_id VARCHAR(100) NOT NULL,
			email_content TEXT NOT NULL,
			attempt_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (customer_email, invalid_order_id)
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_base (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			embedding_id VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}
