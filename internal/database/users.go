package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mailagent/internal/models"

	"github.com/jmoiron/sqlx"
)

// UserStore manages connected Gmail accounts.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// ListActive returns the users whose inboxes the scheduler processes.
func (s *UserStore) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT id, email, gmail_token, gmail_refresh_token, is_active, created_at, updated_at
		FROM users
		WHERE is_active = TRUE
		ORDER BY id
	`
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

// List returns all users.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	query := `
		SELECT id, email, gmail_token, gmail_refresh_token, is_active, created_at, updated_at
		FROM users
		ORDER BY id
	`
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetByID returns one user, or (nil, nil) when not found.
func (s *UserStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, gmail_token, gmail_refresh_token, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := s.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// SetActive toggles a user's active flag. Returns false when no user
// with that id exists.
func (s *UserStore) SetActive(ctx context.Context, id int, active bool) (bool, error) {
	query := `UPDATE users SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return false, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return rows > 0, nil
}

// UpsertOAuthUser stores or refreshes the tokens obtained from the
// OAuth callback, reactivating the account.
func (s *UserStore) UpsertOAuthUser(ctx context.Context, email, token, refreshToken string) (*models.User, error) {
	var user models.User
	query := `
		INSERT INTO users (email, gmail_token, gmail_refresh_token, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET
			gmail_token = EXCLUDED.gmail_token,
			gmail_refresh_token = EXCLUDED.gmail_refresh_token,
			is_active = TRUE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, email, gmail_token, gmail_refresh_token, is_active, created_at, updated_at
	`
	if err := s.db.GetContext(ctx, &user, query, email, token, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", email, err)
	}
	return &user, nil
}

// UpdateAccessToken persists a refreshed access token.
func (s *UserStore) UpdateAccessToken(ctx context.Context, id int, token string) error {
	query := `UPDATE users SET gmail_token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	if _, err := s.db.ExecContext(ctx, query, token, id); err != nil {
		return fmt.Errorf("failed to update access token for user %d: %w", id, err)
	}
	return nil
}
