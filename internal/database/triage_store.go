package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mailagent/internal/models"

	"github.com/jmoiron/sqlx"
)

// TriageStore persists the records the triage engine owns: processed
// emails, unhandled entries, refund requests and invalid-order
// attempts.
type TriageStore struct {
	db *sqlx.DB
}

// NewTriageStore creates a new triage store
func NewTriageStore(db *sqlx.DB) *TriageStore {
	return &TriageStore{db: db}
}

// IsProcessed reports whether a Gmail message id has already been
// handled. Cheap pre-check; InsertProcessedEmail remains the
// authoritative guard when two runs race.
func (s *TriageStore) IsProcessed(ctx context.Context, gmailMessageID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM emails WHERE gmail_message_id = $1)`
	if err := s.db.GetContext(ctx, &exists, query, gmailMessageID); err != nil {
		return false, fmt.Errorf("failed to check processed email: %w", err)
	}
	return exists, nil
}

// InsertProcessedEmail persists a processed email exactly once per
// Gmail message id. Returns false when the row already existed, in
// which case the caller must not dispatch the message again.
func (s *TriageStore) InsertProcessedEmail(ctx context.Context, email *models.ProcessedEmail) (bool, error) {
	query := `
		INSERT INTO emails (gmail_message_id, user_id, sender_email, subject, body, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (gmail_message_id) DO NOTHING
		RETURNING id, processed_at
	`
	row := s.db.QueryRowxContext(ctx, query,
		email.GmailMessageID, email.UserID, email.SenderEmail,
		email.Subject, email.Body, email.Category)

	if err := row.Scan(&email.ID, &email.ProcessedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict: another run already inserted this message id.
			return false, nil
		}
		return false, fmt.Errorf("failed to insert processed email: %w", err)
	}

	return true, nil
}

// MarkResponseSent flips response_sent after a confirmed reply send.
func (s *TriageStore) MarkResponseSent(ctx context.Context, emailID int) error {
	query := `UPDATE emails SET response_sent = TRUE WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, emailID); err != nil {
		return fmt.Errorf("failed to mark response sent: %w", err)
	}
	return nil
}

// CreateUnhandled files a processed email for human review.
func (s *TriageStore) CreateUnhandled(ctx context.Context, emailID int, importance models.ImportanceLevel, reason string) error {
	query := `
		INSERT INTO unhandled_emails (email_id, importance_level, reason)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, emailID, importance, reason); err != nil {
		return fmt.Errorf("failed to create unhandled entry: %w", err)
	}
	return nil
}

// CreateRefundRequest appends the audit row for one refund email.
func (s *TriageStore) CreateRefundRequest(ctx context.Context, rec *models.RefundRequestRecord) error {
	query := `
		INSERT INTO refund_requests (email_id, order_id, customer_email, requested_order_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.GetContext(ctx, &rec.ID, query,
		rec.EmailID, rec.OrderID, rec.CustomerEmail, rec.RequestedOrderID, rec.Status)
	if err != nil {
		return fmt.Errorf("failed to create refund request: %w", err)
	}
	return nil
}

// UpsertInvalidOrderAttempt records an unmatched order id for a
// customer. The first occurrence of a (customer, invalid id) pair
// creates the row with attempt_count 1; repeats increment the counter
// and overwrite the stored body. The upsert is a single statement so
// two racing handlers for the same pair cannot both observe count 1.
// Returns the attempt count after the write.
func (s *TriageStore) UpsertInvalidOrderAttempt(ctx context.Context, customerEmail, invalidOrderID, body string) (int, error) {
	query := `
		INSERT INTO not_found_refund_requests (customer_email, invalid_order_id, email_content, attempt_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (customer_email, invalid_order_id) DO UPDATE SET
			attempt_count = not_found_refund_requests.attempt_count + 1,
			email_content = EXCLUDED.email_content,
			updated_at = CURRENT_TIMESTAMP
		RETURNING attempt_count
	`
	var count int
	if err := s.db.GetContext(ctx, &count, query, customerEmail, invalidOrderID, body); err != nil {
		return 0, fmt.Errorf("failed to upsert invalid order attempt: %w", err)
	}
	return count, nil
}

// Stats returns the aggregate processing counters for the admin
// surface.
func (s *TriageStore) Stats(ctx context.Context) (*models.StatsResponse, error) {
	stats := &models.StatsResponse{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM emails`, &stats.TotalEmailsProcessed},
		{`SELECT COUNT(*) FROM unhandled_emails`, &stats.UnhandledEmails},
		{`SELECT COUNT(*) FROM refund_requests`, &stats.RefundRequests},
		{`SELECT COUNT(*) FROM not_found_refund_requests`, &stats.InvalidOrderAttempts},
		{`SELECT COUNT(*) FROM users WHERE is_active = TRUE`, &stats.ActiveUsers},
	}

	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
	}

	return stats, nil
}
