// Package triage implements the per-message decision engine: classify
// an inbound email, dispatch to the category handler, and keep the
// audit trail exactly-once per mailbox message id.
package triage

import (
	"context"
	"fmt"
	"time"

	"mailagent/internal/models"
)

// Mailbox is the per-user mail transport the engine reads from and
// replies through.
type Mailbox interface {
	ListUnread(ctx context.Context, max int) ([]string, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	SendReply(ctx context.Context, original *models.Message, body string) error
	MarkRead(ctx context.Context, id string) error
}

// Assistant is the model-backed classification and generation surface.
type Assistant interface {
	Categorize(ctx context.Context, subject, body string) (models.EmailCategory, error)
	ExtractOrderID(ctx context.Context, body string) (string, error)
	RateImportance(ctx context.Context, body string) (models.ImportanceLevel, error)
	GenerateReply(ctx context.Context, emailBody, instruction string) (string, error)
	AnswerWithContext(ctx context.Context, question string, chunks []string) (string, bool, error)
}

// KnowledgeSearcher retrieves the most relevant knowledge chunks for a
// question.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// RecordStore persists the engine's audit trail.
type RecordStore interface {
	IsProcessed(ctx context.Context, gmailMessageID string) (bool, error)
	InsertProcessedEmail(ctx context.Context, email *models.ProcessedEmail) (bool, error)
	MarkResponseSent(ctx context.Context, emailID int) error
	CreateUnhandled(ctx context.Context, emailID int, importance models.ImportanceLevel, reason string) error
	CreateRefundRequest(ctx context.Context, rec *models.RefundRequestRecord) error
	UpsertInvalidOrderAttempt(ctx context.Context, customerEmail, invalidOrderID, body string) (int, error)
}

// Ledger is the order store the refund handler reads and updates.
type Ledger interface {
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	SetRefundRequested(ctx context.Context, id int, when time.Time) error
}

// Notifier alerts the support team about high-importance unhandled
// emails. Optional; triage completes the same way without one.
type Notifier interface {
	NotifyUnhandled(senderEmail, subject, reason string) error
}

// Engine routes one inbound message through classification and the
// category handlers.
type Engine struct {
	assistant   Assistant
	knowledge   KnowledgeSearcher
	records     RecordStore
	ledger      Ledger
	notifier    Notifier
	searchLimit int
}

func NewEngine(assistant Assistant, knowledge KnowledgeSearcher, records RecordStore, ledger Ledger, searchLimit int) *Engine {
	if searchLimit <= 0 {
		searchLimit = 3
	}
	return &Engine{
		assistant:   assistant,
		knowledge:   knowledge,
		records:     records,
		ledger:      ledger,
		searchLimit: searchLimit,
	}
}

// SetNotifier enables support-team escalation for high-importance
// unhandled emails.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// ProcessUserEmails runs one pass over a user's unread messages. A
// failure on one message is logged and does not stop the rest of the
// queue; a failure to list at all is returned so the caller can back
// off.
func (e *Engine) ProcessUserEmails(ctx context.Context, mailbox Mailbox, user *models.User, max int) error {
	ids, err := mailbox.ListUnread(ctx, max)
	if err != nil {
		return fmt.Errorf("failed to list unread messages for %s: %v", user.Email, err)
	}

	for _, id := range ids {
		if err := e.ProcessMessage(ctx, mailbox, user, id); err != nil {
			fmt.Printf("[TRIAGE] Failed to process message %s for %s: %v\n", id, user.Email, err)
		}
	}
	return nil
}

// ProcessMessage handles a single message end to end. Reprocessing an
// already-handled message id is a no-op.
func (e *Engine) ProcessMessage(ctx context.Context, mailbox Mailbox, user *models.User, messageID string) error {
	processed, err := e.records.IsProcessed(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to check message %s: %v", messageID, err)
	}
	if processed {
		return nil
	}

	msg, err := mailbox.GetMessage(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to fetch message %s: %v", messageID, err)
	}

	category := e.classify(ctx, msg)
	if category.Degraded {
		fmt.Printf("[TRIAGE] WARNING: Classification failed for message %s, defaulting to %s: %v\n",
			messageID, category.Value, category.Cause)
	}

	email := &models.ProcessedEmail{
		GmailMessageID: messageID,
		UserID:         user.ID,
		SenderEmail:    ExtractSenderAddress(msg.Sender),
		Subject:        msg.Subject,
		Body:           msg.Body,
		Category:       category.Value,
	}

	// The unique insert is the authoritative idempotency guard; the
	// pre-check above only saves the fetch and model calls.
	inserted, err := e.records.InsertProcessedEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to record message %s: %v", messageID, err)
	}
	if !inserted {
		return nil
	}

	fmt.Printf("[TRIAGE] Message %s from %s categorized as %s\n", messageID, email.SenderEmail, email.Category)

	switch email.Category {
	case models.CategoryQuestion:
		err = e.handleQuestion(ctx, mailbox, msg, email)
	case models.CategoryRefund:
		err = e.handleRefund(ctx, mailbox, msg, email)
	case models.CategoryOther:
		err = e.handleOther(ctx, msg, email)
	}
	if err != nil {
		fmt.Printf("[TRIAGE] WARNING: %s handler failed for message %s: %v\n", email.Category, messageID, err)
	}

	// Read state is cosmetic; a completed response is never undone by
	// a failure here.
	if err := mailbox.MarkRead(ctx, messageID); err != nil {
		fmt.Printf("[TRIAGE] WARNING: Failed to mark message %s read: %v\n", messageID, err)
	}
	return nil
}

func (e *Engine) classify(ctx context.Context, msg *models.Message) Outcome[models.EmailCategory] {
	category, err := e.assistant.Categorize(ctx, msg.Subject, msg.Body)
	if err != nil {
		return Degraded(models.CategoryOther, err)
	}
	return Ok(category)
}

// sendReply sends the reply and flips response_sent on confirmation.
// Send failures leave response_sent false; there is no retry, the
// message is already recorded as processed.
func (e *Engine) sendReply(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail, body string) {
	if err := mailbox.SendReply(ctx, msg, body); err != nil {
		fmt.Printf("[TRIAGE] WARNING: Failed to send reply for message %s: %v\n", msg.ID, err)
		return
	}
	if err := e.records.MarkResponseSent(ctx, email.ID); err != nil {
		fmt.Printf("[TRIAGE] WARNING: Reply sent but failed to mark response_sent for email %d: %v\n", email.ID, err)
		return
	}
	email.ResponseSent = true
}

func (e *Engine) fileUnhandled(ctx context.Context, email *models.ProcessedEmail, importance models.ImportanceLevel, reason string) error {
	if err := e.records.CreateUnhandled(ctx, email.ID, importance, reason); err != nil {
		return fmt.Errorf("failed to file unhandled entry for email %d: %v", email.ID, err)
	}

	if e.notifier != nil && importance == models.ImportanceHigh {
		if err := e.notifier.NotifyUnhandled(email.SenderEmail, email.Subject, reason); err != nil {
			fmt.Printf("[TRIAGE] WARNING: Failed to notify support about email %d: %v\n", email.ID, err)
		}
	}
	return nil
}
