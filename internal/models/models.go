package models

import "time"

// EmailCategory is the triage category assigned to an inbound email.
type EmailCategory string

const (
	CategoryQuestion EmailCategory = "question"
	CategoryRefund   EmailCategory = "refund"
	CategoryOther    EmailCategory = "other"
)

// ImportanceLevel ranks unhandled emails for human follow-up.
type ImportanceLevel string

const (
	ImportanceLow    ImportanceLevel = "low"
	ImportanceMedium ImportanceLevel = "medium"
	ImportanceHigh   ImportanceLevel = "high"
)

// RefundStatus tracks an order's refund lifecycle. The triage engine
// only ever moves an order from no status to RefundRequested; the
// later transitions belong to fulfillment.
type RefundStatus string

const (
	RefundRequested  RefundStatus = "requested"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
)

// RefundRequestStatus is the outcome recorded for one refund email.
type RefundRequestStatus string

const (
	RefundRequestApproved          RefundRequestStatus = "approved"
	RefundRequestWaitingForOrderID RefundRequestStatus = "waiting_for_order_id"
	RefundRequestInvalidOrderID    RefundRequestStatus = "invalid_order_id"
	RefundRequestPending           RefundRequestStatus = "pending"
)

// User is a connected Gmail account whose inbox the agent processes.
type User struct {
	ID                int       `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	GmailToken        string    `db:"gmail_token" json:"-"`
	GmailRefreshToken string    `db:"gmail_refresh_token" json:"-"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Order is a row in the order ledger.
type Order struct {
	ID                int           `db:"id" json:"id"`
	OrderID           string        `db:"order_id" json:"order_id"`
	CustomerEmail     string        `db:"customer_email" json:"customer_email"`
	Amount            float64       `db:"amount" json:"amount"`
	Status            string        `db:"status" json:"status"`
	RefundStatus      *RefundStatus `db:"refund_status" json:"refund_status,omitempty"`
	RefundRequestedAt *time.Time    `db:"refund_requested_at" json:"refund_requested_at,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

// ProcessedEmail is the durable record of a handled message. Exactly
// one row exists per Gmail message id; this uniqueness is the
// engine's idempotency guard.
type ProcessedEmail struct {
	ID             int           `db:"id" json:"id"`
	GmailMessageID string        `db:"gmail_message_id" json:"gmail_message_id"`
	UserID         int           `db:"user_id" json:"user_id"`
	SenderEmail    string        `db:"sender_email" json:"sender_email"`
	Subject        string        `db:"subject" json:"subject"`
	Body           string        `db:"body" json:"body"`
	Category       EmailCategory `db:"category" json:"category"`
	ProcessedAt    time.Time     `db:"processed_at" json:"processed_at"`
	ResponseSent   bool          `db:"response_sent" json:"response_sent"`
}

// UnhandledEmail marks a processed email that received no automated
// reply and waits for a human.
type UnhandledEmail struct {
	ID              int             `db:"id" json:"id"`
	EmailID         int             `db:"email_id" json:"email_id"`
	ImportanceLevel ImportanceLevel `db:"importance_level" json:"importance_level"`
	Reason          string          `db:"reason" json:"reason"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// RefundRequestRecord is the audit row written once per refund email.
// OrderID is nil when no valid order was matched.
type RefundRequestRecord struct {
	ID               int                 `db:"id" json:"id"`
	EmailID          int                 `db:"email_id" json:"email_id"`
	OrderID          *int                `db:"order_id" json:"order_id,omitempty"`
	CustomerEmail    string              `db:"customer_email" json:"customer_email"`
	RequestedOrderID *string             `db:"requested_order_id" json:"requested_order_id,omitempty"`
	Status           RefundRequestStatus `db:"status" json:"status"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
}

// InvalidOrderAttempt tracks repeated refund emails citing the same
// unknown order id from the same customer. The (customer_email,
// invalid_order_id) pair is unique; repeats bump AttemptCount.
type InvalidOrderAttempt struct {
	ID             int       `db:"id" json:"id"`
	CustomerEmail  string    `db:"customer_email" json:"customer_email"`
	InvalidOrderID string    `db:"invalid_order_id" json:"invalid_order_id"`
	EmailContent   string    `db:"email_content" json:"email_content"`
	AttemptCount   int       `db:"attempt_count" json:"attempt_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// KnowledgeChunk is a titled unit of reference text whose embedding
// lives in the vector store.
type KnowledgeChunk struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	EmbeddingID *string   `db:"embedding_id" json:"embedding_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Message is an inbound mail as fetched from the mailbox, before any
// triage decision.
type Message struct {
	ID       string
	ThreadID string
	// HeaderID is the RFC 822 Message-ID, used for reply threading.
	HeaderID string
	Sender   string
	Subject  string
	Body     string
}
