package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// AuthURLResponse carries the Gmail OAuth consent URL
// @Description OAuth authorization URL response
type AuthURLResponse struct {
	AuthURL string `json:"auth_url"` // URL the user opens to grant access
}

// AuthCallbackResponse is returned after a successful OAuth exchange
// @Description OAuth callback result
type AuthCallbackResponse struct {
	Message string `json:"message" example:"Authentication successful"`
	UserID  int    `json:"user_id" example:"1"`
	Email   string `json:"email" example:"agent@example.com"`
}

// UsersResponse lists connected users
// @Description Connected users
type UsersResponse struct {
	Users []User `json:"users"`
}

// OrdersResponse lists ledger orders
// @Description Orders in the ledger
type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

// CreateOrderRequest is the payload for creating an order
// @Description New order payload
type CreateOrderRequest struct {
	OrderID       string  `json:"order_id" example:"ORD001"`
	CustomerEmail string  `json:"customer_email" example:"customer@example.com"`
	Amount        float64 `json:"amount" example:"99.99"`
	Status        string  `json:"status,omitempty" example:"completed"`
}

// StatsResponse carries aggregate processing counters
// @Description System statistics
type StatsResponse struct {
	TotalEmailsProcessed int  `json:"total_emails_processed"`
	UnhandledEmails      int  `json:"unhandled_emails"`
	RefundRequests       int  `json:"refund_requests"`
	InvalidOrderAttempts int  `json:"invalid_order_attempts"`
	ActiveUsers          int  `json:"active_users"`
	ProcessingActive     bool `json:"processing_active"`
}

// KnowledgeAddRequest is the payload for ingesting knowledge text
// @Description Knowledge ingestion payload
type KnowledgeAddRequest struct {
	Text string `json:"text"` // Bulk text, split into chunks at blank lines
}

// KnowledgeAddResponse reports how many chunks were ingested
// @Description Knowledge ingestion result
type KnowledgeAddResponse struct {
	ChunksAdded int `json:"chunks_added" example:"4"`
}

// KnowledgeSearchResponse carries similarity search results
// @Description Knowledge base search results
type KnowledgeSearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

// KnowledgeInfoResponse describes the vector collection
// @Description Knowledge collection info
type KnowledgeInfoResponse struct {
	CollectionName string `json:"collection_name" example:"knowledge_base"`
	TotalChunks    uint64 `json:"total_chunks" example:"42"`
	Error          string `json:"error,omitempty"`
}

// MessageResponse is a generic message envelope
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
