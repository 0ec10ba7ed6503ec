package models

import "time"

const (
	TemplateBookingConfirmation = "booking_confirmation"
	TemplateBookingApproved     = "booking_approved"
	TemplateBookingRejected     = "booking_rejected"
	TemplateNewsletterWelcome   = "newsletter_welcome"
)

// Notification is an outbox row: a pending email persisted alongside the
// transactional write and delivered asynchronously by the worker.
type Notification struct {
	ID          int64      `json:"id"`
	Template    string     `json:"template"`
	Recipient   string     `json:"recipient"`
	Payload     string     `json:"payload"` // JSON-encoded template data
	Status      string     `json:"status"`  // pending, retry, completed, failed
	RetryCount  int        `json:"retry_count"`
	LastError   string     `json:"last_error,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
