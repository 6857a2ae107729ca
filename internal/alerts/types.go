// Package alerts queues user notifications on asynq and processes them in
// the background.
package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail   = "email:welcome"
	TaskDepositSettled = "email:deposit_settled"
)

const queueEmails = "emails"

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

type DepositSettledPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	Reference string        `json:"tx_id"`
	Amount    string        `json:"amount"`
	Method    string        `json:"method"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
