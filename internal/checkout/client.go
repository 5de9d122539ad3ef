// Package checkout talks to the external payment processor's
// checkout-session API. The client is constructed with its credentials
// and injected where needed; there is no package-level key state.
package checkout

import (
	"context"
	"errors"
	"time"
)

// ErrBadSignature reports a webhook whose signature header is missing,
// malformed, or fails verification. The payload must not be trusted.
var ErrBadSignature = errors.New("invalid webhook signature")

type SessionStatus string

const (
	SessionStatusPaid    SessionStatus = "paid"
	SessionStatusPending SessionStatus = "pending"
	SessionStatusExpired SessionStatus = "expired"
)

// CreateSessionParams describes one checkout session to open.
type CreateSessionParams struct {
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	ExpiresIn     time.Duration
}

// Session is the processor's handle pair for an open session.
type Session struct {
	ID  string
	URL string
}

// Event is a verified webhook push from the processor.
type Event struct {
	ID        string `json:"id"`
	Kind      string `json:"type"`
	SessionID string `json:"session_id"`
}

// EventKindSessionCompleted is the only event kind the backend acts on;
// everything else is acknowledged and ignored.
const EventKindSessionCompleted = "checkout.session.completed"

type Client interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*Session, error)
	GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)

	// ParseEvent verifies the webhook signature and decodes the event.
	// Verification fails closed: an invalid or missing signature is an error
	// and the payload is not interpreted.
	ParseEvent(payload []byte, signatureHeader string) (*Event, error)
}
