package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

type Payment struct {
	ID              int32         `json:"id"`
	BorrowingID     int32         `json:"borrowing_id"`
	SessionID       string        `json:"session_id"`
	SessionURL      string        `json:"session_url"`
	MoneyToPayCents int64         `json:"money_to_pay_cents"`
	Status          PaymentStatus `json:"status"`
	Type            PaymentType   `json:"type"`
	CreatedAt       time.Time     `json:"created_at"`
}

// IsSettled reports whether the payment no longer blocks new borrowings.
// PENDING and EXPIRED payments are unsettled until paid or renewed-and-paid.
func (p *Payment) IsSettled() bool {
	return p.Status == PaymentStatusPaid
}
