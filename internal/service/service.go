package service

import (
	"context"

	"library-service-backend/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, string, error) // access, refresh
	RefreshToken(ctx context.Context, refresh string) (string, string, error)
}

type UserService interface {
	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)

	// UpdateProfile overwrites the mutable profile fields. Binding a
	// telegram chat ID routes that user's notifications to their own chat
	// instead of the operator channel.
	UpdateProfile(ctx context.Context, actor domain.Actor, name, telegramChatID string) (*domain.User, error)
}

type BookService interface {
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	ListBooks(ctx context.Context, page, pageSize int32) ([]domain.Book, int32, error)
	AddBook(ctx context.Context, actor domain.Actor, book *domain.Book) error
	UpdateBook(ctx context.Context, actor domain.Actor, book *domain.Book) error
	DeleteBook(ctx context.Context, actor domain.Actor, id int32) error
}

type BorrowingService interface {
	// CreateBorrowing reserves a copy and persists the borrowing in one
	// transaction, then opens the initial checkout session. The session is
	// nil when the processor was unreachable; the borrowing stands either
	// way and a session can be reopened later.
	CreateBorrowing(ctx context.Context, actor domain.Actor, bookID int32, expectedReturnDate string) (*domain.Borrowing, *domain.Payment, error)

	// ReturnBorrowing marks the return and releases the copy in one
	// transaction. When the return is late, the returned Payment carries the
	// fine checkout session; a fine-session failure does not undo the return.
	ReturnBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Borrowing, *domain.Payment, error)

	ListBorrowings(ctx context.Context, actor domain.Actor, filter domain.BorrowingFilter, page, pageSize int32) ([]domain.Borrowing, int32, error)
	GetBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Borrowing, error)
	DeleteBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) error
}

type PaymentService interface {
	// OpenSession opens a checkout session for the borrowing. For PAYMENT
	// sessions an existing PENDING payment on the borrowing is returned
	// unchanged instead of opening a duplicate.
	OpenSession(ctx context.Context, borrowing *domain.Borrowing, amountCents int64, typ domain.PaymentType) (*domain.Payment, error)

	// OpenPayment recomputes the rental amount for the borrowing and opens
	// (or reuses) its PAYMENT session on behalf of the actor.
	OpenPayment(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Payment, error)

	// CheckStatus polls the processor. A confirmed PAYMENT on a still-active
	// borrowing also completes the loan; FINE confirmations are terminal.
	CheckStatus(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, bool, error)

	Renew(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error)

	// HandleWebhook verifies and applies a processor push notification.
	// Re-delivery of an already-applied event is a no-op.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error

	// RunExpirySweep marks payments whose sessions the processor reports
	// expired. Returns the number of payments transitioned.
	RunExpirySweep(ctx context.Context) (int, error)

	ListPayments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Payment, int32, error)
	GetPayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error)
}

// Notifier is the fire-and-forget text sink. Implementations log their own
// failures; callers never treat a send error as fatal.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendTo(ctx context.Context, chatID, text string) error
}

type EmailService interface {
	SendPaymentConfirmation(ctx context.Context, email string, borrowingID int32, amountCents int64) error
	SendOverdueReminder(ctx context.Context, email, bookTitle string, expectedReturn string) error
}
