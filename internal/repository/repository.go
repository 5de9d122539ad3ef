package repository

import (
	"context"
	"database/sql"

	"library-service-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Book, int32, error)

	// ReserveCopy decrements the book inventory by one only if a copy is
	// available. Returns domain.ErrOutOfStock when the count is zero.
	// Linearizable per book: two concurrent reservations against a single
	// remaining copy yield exactly one success.
	ReserveCopy(ctx context.Context, tx *sql.Tx, bookID int32) error

	// ReleaseCopy increments the book inventory by one unconditionally.
	ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int32) error
}

type BorrowingRepository interface {
	Create(ctx context.Context, tx *sql.Tx, b *domain.Borrowing) error
	GetByID(ctx context.Context, id int32) (*domain.Borrowing, error)
	List(ctx context.Context, filter domain.BorrowingFilter, page, pageSize int32) ([]domain.Borrowing, int32, error)
	ListOverdue(ctx context.Context) ([]domain.Borrowing, error)

	// MarkReturned sets actual_return_date only if it is still NULL and
	// reports whether this call performed the transition. Linearizable per
	// borrowing: of two concurrent returns exactly one observes true.
	MarkReturned(ctx context.Context, tx *sql.Tx, id int32) (bool, error)

	Delete(ctx context.Context, id int32) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Payment, int32, error)
	ListPending(ctx context.Context) ([]domain.Payment, error)

	// FindPendingByBorrowing returns the PENDING payment of the given type
	// on a borrowing, or domain.ErrNotFound when none exists.
	FindPendingByBorrowing(ctx context.Context, borrowingID int32, typ domain.PaymentType) (*domain.Payment, error)

	// CountUnsettledByUser counts PENDING and EXPIRED payments across all of
	// the user's borrowings. Used as the global gate on new borrowings.
	CountUnsettledByUser(ctx context.Context, userID int32) (int32, error)
}
