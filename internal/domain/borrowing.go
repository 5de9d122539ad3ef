package domain

import "time"

type Borrowing struct {
	ID                 int32      `json:"id"`
	BookID             int32      `json:"book_id"`
	UserID             int32      `json:"user_id"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	Book               *Book      `json:"book,omitempty"` // Populated when fetching borrowing details
	CreatedOn          string     `json:"created_on"`
	UpdatedOn          string     `json:"updated_on"`
}

// IsActive reports whether the book has not been returned yet.
func (b *Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}

// BorrowingFilter narrows borrowing listings. UserID is staff-only;
// non-staff callers are always scoped to their own records.
type BorrowingFilter struct {
	UserID   *int32
	IsActive *bool
}
