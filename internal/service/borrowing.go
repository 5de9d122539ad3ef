package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/repository"
	"library-service-backend/internal/utils"
)

type borrowingService struct {
	db            *sql.DB
	borrowingRepo repository.BorrowingRepository
	bookRepo      repository.BookRepository
	paymentRepo   repository.PaymentRepository
	userRepo      repository.UserRepository
	paymentSvc    PaymentService
	notifier      Notifier
	fineMult      int64
}

func NewBorrowingService(
	db *sql.DB,
	borrowingRepo repository.BorrowingRepository,
	bookRepo repository.BookRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	paymentSvc PaymentService,
	notifier Notifier,
	fineMultiplier int64,
) BorrowingService {
	return &borrowingService{
		db:            db,
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		paymentSvc:    paymentSvc,
		notifier:      notifier,
		fineMult:      fineMultiplier,
	}
}

func parseReturnDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "expected_return_date", Reason: "must be RFC3339 or yyyy-mm-dd"}
	}
	return t, nil
}

func (s *borrowingService) CreateBorrowing(ctx context.Context, actor domain.Actor, bookID int32, expectedReturnDate string) (*domain.Borrowing, *domain.Payment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, nil, err
	}

	expected, err := parseReturnDate(expectedReturnDate)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	if !expected.After(now) {
		return nil, nil, domain.ErrInvalidReturnDate
	}

	// Global gate: a user with any unresolved payment cannot borrow again.
	unsettled, err := s.paymentRepo.CountUnsettledByUser(ctx, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if unsettled > 0 {
		return nil, nil, domain.ErrPendingPaymentExists
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}

	borrowing := &domain.Borrowing{
		BookID:             book.ID,
		UserID:             actor.ID,
		BorrowDate:         now,
		ExpectedReturnDate: expected,
	}

	// Reservation and borrowing creation are one atomic unit: a failed
	// reserve leaves no borrowing, a failed insert leaves the count intact.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := s.bookRepo.ReserveCopy(ctx, tx, book.ID); err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}
	if err := s.borrowingRepo.Create(ctx, tx, borrowing); err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	borrowing.Book = book

	amount := utils.RentalCostCents(book.DailyFeeCents, borrowing.BorrowDate, borrowing.ExpectedReturnDate)
	payment, err := s.paymentSvc.OpenSession(ctx, borrowing, amount, domain.PaymentTypePayment)
	if err != nil {
		// The borrowing stands; the session can be reopened via OpenPayment.
		logger.Error("Failed to open checkout session for new borrowing",
			"borrowing_id", borrowing.ID, "error", err)
		payment = nil
	}

	user, _ := s.userRepo.GetByID(ctx, actor.ID)
	chatID := ""
	if user != nil {
		chatID = user.TelegramChatID
	}
	_ = s.notifier.SendTo(ctx, chatID, fmt.Sprintf(
		"New borrowing #%d: %q until %s",
		borrowing.ID, book.Title, expected.Format("2006-01-02"),
	))

	return borrowing, payment, nil
}

func (s *borrowingService) ReturnBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Borrowing, *domain.Payment, error) {
	borrowing, err := s.borrowingRepo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, nil, err
	}
	if err := canAccessBorrowing(actor, borrowing); err != nil {
		return nil, nil, err
	}

	// Return transition and inventory release are one atomic unit. The
	// conditional update inside MarkReturned resolves concurrent returns:
	// exactly one caller observes the transition.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	returned, err := s.borrowingRepo.MarkReturned(ctx, tx, borrowing.ID)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}
	if !returned {
		_ = tx.Rollback()
		return nil, nil, domain.ErrAlreadyReturned
	}
	if err := s.bookRepo.ReleaseCopy(ctx, tx, borrowing.BookID); err != nil {
		_ = tx.Rollback()
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	borrowing, err = s.borrowingRepo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, nil, err
	}

	var fine *domain.Payment
	if borrowing.ActualReturnDate != nil {
		fineAmount := utils.FineCostCents(borrowing.Book.DailyFeeCents, s.fineMult, borrowing.ExpectedReturnDate, *borrowing.ActualReturnDate)
		if fineAmount > 0 {
			fine, err = s.paymentSvc.OpenSession(ctx, borrowing, fineAmount, domain.PaymentTypeFine)
			if err != nil {
				// The return stands regardless of fine-session failures.
				logger.Error("Failed to open fine checkout session",
					"borrowing_id", borrowing.ID, "amount_cents", fineAmount, "error", err)
				fine = nil
			}
		}
	}

	_ = s.notifier.Send(ctx, fmt.Sprintf("Borrowing #%d returned: %q", borrowing.ID, borrowing.Book.Title))

	return borrowing, fine, nil
}

func (s *borrowingService) ListBorrowings(ctx context.Context, actor domain.Actor, filter domain.BorrowingFilter, page, pageSize int32) ([]domain.Borrowing, int32, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, 0, err
	}
	if !actor.IsStaff {
		// Non-staff callers only ever see their own borrowings; the user
		// filter is a staff capability.
		if filter.UserID != nil && *filter.UserID != actor.ID {
			return nil, 0, domain.ErrForbidden
		}
		id := actor.ID
		filter.UserID = &id
	}
	return s.borrowingRepo.List(ctx, filter, page, pageSize)
}

func (s *borrowingService) GetBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Borrowing, error) {
	borrowing, err := s.borrowingRepo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if err := canAccessBorrowing(actor, borrowing); err != nil {
		return nil, err
	}
	return borrowing, nil
}

func (s *borrowingService) DeleteBorrowing(ctx context.Context, actor domain.Actor, borrowingID int32) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return s.borrowingRepo.Delete(ctx, borrowingID)
}
