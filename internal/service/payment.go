package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-service-backend/internal/checkout"
	"library-service-backend/internal/domain"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/repository"
	"library-service-backend/internal/utils"
)

// PaymentConfig carries the processor-facing settings the service needs.
type PaymentConfig struct {
	Currency       string
	SessionExpiry  time.Duration
	BaseURL        string // public base URL for success/cancel callbacks
	FineMultiplier int64
}

type paymentService struct {
	db            *sql.DB
	paymentRepo   repository.PaymentRepository
	borrowingRepo repository.BorrowingRepository
	bookRepo      repository.BookRepository
	userRepo      repository.UserRepository
	processor     checkout.Client
	notifier      Notifier
	emailSvc      EmailService
	cfg           PaymentConfig
}

func NewPaymentService(
	db *sql.DB,
	paymentRepo repository.PaymentRepository,
	borrowingRepo repository.BorrowingRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	processor checkout.Client,
	notifier Notifier,
	emailSvc EmailService,
	cfg PaymentConfig,
) PaymentService {
	return &paymentService{
		db:            db,
		paymentRepo:   paymentRepo,
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		userRepo:      userRepo,
		processor:     processor,
		notifier:      notifier,
		emailSvc:      emailSvc,
		cfg:           cfg,
	}
}

func (s *paymentService) OpenSession(ctx context.Context, borrowing *domain.Borrowing, amountCents int64, typ domain.PaymentType) (*domain.Payment, error) {
	if amountCents <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if typ != domain.PaymentTypePayment && typ != domain.PaymentTypeFine {
		return nil, &domain.ValidationError{Field: "type", Reason: "must be PAYMENT or FINE"}
	}

	user, err := s.userRepo.GetByID(ctx, borrowing.UserID)
	if err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, &domain.ValidationError{Field: "email", Reason: "user has no contact address for checkout"}
	}

	// At most one pending PAYMENT session per borrowing: reuse instead of
	// opening a duplicate.
	if typ == domain.PaymentTypePayment {
		existing, err := s.paymentRepo.FindPendingByBorrowing(ctx, borrowing.ID, domain.PaymentTypePayment)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	payment := &domain.Payment{
		BorrowingID:     borrowing.ID,
		MoneyToPayCents: amountCents,
		Status:          domain.PaymentStatusPending,
		Type:            typ,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	params := checkout.CreateSessionParams{
		AmountCents:   amountCents,
		Currency:      s.cfg.Currency,
		Description:   fmt.Sprintf("Borrowing #%d - %s", borrowing.ID, typ),
		CustomerEmail: user.Email,
		SuccessURL:    fmt.Sprintf("%s/payments/%d/success", s.cfg.BaseURL, payment.ID),
		CancelURL:     fmt.Sprintf("%s/payments/%d/cancel", s.cfg.BaseURL, payment.ID),
		ExpiresIn:     s.cfg.SessionExpiry,
	}

	logger.ExternalServiceCall("checkout", "CreateSession", "payment_id", payment.ID)
	session, err := s.processor.CreateSession(ctx, params)
	logger.ExternalServiceResult("checkout", "CreateSession", err)
	if err != nil {
		// Compensating rollback: the half-built payment must not linger.
		if delErr := s.paymentRepo.Delete(ctx, payment.ID); delErr != nil {
			logger.Error("Failed to delete payment after session failure",
				"payment_id", payment.ID, "error", delErr)
		}
		return nil, &domain.ExternalServiceError{Op: "create checkout session", Err: err}
	}

	payment.SessionID = session.ID
	payment.SessionURL = session.URL
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) OpenPayment(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Payment, error) {
	borrowing, err := s.borrowingRepo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, err
	}
	if err := canAccessBorrowing(actor, borrowing); err != nil {
		return nil, err
	}

	amount := utils.RentalCostCents(borrowing.Book.DailyFeeCents, borrowing.BorrowDate, borrowing.ExpectedReturnDate)
	return s.OpenSession(ctx, borrowing, amount, domain.PaymentTypePayment)
}

func (s *paymentService) CheckStatus(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, bool, error) {
	payment, borrowing, err := s.getPaymentForActor(ctx, actor, paymentID)
	if err != nil {
		return nil, false, err
	}

	if payment.IsSettled() {
		// The webhook may have flipped the status first; it records the
		// confirmation but leaves the loan untouched. Completing the loan
		// happens here, on the next poll.
		s.settleLoan(ctx, payment, borrowing)
		return payment, true, nil
	}

	logger.ExternalServiceCall("checkout", "GetSessionStatus", "session_id", payment.SessionID)
	status, err := s.processor.GetSessionStatus(ctx, payment.SessionID)
	logger.ExternalServiceResult("checkout", "GetSessionStatus", err)
	if err != nil {
		return nil, false, &domain.ExternalServiceError{Op: "query checkout session", Err: err}
	}

	if status != checkout.SessionStatusPaid {
		return payment, false, nil
	}

	if err := s.confirmPayment(ctx, payment, borrowing); err != nil {
		return nil, false, err
	}
	return payment, true, nil
}

// confirmPayment marks the payment PAID and, for a PAYMENT-type payment on
// a still-active borrowing, completes the loan the same way an explicit
// return would. FINE confirmations are terminal: no secondary fine.
func (s *paymentService) confirmPayment(ctx context.Context, payment *domain.Payment, borrowing *domain.Borrowing) error {
	payment.Status = domain.PaymentStatusPaid
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return err
	}

	s.settleLoan(ctx, payment, borrowing)

	user, err := s.userRepo.GetByID(ctx, borrowing.UserID)
	if err == nil {
		if mailErr := s.emailSvc.SendPaymentConfirmation(ctx, user.Email, borrowing.ID, payment.MoneyToPayCents); mailErr != nil {
			logger.Error("Failed to send payment confirmation email", "payment_id", payment.ID, "error", mailErr)
		}
	}
	_ = s.notifier.Send(ctx, fmt.Sprintf(
		"Payment #%d (%s) for borrowing #%d confirmed: $%.2f",
		payment.ID, payment.Type, borrowing.ID, float64(payment.MoneyToPayCents)/100,
	))
	return nil
}

// settleLoan completes the loan behind a settled PAYMENT-type payment.
// FINE confirmations are terminal and returned borrowings are left alone;
// the conditional update inside completeLoan makes the call idempotent.
func (s *paymentService) settleLoan(ctx context.Context, payment *domain.Payment, borrowing *domain.Borrowing) {
	if payment.Type != domain.PaymentTypePayment || !borrowing.IsActive() {
		return
	}
	if err := s.completeLoan(ctx, borrowing); err != nil {
		logger.Error("Failed to complete loan for settled payment",
			"payment_id", payment.ID, "borrowing_id", borrowing.ID, "error", err)
	}
}

// completeLoan mirrors the return transition: mark returned and release the
// copy in one transaction, then open a fine session when the implicit
// return is already late.
func (s *paymentService) completeLoan(ctx context.Context, borrowing *domain.Borrowing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	returned, err := s.borrowingRepo.MarkReturned(ctx, tx, borrowing.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if !returned {
		// A concurrent explicit return got there first; nothing to do.
		_ = tx.Rollback()
		return nil
	}
	if err := s.bookRepo.ReleaseCopy(ctx, tx, borrowing.BookID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	refreshed, err := s.borrowingRepo.GetByID(ctx, borrowing.ID)
	if err != nil {
		return err
	}
	if refreshed.ActualReturnDate == nil {
		return nil
	}
	fineAmount := utils.FineCostCents(refreshed.Book.DailyFeeCents, s.cfg.FineMultiplier, refreshed.ExpectedReturnDate, *refreshed.ActualReturnDate)
	if fineAmount > 0 {
		if _, err := s.OpenSession(ctx, refreshed, fineAmount, domain.PaymentTypeFine); err != nil {
			logger.Error("Failed to open fine session on implicit return",
				"borrowing_id", refreshed.ID, "error", err)
		}
	}
	return nil
}

func (s *paymentService) Renew(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error) {
	payment, borrowing, err := s.getPaymentForActor(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusExpired {
		return nil, domain.ErrInvalidState
	}

	// The expired record stays as immutable history; the renewal is a fresh
	// payment with the same borrowing, amount and type.
	return s.OpenSession(ctx, borrowing, payment.MoneyToPayCents, payment.Type)
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.processor.ParseEvent(payload, signatureHeader)
	if err != nil {
		// Fails closed: nothing is mutated on a bad signature.
		return &domain.ExternalServiceError{Op: "verify webhook", Err: err}
	}

	if event.Kind != checkout.EventKindSessionCompleted {
		logger.Debug("Ignoring webhook event", "kind", event.Kind)
		return nil
	}

	payment, err := s.paymentRepo.GetBySessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Webhook references unknown session", "session_id", event.SessionID)
			return nil
		}
		return err
	}

	// Re-delivery guard: an already-paid payment is left untouched.
	if payment.IsSettled() {
		return nil
	}

	payment.Status = domain.PaymentStatusPaid
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return err
	}
	logger.Info("Payment confirmed via webhook", "payment_id", payment.ID, "session_id", event.SessionID)
	return nil
}

func (s *paymentService) RunExpirySweep(ctx context.Context) (int, error) {
	pending, err := s.paymentRepo.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range pending {
		payment := &pending[i]
		status, err := s.processor.GetSessionStatus(ctx, payment.SessionID)
		if err != nil {
			logger.Error("Failed to check session during expiry sweep",
				"payment_id", payment.ID, "session_id", payment.SessionID, "error", err)
			continue
		}
		if status != checkout.SessionStatusExpired {
			continue
		}

		payment.Status = domain.PaymentStatusExpired
		if err := s.paymentRepo.Update(ctx, payment); err != nil {
			logger.Error("Failed to mark payment expired", "payment_id", payment.ID, "error", err)
			continue
		}
		expired++

		_ = s.notifier.Send(ctx, fmt.Sprintf(
			"Payment session for borrowing #%d has expired.\nAmount: $%.2f\nType: %s\nYou can create a new payment session to complete the payment.",
			payment.BorrowingID, float64(payment.MoneyToPayCents)/100, payment.Type,
		))
	}
	return expired, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Payment, int32, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, 0, err
	}
	userID := actor.ID
	if actor.IsStaff {
		userID = 0 // staff sees everything
	}
	return s.paymentRepo.List(ctx, userID, page, pageSize)
}

func (s *paymentService) GetPayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error) {
	payment, _, err := s.getPaymentForActor(ctx, actor, paymentID)
	return payment, err
}

func (s *paymentService) getPaymentForActor(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, *domain.Borrowing, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	borrowing, err := s.borrowingRepo.GetByID(ctx, payment.BorrowingID)
	if err != nil {
		return nil, nil, err
	}
	if err := canAccessBorrowing(actor, borrowing); err != nil {
		return nil, nil, err
	}
	return payment, borrowing, nil
}
