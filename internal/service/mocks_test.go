package service_test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"library-service-backend/internal/checkout"
	"library-service-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookRepo) List(ctx context.Context, page, pageSize int32) ([]domain.Book, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Book), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookRepo) ReserveCopy(ctx context.Context, tx *sql.Tx, bookID int32) error {
	args := m.Called(ctx, tx, bookID)
	return args.Error(0)
}
func (m *MockBookRepo) ReleaseCopy(ctx context.Context, tx *sql.Tx, bookID int32) error {
	args := m.Called(ctx, tx, bookID)
	return args.Error(0)
}

// MockBorrowingRepo
type MockBorrowingRepo struct {
	mock.Mock
}

func (m *MockBorrowingRepo) Create(ctx context.Context, tx *sql.Tx, b *domain.Borrowing) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}
func (m *MockBorrowingRepo) GetByID(ctx context.Context, id int32) (*domain.Borrowing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrowing), args.Error(1)
}
func (m *MockBorrowingRepo) List(ctx context.Context, filter domain.BorrowingFilter, page, pageSize int32) ([]domain.Borrowing, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]domain.Borrowing), args.Get(1).(int32), args.Error(2)
}
func (m *MockBorrowingRepo) ListOverdue(ctx context.Context) ([]domain.Borrowing, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Borrowing), args.Error(1)
}
func (m *MockBorrowingRepo) MarkReturned(ctx context.Context, tx *sql.Tx, id int32) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBorrowingRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPaymentRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentRepo) ListPending(ctx context.Context) ([]domain.Payment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) FindPendingByBorrowing(ctx context.Context, borrowingID int32, typ domain.PaymentType) (*domain.Payment, error) {
	args := m.Called(ctx, borrowingID, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) CountUnsettledByUser(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

// MockCheckoutClient
type MockCheckoutClient struct {
	mock.Mock
}

func (m *MockCheckoutClient) CreateSession(ctx context.Context, params checkout.CreateSessionParams) (*checkout.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}
func (m *MockCheckoutClient) GetSessionStatus(ctx context.Context, sessionID string) (checkout.SessionStatus, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(checkout.SessionStatus), args.Error(1)
}
func (m *MockCheckoutClient) ParseEvent(payload []byte, signatureHeader string) (*checkout.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Event), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}
func (m *MockNotifier) SendTo(ctx context.Context, chatID, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPaymentConfirmation(ctx context.Context, email string, borrowingID int32, amountCents int64) error {
	args := m.Called(ctx, email, borrowingID, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, bookTitle string, expectedReturn string) error {
	args := m.Called(ctx, email, bookTitle, expectedReturn)
	return args.Error(0)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) OpenSession(ctx context.Context, borrowing *domain.Borrowing, amountCents int64, typ domain.PaymentType) (*domain.Payment, error) {
	args := m.Called(ctx, borrowing, amountCents, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) OpenPayment(ctx context.Context, actor domain.Actor, borrowingID int32) (*domain.Payment, error) {
	args := m.Called(ctx, actor, borrowingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) CheckStatus(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, bool, error) {
	args := m.Called(ctx, actor, paymentID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Bool(1), args.Error(2)
}
func (m *MockPaymentService) Renew(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error) {
	args := m.Called(ctx, actor, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	args := m.Called(ctx, payload, signatureHeader)
	return args.Error(0)
}
func (m *MockPaymentService) RunExpirySweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Payment, int32, error) {
	args := m.Called(ctx, actor, page, pageSize)
	return args.Get(0).([]domain.Payment), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, actor domain.Actor, paymentID int32) (*domain.Payment, error) {
	args := m.Called(ctx, actor, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
