package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, borrowing_id, session_id, session_url, money_to_pay_cents, status, type, created_at`

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (borrowing_id, session_id, session_url, money_to_pay_cents, status, type, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, p.BorrowingID, p.SessionID, p.SessionURL, p.MoneyToPayCents, p.Status, p.Type, time.Now()).Scan(&p.ID, &p.CreatedAt)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.BorrowingID, &p.SessionID, &p.SessionURL, &p.MoneyToPayCents, &p.Status, &p.Type, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE session_id = $1`
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&p.ID, &p.BorrowingID, &p.SessionID, &p.SessionURL, &p.MoneyToPayCents, &p.Status, &p.Type, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET session_id=$1, session_url=$2, money_to_pay_cents=$3, status=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, p.SessionID, p.SessionURL, p.MoneyToPayCents, p.Status, p.ID)
	return err
}

func (r *paymentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the user's payments, or every payment when userID is zero
// (staff listing).
func (r *paymentRepository) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Payment, int32, error) {
	base := `FROM payments p JOIN borrowings b ON b.id = p.borrowing_id`
	args := []interface{}{}
	if userID != 0 {
		base += ` WHERE b.user_id = $1`
		args = append(args, userID)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.borrowing_id, p.session_id, p.session_url, p.money_to_pay_cents, p.status, p.type, p.created_at ` + base
	if userID != 0 {
		query += ` ORDER BY p.created_at DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BorrowingID, &p.SessionID, &p.SessionURL, &p.MoneyToPayCents, &p.Status, &p.Type, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, count, rows.Err()
}

func (r *paymentRepository) ListPending(ctx context.Context) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, domain.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BorrowingID, &p.SessionID, &p.SessionURL, &p.MoneyToPayCents, &p.Status, &p.Type, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) FindPendingByBorrowing(ctx context.Context, borrowingID int32, typ domain.PaymentType) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments
	          WHERE borrowing_id = $1 AND type = $2 AND status = $3
	          ORDER BY created_at DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, borrowingID, typ, domain.PaymentStatusPending).Scan(&p.ID, &p.BorrowingID, &p.SessionID, &p.SessionURL, &p.MoneyToPayCents, &p.Status, &p.Type, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) CountUnsettledByUser(ctx context.Context, userID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM payments p
	          JOIN borrowings b ON b.id = p.borrowing_id
	          WHERE b.user_id = $1 AND p.status IN ($2, $3)`
	err := r.db.QueryRowContext(ctx, query, userID, domain.PaymentStatusPending, domain.PaymentStatusExpired).Scan(&count)
	return count, err
}
