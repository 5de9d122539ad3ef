package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/repository"
)

type borrowingRepository struct {
	db *sql.DB
}

func NewBorrowingRepository(db *sql.DB) repository.BorrowingRepository {
	return &borrowingRepository{db: db}
}

func (r *borrowingRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.Borrowing) error {
	query := `INSERT INTO borrowings (book_id, user_id, borrow_date, expected_return_date, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return tx.QueryRowContext(ctx, query, b.BookID, b.UserID, b.BorrowDate, b.ExpectedReturnDate, time.Now(), time.Now()).Scan(&b.ID)
}

func (r *borrowingRepository) GetByID(ctx context.Context, id int32) (*domain.Borrowing, error) {
	b := &domain.Borrowing{Book: &domain.Book{}}
	query := `SELECT b.id, b.book_id, b.user_id, b.borrow_date, b.expected_return_date, b.actual_return_date, b.created_on, b.updated_on,
	                 bk.id, bk.title, bk.author, bk.cover, bk.inventory, bk.daily_fee_cents
	          FROM borrowings b JOIN books bk ON bk.id = b.book_id
	          WHERE b.id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.BookID, &b.UserID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate, &b.CreatedOn, &b.UpdatedOn,
		&b.Book.ID, &b.Book.Title, &b.Book.Author, &b.Book.Cover, &b.Book.Inventory, &b.Book.DailyFeeCents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *borrowingRepository) List(ctx context.Context, filter domain.BorrowingFilter, page, pageSize int32) ([]domain.Borrowing, int32, error) {
	base := `FROM borrowings b JOIN books bk ON bk.id = b.book_id WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil {
		base += fmt.Sprintf(" AND b.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.IsActive != nil {
		if *filter.IsActive {
			base += " AND b.actual_return_date IS NULL"
		} else {
			base += " AND b.actual_return_date IS NOT NULL"
		}
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT b.id, b.book_id, b.user_id, b.borrow_date, b.expected_return_date, b.actual_return_date, b.created_on, b.updated_on,
	                 bk.id, bk.title, bk.author, bk.cover, bk.inventory, bk.daily_fee_cents ` + base
	query += fmt.Sprintf(" ORDER BY b.borrow_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var borrowings []domain.Borrowing
	for rows.Next() {
		b := domain.Borrowing{Book: &domain.Book{}}
		if err := rows.Scan(
			&b.ID, &b.BookID, &b.UserID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate, &b.CreatedOn, &b.UpdatedOn,
			&b.Book.ID, &b.Book.Title, &b.Book.Author, &b.Book.Cover, &b.Book.Inventory, &b.Book.DailyFeeCents,
		); err != nil {
			return nil, 0, err
		}
		borrowings = append(borrowings, b)
	}
	return borrowings, count, rows.Err()
}

func (r *borrowingRepository) ListOverdue(ctx context.Context) ([]domain.Borrowing, error) {
	query := `SELECT b.id, b.book_id, b.user_id, b.borrow_date, b.expected_return_date, b.actual_return_date, b.created_on, b.updated_on,
	                 bk.id, bk.title, bk.author, bk.cover, bk.inventory, bk.daily_fee_cents
	          FROM borrowings b JOIN books bk ON bk.id = b.book_id
	          WHERE b.actual_return_date IS NULL AND b.expected_return_date < $1
	          ORDER BY b.expected_return_date`
	rows, err := r.db.QueryContext(ctx, query, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var borrowings []domain.Borrowing
	for rows.Next() {
		b := domain.Borrowing{Book: &domain.Book{}}
		if err := rows.Scan(
			&b.ID, &b.BookID, &b.UserID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate, &b.CreatedOn, &b.UpdatedOn,
			&b.Book.ID, &b.Book.Title, &b.Book.Author, &b.Book.Cover, &b.Book.Inventory, &b.Book.DailyFeeCents,
		); err != nil {
			return nil, err
		}
		borrowings = append(borrowings, b)
	}
	return borrowings, rows.Err()
}

// MarkReturned is the linearization point for the return transition: the
// IS NULL guard lets exactly one of any concurrent returns win.
func (r *borrowingRepository) MarkReturned(ctx context.Context, tx *sql.Tx, id int32) (bool, error) {
	query := `UPDATE borrowings SET actual_return_date = $1, updated_on = $1 WHERE id = $2 AND actual_return_date IS NULL`
	res, err := tx.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *borrowingRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM borrowings WHERE id = $1`, id)
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
