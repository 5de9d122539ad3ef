package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"library-service-backend/internal/domain"
)

func borrowingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "book_id", "user_id", "borrow_date", "expected_return_date", "actual_return_date", "created_on", "updated_on",
		"bk_id", "title", "author", "cover", "inventory", "daily_fee_cents",
	})
}

func TestBorrowingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBorrowingRepository(db)
	ctx := context.Background()

	t.Run("Success joins the book", func(t *testing.T) {
		now := time.Now()
		rows := borrowingRows().
			AddRow(11, 3, 7, now, now.Add(72*time.Hour), nil, "2026-01-01", "2026-01-01",
				3, "Dune", "Frank Herbert", "HARD", 2, 1000)

		mock.ExpectQuery("FROM borrowings b JOIN books bk").
			WithArgs(int32(11)).
			WillReturnRows(rows)

		b, err := repo.GetByID(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, int32(7), b.UserID)
		assert.Nil(t, b.ActualReturnDate)
		assert.Equal(t, "Dune", b.Book.Title)
		assert.Equal(t, int64(1000), b.Book.DailyFeeCents)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("FROM borrowings b JOIN books bk").
			WithArgs(int32(99)).
			WillReturnRows(borrowingRows())

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBorrowingRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBorrowingRepository(db)
	ctx := context.Background()

	t.Run("Filters by user and active state", func(t *testing.T) {
		userID := int32(7)
		isActive := true
		now := time.Now()

		mock.ExpectQuery(`SELECT count\(\*\)`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("AND b.user_id = \\$1 AND b.actual_return_date IS NULL").
			WithArgs(userID, int32(20), int32(0)).
			WillReturnRows(borrowingRows().
				AddRow(11, 3, 7, now, now.Add(72*time.Hour), nil, "2026-01-01", "2026-01-01",
					3, "Dune", "Frank Herbert", "HARD", 2, 1000))

		list, count, err := repo.List(ctx, domain.BorrowingFilter{UserID: &userID, IsActive: &isActive}, 1, 20)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), count)
		assert.Len(t, list, 1)
	})
}

func TestBorrowingRepository_MarkReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBorrowingRepository(db)
	ctx := context.Background()

	t.Run("First return wins", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE borrowings SET actual_return_date").
			WithArgs(sqlmock.AnyArg(), int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := db.Begin()
		assert.NoError(t, err)
		returned, err := repo.MarkReturned(ctx, tx, 11)
		assert.NoError(t, err)
		assert.True(t, returned)
	})

	t.Run("Second return does not", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE borrowings SET actual_return_date").
			WithArgs(sqlmock.AnyArg(), int32(11)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := db.Begin()
		assert.NoError(t, err)
		returned, err := repo.MarkReturned(ctx, tx, 11)
		assert.NoError(t, err)
		assert.False(t, returned)
	})
}

func TestBorrowingRepository_ListOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBorrowingRepository(db)
	ctx := context.Background()

	t.Run("Returns only unreturned past-due rows", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("WHERE b.actual_return_date IS NULL AND b.expected_return_date").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(borrowingRows().
				AddRow(11, 3, 7, now.Add(-120*time.Hour), now.Add(-48*time.Hour), nil, "2026-01-01", "2026-01-01",
					3, "Dune", "Frank Herbert", "HARD", 2, 1000))

		overdue, err := repo.ListOverdue(ctx)
		assert.NoError(t, err)
		assert.Len(t, overdue, 1)
		assert.True(t, overdue[0].IsActive())
		assert.True(t, now.After(overdue[0].ExpectedReturnDate))
	})
}
