package postgres

import (
	"database/sql"

	"library-service-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookRepository
	repository.BorrowingRepository
	repository.PaymentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		UserRepository:      NewUserRepository(db),
		BookRepository:      NewBookRepository(db),
		BorrowingRepository: NewBorrowingRepository(db),
		PaymentRepository:   NewPaymentRepository(db),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}
