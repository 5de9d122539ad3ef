package service

import (
	"context"

	"library-service-backend/internal/domain"
	"library-service-backend/internal/repository"
)

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, page, pageSize int32) ([]domain.Book, int32, error) {
	return s.bookRepo.List(ctx, page, pageSize)
}

func (s *bookService) AddBook(ctx context.Context, actor domain.Actor, book *domain.Book) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}
	return s.bookRepo.Create(ctx, book)
}

func (s *bookService) UpdateBook(ctx context.Context, actor domain.Actor, book *domain.Book) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if err := validateBook(book); err != nil {
		return err
	}
	if _, err := s.bookRepo.GetByID(ctx, book.ID); err != nil {
		return err
	}
	return s.bookRepo.Update(ctx, book)
}

func (s *bookService) DeleteBook(ctx context.Context, actor domain.Actor, id int32) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}

func validateBook(b *domain.Book) error {
	if b.Title == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if b.Cover != domain.BookCoverHard && b.Cover != domain.BookCoverSoft {
		return &domain.ValidationError{Field: "cover", Reason: "must be HARD or SOFT"}
	}
	if b.Inventory < 0 {
		return &domain.ValidationError{Field: "inventory", Reason: "must not be negative"}
	}
	if b.DailyFeeCents <= 0 {
		return &domain.ValidationError{Field: "daily_fee_cents", Reason: "must be positive"}
	}
	return nil
}
