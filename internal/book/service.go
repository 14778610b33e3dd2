package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new book. The isbn must not exist yet.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	return s.repo.Create(ctx, b)
}

// List returns every book.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns a book by its ISBN.
func (s *Service) Get(ctx context.Context, isbn string) (Book, error) {
	return s.repo.FindOne(ctx, isbn)
}

// Update replaces the mutable fields of an existing book.
func (s *Service) Update(ctx context.Context, isbn string, f Fields) (Book, error) {
	return s.repo.Update(ctx, isbn, f)
}

// Delete removes a book permanently.
func (s *Service) Delete(ctx context.Context, isbn string) error {
	return s.repo.Remove(ctx, isbn)
}
