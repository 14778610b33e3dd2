package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b Book) (Book, error)
	FindAll(ctx context.Context) ([]Book, error)
	FindOne(ctx context.Context, isbn string) (Book, error)
	Update(ctx context.Context, isbn string, f Fields) (Book, error)
	Remove(ctx context.Context, isbn string) error
}
