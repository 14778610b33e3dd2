package book

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/apperr"
	"bookstore/internal/platform/sqldb"
)

const bookColumns = "isbn, amazon_url, author, language, pages, publisher, title, year"

// SQLRepository stores books in the books table through a sqldb.Gateway.
type SQLRepository struct {
	db sqldb.Gateway
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db sqldb.Gateway) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, b Book) (Book, error) {
	const query = `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookColumns

	rows, err := r.db.Query(ctx, query,
		b.ISBN, b.AmazonURL, b.Author, b.Language, b.Pages, b.Publisher, b.Title, b.Year,
	)
	if err != nil {
		if errors.Is(err, sqldb.ErrUniqueViolation) {
			return Book{}, apperr.Conflict(fmt.Sprintf("book with isbn %q already exists", b.ISBN)).WithCause(err)
		}
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return single(rows, b.ISBN)
}

// FindAll returns every book ordered by title, then isbn.
func (r *SQLRepository) FindAll(ctx context.Context) ([]Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY title, isbn`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	out := make([]Book, 0, len(rows))
	for _, row := range rows {
		b, err := bookFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *SQLRepository) FindOne(ctx context.Context, isbn string) (Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE isbn = $1`

	rows, err := r.db.Query(ctx, query, isbn)
	if err != nil {
		return Book{}, fmt.Errorf("get book: %w", err)
	}
	return single(rows, isbn)
}

func (r *SQLRepository) Update(ctx context.Context, isbn string, f Fields) (Book, error) {
	const query = `
		UPDATE books SET
			amazon_url = $1,
			author = $2,
			language = $3,
			pages = $4,
			publisher = $5,
			title = $6,
			year = $7
		WHERE isbn = $8
		RETURNING ` + bookColumns

	rows, err := r.db.Query(ctx, query,
		f.AmazonURL, f.Author, f.Language, f.Pages, f.Publisher, f.Title, f.Year, isbn,
	)
	if err != nil {
		return Book{}, fmt.Errorf("update book: %w", err)
	}
	return single(rows, isbn)
}

func (r *SQLRepository) Remove(ctx context.Context, isbn string) error {
	const query = `DELETE FROM books WHERE isbn = $1 RETURNING isbn`

	rows, err := r.db.Query(ctx, query, isbn)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if len(rows) == 0 {
		return notFound(isbn)
	}
	return nil
}

func single(rows []sqldb.Row, isbn string) (Book, error) {
	if len(rows) == 0 {
		return Book{}, notFound(isbn)
	}
	return bookFromRow(rows[0])
}

func notFound(isbn string) error {
	return apperr.NotFound(fmt.Sprintf("there is no book with isbn %q", isbn))
}

// bookFromRow maps a books row to the entity. Column names are the storage
// contract; the JSON shape of Book is independent of them.
func bookFromRow(row sqldb.Row) (Book, error) {
	var (
		b   Book
		err error
	)
	strs := []struct {
		col string
		dst *string
	}{
		{"isbn", &b.ISBN},
		{"amazon_url", &b.AmazonURL},
		{"author", &b.Author},
		{"language", &b.Language},
		{"publisher", &b.Publisher},
		{"title", &b.Title},
	}
	for _, s := range strs {
		if *s.dst, err = row.String(s.col); err != nil {
			return Book{}, fmt.Errorf("map book row: %w", err)
		}
	}
	if b.Pages, err = row.Int("pages"); err != nil {
		return Book{}, fmt.Errorf("map book row: %w", err)
	}
	if b.Year, err = row.Int("year"); err != nil {
		return Book{}, fmt.Errorf("map book row: %w", err)
	}
	return b, nil
}
