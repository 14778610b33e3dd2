package book

import (
	"bookstore/internal/apperr"
)

// ErrNotFound matches every "no such book" error via errors.Is.
var ErrNotFound = apperr.NotFound("book not found")

// Fields are the mutable attributes of a book.
type Fields struct {
	AmazonURL string `json:"amazon_url"`
	Author    string `json:"author"`
	Language  string `json:"language"`
	Pages     int    `json:"pages"`
	Publisher string `json:"publisher"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
}

// Book is a stored book record. ISBN is its key and never changes.
type Book struct {
	ISBN string `json:"isbn"`
	Fields
}
