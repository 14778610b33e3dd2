package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"bookstore/internal/apperr"

	"github.com/go-playground/validator/v10"
)

// CreateRequest is the body accepted by POST /books.
type CreateRequest struct {
	ISBN      string `json:"isbn" validate:"isbn"`
	AmazonURL string `json:"amazon_url" validate:"http_url"`
	Author    string `json:"author" validate:"notblank"`
	Language  string `json:"language" validate:"notblank"`
	Pages     int    `json:"pages" validate:"gt=0,lte=100000"`
	Publisher string `json:"publisher" validate:"notblank"`
	Title     string `json:"title" validate:"notblank"`
	Year      int    `json:"year" validate:"pubyear"`
}

// UpdateRequest is the body accepted by PUT /books/{isbn}. It has no isbn
// key, so sending one is rejected like any other unknown field.
type UpdateRequest struct {
	AmazonURL string `json:"amazon_url" validate:"http_url"`
	Author    string `json:"author" validate:"notblank"`
	Language  string `json:"language" validate:"notblank"`
	Pages     int    `json:"pages" validate:"gt=0,lte=100000"`
	Publisher string `json:"publisher" validate:"notblank"`
	Title     string `json:"title" validate:"notblank"`
	Year      int    `json:"year" validate:"pubyear"`
}

// Book converts a validated create request to a Book.
func (r CreateRequest) Book() Book {
	return Book{
		ISBN: r.ISBN,
		Fields: Fields{
			AmazonURL: r.AmazonURL,
			Author:    r.Author,
			Language:  r.Language,
			Pages:     r.Pages,
			Publisher: r.Publisher,
			Title:     r.Title,
			Year:      r.Year,
		},
	}
}

// Fields converts a validated update request to the mutable fields.
func (r UpdateRequest) Fields() Fields {
	return Fields(r)
}

const minPublicationYear = 1000

var (
	validate *validator.Validate

	isbnPattern = regexp.MustCompile(`^\d*[\dX]$`)

	createFields = schemaFields(reflect.TypeOf(CreateRequest{}))
	updateFields = schemaFields(reflect.TypeOf(UpdateRequest{}))
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonName)

	validate.RegisterValidation("isbn", validateISBN)
	validate.RegisterValidation("notblank", validateNotBlank)
	validate.RegisterValidation("pubyear", validatePublicationYear)
}

// validateISBN accepts digit strings of up to 13 digits, optionally split
// by hyphens or inner spaces, with a trailing X check digit allowed.
func validateISBN(fl validator.FieldLevel) bool {
	isbn := fl.Field().String()
	if strings.TrimSpace(isbn) != isbn {
		return false
	}
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")

	if len(isbn) == 0 || len(isbn) > 13 {
		return false
	}
	return isbnPattern.MatchString(isbn)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePublicationYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= minPublicationYear && year <= int64(time.Now().Year()+1)
}

// DecodeCreate reads and validates a create payload.
func DecodeCreate(body io.Reader) (Book, error) {
	var req CreateRequest
	if err := decode(body, &req, createFields); err != nil {
		return Book{}, err
	}
	return req.Book(), nil
}

// DecodeUpdate reads and validates an update payload.
func DecodeUpdate(body io.Reader) (Fields, error) {
	var req UpdateRequest
	if err := decode(body, &req, updateFields); err != nil {
		return Fields{}, err
	}
	return req.Fields(), nil
}

// schemaField is one JSON key of a request schema.
type schemaField struct {
	name string
	typ  reflect.Type
}

// decode reports every problem it can find in one pass: unknown keys,
// missing keys, mistyped values and failed rules.
func decode(body io.Reader, dst any, fields []schemaField) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.New(apperr.KindPayloadTooLarge, fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
		}
		return apperr.Validation("invalid book payload", "request body could not be read").WithCause(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return apperr.Validation("invalid book payload", "request body must not be empty")
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return apperr.Validation("invalid book payload", syntaxMessage(err))
	}

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f.name] = true
	}

	var msgs []string
	for _, k := range sortedKeys(values) {
		if !allowed[k] {
			msgs = append(msgs, fmt.Sprintf("%s is not allowed", k))
		}
	}

	// Fields that are missing or mistyped get exactly one message and are
	// left out of the rule checks.
	reported := map[string]bool{}
	for _, f := range fields {
		v, ok := values[f.name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			reported[f.name] = true
			msgs = append(msgs, fmt.Sprintf("%s is required", f.name))
			continue
		}
		if err := json.Unmarshal(v, reflect.New(f.typ).Interface()); err != nil {
			reported[f.name] = true
			msgs = append(msgs, fmt.Sprintf("%s must be %s", f.name, typeName(f.typ)))
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return apperr.Validation("invalid book payload", syntaxMessage(err))
		}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if reported[fe.Field()] {
				continue
			}
			msgs = append(msgs, friendlyMessage(fe))
		}
	}

	if len(msgs) > 0 {
		return apperr.Validation("invalid book payload", msgs...)
	}
	return nil
}

func friendlyMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "http_url":
		return fmt.Sprintf("%s must be a valid http(s) URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "isbn":
		return fmt.Sprintf("%s must be up to 13 digits, optionally separated by hyphens, with no surrounding spaces", field)
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and %d", field, minPublicationYear, time.Now().Year()+1)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func syntaxMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("request body contains malformed JSON (at offset %d)", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "request body contains malformed JSON"
	case errors.As(err, &typeErr):
		return "request body must be a JSON object"
	default:
		return "request body is invalid"
	}
}

func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	default:
		return "a " + t.String()
	}
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" {
		return fld.Name
	}
	return name
}

func schemaFields(t reflect.Type) []schemaField {
	fields := make([]schemaField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fields = append(fields, schemaField{name: jsonName(f), typ: f.Type})
	}
	return fields
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
