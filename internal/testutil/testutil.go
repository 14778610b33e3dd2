package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bookstore/db"
	"bookstore/internal/book"
	"bookstore/internal/platform/sqlite"

	"github.com/go-chi/chi/v5"
	"github.com/pressly/goose/v3"
)

// SampleBook returns a valid book that tests can tweak freely.
func SampleBook(isbn string) book.Book {
	return book.Book{
		ISBN: isbn,
		Fields: book.Fields{
			AmazonURL: "https://amazon.com/test",
			Author:    "Me",
			Language:  "English",
			Pages:     50,
			Publisher: "Test Pub",
			Title:     "Test Book",
			Year:      2022,
		},
	}
}

// NewSQLiteGateway opens a fresh database file in a temp dir and applies
// every migration. It is closed when the test ends.
func NewSQLiteGateway(t testing.TB) *sqlite.Gateway {
	t.Helper()
	ctx := context.Background()

	g, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "books.db"), 2*time.Second)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })

	goose.SetBaseFS(db.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.UpContext(ctx, g.DB(), db.MigrationsDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return g
}

// NewRequest creates a new HTTP request for testing. A string body is sent
// verbatim; anything else is JSON encoded.
func NewRequest(method, path string, body interface{}) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		reader = bytes.NewReader(bodyBytes)
	}
	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// WithURLParam sets a chi route parameter on r, as the router would.
func WithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// Object returns body[key] as a JSON object, failing the test otherwise.
func Object(t testing.TB, body map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	v, ok := body[key].(map[string]interface{})
	if !ok {
		t.Fatalf("response body %v has no object %q", body, key)
	}
	return v
}
