package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore/internal/app"
	"bookstore/internal/book"
	"bookstore/internal/logger"
	"bookstore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func newApp(t *testing.T, mutate ...func(*app.Options)) (*app.App, *book.SQLRepository) {
	t.Helper()
	gw := testutil.NewSQLiteGateway(t)
	repo := book.NewSQLRepository(gw)

	opts := app.Options{
		Logger:         logger.Discard(),
		Books:          book.NewService(repo),
		DB:             gw,
		MaxBodyBytes:   1 << 20,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	for _, m := range mutate {
		m(&opts)
	}

	a := app.New(opts)
	t.Cleanup(a.Close)
	return a, repo
}

// seedBook stores one book directly and returns its isbn.
func seedBook(t *testing.T, repo *book.SQLRepository) string {
	t.Helper()
	b, err := repo.Create(context.Background(), testutil.SampleBook("11111111"))
	require.NoError(t, err)
	return b.ISBN
}

func do(a http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	a.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestBooksAPI_Create(t *testing.T) {
	a, _ := newApp(t)

	res := do(a, testutil.NewRequest(http.MethodPost, "/books", `{
		"isbn": "11121111",
		"amazon_url": "https://test.com",
		"author": "test",
		"language": "english",
		"pages": 200,
		"publisher": "Test Pub",
		"title": "Test Title",
		"year": 2011
	}`))

	require.Equal(t, http.StatusCreated, res.Code)
	got := testutil.Object(t, res.Body, "book")
	assert.Equal(t, "11121111", got["isbn"])
	assert.Equal(t, "https://test.com", got["amazon_url"])
	assert.Equal(t, "test", got["author"])
	assert.Equal(t, "english", got["language"])
	assert.EqualValues(t, 200, got["pages"])
	assert.Equal(t, "Test Pub", got["publisher"])
	assert.Equal(t, "Test Title", got["title"])
	assert.EqualValues(t, 2011, got["year"])
	assert.Len(t, got, 8)
}

func TestBooksAPI_CreateDuplicate(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	res := do(a, testutil.NewRequest(http.MethodPost, "/books", testutil.SampleBook(isbn)))

	assert.Equal(t, http.StatusConflict, res.Code)
	errBody := testutil.Object(t, res.Body, "error")
	assert.EqualValues(t, 409, errBody["status"])

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBooksAPI_CreateInvalid(t *testing.T) {
	a, repo := newApp(t)

	res := do(a, testutil.NewRequest(http.MethodPost, "/books", `{"author": "me"}`))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	errBody := testutil.Object(t, res.Body, "error")
	assert.EqualValues(t, 400, errBody["status"])
	assert.NotEmpty(t, errBody["message"])
	assert.Contains(t, errBody["details"], "isbn is required")

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBooksAPI_List(t *testing.T) {
	a, repo := newApp(t)

	res := do(a, testutil.NewRequest(http.MethodGet, "/books", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []interface{}{}, res.Body["books"])

	isbn := seedBook(t, repo)

	res = do(a, testutil.NewRequest(http.MethodGet, "/books", nil))
	require.Equal(t, http.StatusOK, res.Code)
	books, ok := res.Body["books"].([]interface{})
	require.True(t, ok)
	require.Len(t, books, 1)
	got, ok := books[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, isbn, got["isbn"])
	assert.Equal(t, "Me", got["author"])
	assert.EqualValues(t, 2022, got["year"])
}

func TestBooksAPI_GetIsRepeatable(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	first := httptest.NewRecorder()
	a.ServeHTTP(first, testutil.NewRequest(http.MethodGet, "/books/"+isbn, nil))
	second := httptest.NewRecorder()
	a.ServeHTTP(second, testutil.NewRequest(http.MethodGet, "/books/"+isbn, nil))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestBooksAPI_CreateRejectsOutOfRangeValues(t *testing.T) {
	a, repo := newApp(t)

	tooManyPages := testutil.SampleBook("33333333")
	tooManyPages.Pages = 3000000000
	res := do(a, testutil.NewRequest(http.MethodPost, "/books", tooManyPages))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, []interface{}{"pages must be at most 100000"}, testutil.Object(t, res.Body, "error")["details"])

	res = do(a, testutil.NewRequest(http.MethodPost, "/books", testutil.SampleBook("33333333 ")))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBooksAPI_Get(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	res := do(a, testutil.NewRequest(http.MethodGet, "/books/"+isbn, nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, isbn, testutil.Object(t, res.Body, "book")["isbn"])

	res = do(a, testutil.NewRequest(http.MethodGet, "/books/99999999", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
	errBody := testutil.Object(t, res.Body, "error")
	assert.EqualValues(t, 404, errBody["status"])
	assert.Contains(t, errBody["message"], "99999999")
}

func TestBooksAPI_Update(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	body := `{
		"amazon_url": "https://test.com",
		"author": "Me",
		"language": "english",
		"pages": 100,
		"publisher": "Test Pub",
		"title": "Updated Test",
		"year": 2003
	}`

	res := do(a, testutil.NewRequest(http.MethodPut, "/books/"+isbn, body))
	require.Equal(t, http.StatusOK, res.Code)
	got := testutil.Object(t, res.Body, "book")
	assert.Equal(t, isbn, got["isbn"])
	assert.Equal(t, "Updated Test", got["title"])
	assert.EqualValues(t, 100, got["pages"])
	assert.EqualValues(t, 2003, got["year"])

	res = do(a, testutil.NewRequest(http.MethodPut, "/books/99999999", body))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestBooksAPI_UpdateRejectsExtraFields(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	res := do(a, testutil.NewRequest(http.MethodPut, "/books/"+isbn, `{
		"isbn": "11111111",
		"badField": "Test",
		"amazon_url": "https://test.com",
		"author": "Me",
		"language": "english",
		"pages": 100,
		"publisher": "Test Pub",
		"title": "Updated Test",
		"year": 2003
	}`))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	errBody := testutil.Object(t, res.Body, "error")
	assert.Equal(t, []interface{}{"badField is not allowed", "isbn is not allowed"}, errBody["details"])

	stored, err := repo.FindOne(context.Background(), isbn)
	require.NoError(t, err)
	assert.Equal(t, "Test Book", stored.Title)
}

func TestBooksAPI_Delete(t *testing.T) {
	a, repo := newApp(t)
	isbn := seedBook(t, repo)

	res := do(a, testutil.NewRequest(http.MethodDelete, "/books/"+isbn, nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Book deleted", res.Body["message"])

	res = do(a, testutil.NewRequest(http.MethodDelete, "/books/"+isbn, nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(a, testutil.NewRequest(http.MethodGet, "/books/"+isbn, nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	a, _ := newApp(t)

	res := do(a, testutil.NewRequest(http.MethodGet, "/authors", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.EqualValues(t, 404, testutil.Object(t, res.Body, "error")["status"])

	res = do(a, testutil.NewRequest(http.MethodPatch, "/books/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	assert.EqualValues(t, 405, testutil.Object(t, res.Body, "error")["status"])
	assert.Equal(t, "GET, PUT, DELETE", res.Header.Get("Allow"))

	res = do(a, testutil.NewRequest(http.MethodDelete, "/books", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, res.Code)
	assert.Equal(t, "GET, POST", res.Header.Get("Allow"))
}

func TestRouter_CommonHeaders(t *testing.T) {
	a, _ := newApp(t, func(o *app.Options) { o.EnableHSTS = true })

	res := do(a, testutil.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, res.Header.Get("Strict-Transport-Security"))
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "application/json"))
}

func TestRouter_PayloadTooLarge(t *testing.T) {
	a, _ := newApp(t, func(o *app.Options) { o.MaxBodyBytes = 16 })

	res := do(a, testutil.NewRequest(http.MethodPost, "/books", testutil.SampleBook("1")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
	assert.EqualValues(t, 413, testutil.Object(t, res.Body, "error")["status"])
}

func TestRouter_RateLimited(t *testing.T) {
	a, _ := newApp(t, func(o *app.Options) {
		o.RateLimitRPS = 0.001
		o.RateLimitBurst = 1
	})

	first := do(a, testutil.NewRequest(http.MethodGet, "/healthz", nil))
	second := do(a, testutil.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
}

func TestProbes(t *testing.T) {
	a, _ := newApp(t)

	res := do(a, testutil.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])

	res = do(a, testutil.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ready", res.Body["status"])

	down, _ := newApp(t, func(o *app.Options) { o.DB = downDB{} })
	res = do(down, testutil.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
