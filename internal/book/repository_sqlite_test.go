package book_test

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/apperr"
	"bookstore/internal/book"
	"bookstore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *book.SQLRepository {
	t.Helper()
	return book.NewSQLRepository(testutil.NewSQLiteGateway(t))
}

func TestSQLRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	created, err := repo.Create(ctx, testutil.SampleBook("11111111"))
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleBook("11111111"), created)

	got, err := repo.FindOne(ctx, "11111111")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	fields := created.Fields
	fields.Title = "Updated Test"
	fields.Pages = 100
	updated, err := repo.Update(ctx, "11111111", fields)
	require.NoError(t, err)
	assert.Equal(t, "11111111", updated.ISBN)
	assert.Equal(t, "Updated Test", updated.Title)
	assert.Equal(t, 100, updated.Pages)

	require.NoError(t, repo.Remove(ctx, "11111111"))

	err = repo.Remove(ctx, "11111111")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = repo.FindOne(ctx, "11111111")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSQLRepository_DuplicateIsbn(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Create(ctx, testutil.SampleBook("22222222"))
	require.NoError(t, err)

	dup := testutil.SampleBook("22222222")
	dup.Title = "Another"
	_, err = repo.Create(ctx, dup)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindConflict, appErr.Kind)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Test Book", all[0].Title)
}

func TestSQLRepository_FindAllOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for _, seed := range []struct{ isbn, title string }{
		{"3", "Zebra"}, {"2", "Apple"}, {"1", "Apple"},
	} {
		b := testutil.SampleBook(seed.isbn)
		b.Title = seed.title
		_, err := repo.Create(ctx, b)
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)

	var isbns []string
	for _, b := range all {
		isbns = append(isbns, b.ISBN)
	}
	assert.Equal(t, []string{"1", "2", "3"}, isbns)
}

func TestSQLRepository_UpdateMissing(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Update(context.Background(), "404", testutil.SampleBook("404").Fields)

	assert.Equal(t, 404, apperr.StatusOf(err))
	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
