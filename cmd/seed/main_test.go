package main

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"bookstore/internal/book"
	"bookstore/internal/logger"
	"bookstore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := book.NewService(book.NewSQLRepository(testutil.NewSQLiteGateway(t)))

	n, err := seed(ctx, svc, 25, rand.New(rand.NewSource(1)), logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = seed(ctx, svc, 30, rand.New(rand.NewSource(1)), logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 30)
}

func TestGenerate_ProducesValidPayloads(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		b := generate(i, rng)
		body := testutil.NewRequest("POST", "/books", b).Body

		got, err := book.DecodeCreate(body)

		require.NoError(t, err)
		assert.Equal(t, b, got)
		assert.Len(t, b.ISBN, 13)
		assert.True(t, strings.HasPrefix(b.ISBN, "978"))
	}
}
