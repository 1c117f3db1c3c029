package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStoreClaim(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	s := NewPostgresStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Ping(ctx))

	handle := "test_" + uuid.NewString()
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM lucky_claims WHERE handle = $1", handle)
	})

	first := newEntry(handle, 100000)
	res, err := s.Claim(ctx, first)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, first.ID, res.Entry.ID)

	second := newEntry(handle, 20000)
	second.ClaimedAt = second.ClaimedAt.Add(time.Hour)
	res, err = s.Claim(ctx, second)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, first.ID, res.Entry.ID)
	assert.Equal(t, int64(100000), res.Entry.Amount)
	assert.True(t, res.Entry.ClaimedAt.Equal(first.ClaimedAt))

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	found := 0
	for _, e := range entries {
		if e.Handle == handle {
			found++
		}
	}
	assert.Equal(t, 1, found)
}
