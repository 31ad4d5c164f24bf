package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTracker_DedupWindow(t *testing.T) {
	repo := newMemRepo()
	tr := NewUsageTracker(repo, 24*time.Hour, zerolog.Nop())
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	ok, err := tr.RecordOpen(ctx, 5, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.RecordOpen(ctx, 5, t0.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, repo.opens, 1)

	ok, err = tr.RecordOpen(ctx, 5, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, repo.opens, 2)

	ok, err = tr.RecordOpen(ctx, 6, t0.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, ok, "window is per user")
}

func TestUsageTracker_DefaultWindowAndErrors(t *testing.T) {
	repo := newMemRepo()
	tr := NewUsageTracker(repo, 0, zerolog.Nop())
	assert.Equal(t, DefaultUsageWindow, tr.window)

	repo.err = errors.New("db down")
	ok, err := tr.RecordOpen(context.Background(), 1, time.Now())
	assert.Error(t, err)
	assert.False(t, ok)
}
