package usecases

import (
	"commercebot/internal/entities"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJanitor_Prune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 30, 0, time.UTC)
	limiter := NewRateLimiter(store, time.Minute, 10, zerolog.Nop())

	j, err := NewJanitor(store, store, limiter, 48*time.Hour, "*/15 * * * *", zerolog.Nop())
	require.NoError(t, err)

	for id, at := range map[string]time.Time{
		"old":   now.Add(-72 * time.Hour),
		"fresh": now.Add(-time.Hour),
	} {
		_, err := store.ClaimMessage(ctx, entities.ProcessedMessage{MessageID: id, SenderID: "1", Kind: entities.KindText, ProcessedAt: at})
		require.NoError(t, err)
	}
	for _, at := range []time.Time{now.Add(-10 * time.Minute), now.Add(-time.Minute), now} {
		_, _, err := store.IncrementWindow(ctx, "1", limiter.WindowStart(at), 10)
		require.NoError(t, err)
	}

	processed, windows, err := j.Prune(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(1), windows)

	seen, err := store.IsProcessed(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, seen)
	seen, err = store.IsProcessed(ctx, "old")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestJanitor_InvalidSchedule(t *testing.T) {
	_, err := NewJanitor(nil, nil, nil, time.Hour, "not a cron", zerolog.Nop())
	assert.Error(t, err)
}

func TestJanitor_RunStopsWithContext(t *testing.T) {
	store := newTestStore(t)
	limiter := NewRateLimiter(store, time.Minute, 10, zerolog.Nop())
	j, err := NewJanitor(store, store, limiter, time.Hour, "0 0 1 1 *", zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
