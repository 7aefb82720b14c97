package usecases

import (
	"commercebot/internal/interfaces"
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RateDecision is the outcome of one rate limit check.
type RateDecision struct {
	Allowed   bool
	Remaining int
}

// RateLimiter is a fixed-window counter per sender backed by the store, so
// every instance shares the same windows.
type RateLimiter struct {
	store  interfaces.RateWindowStore
	window time.Duration
	max    int
	logger zerolog.Logger
}

func NewRateLimiter(store interfaces.RateWindowStore, window time.Duration, max int, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{store: store, window: window, max: max, logger: logger}
}

// WindowStart floors now to the window length.
func (rl *RateLimiter) WindowStart(now time.Time) time.Time {
	return now.UTC().Truncate(rl.window)
}

// Check counts one request for the sender. Store failures let the request
// through.
func (rl *RateLimiter) Check(ctx context.Context, senderID string, now time.Time) RateDecision {
	count, allowed, err := rl.store.IncrementWindow(ctx, senderID, rl.WindowStart(now), rl.max)
	if err != nil {
		rl.logger.Error().Err(err).Str("sender", senderID).Msg("rate window update failed, allowing request")
		return RateDecision{Allowed: true, Remaining: rl.max}
	}
	if !allowed {
		return RateDecision{Allowed: false, Remaining: 0}
	}
	return RateDecision{Allowed: true, Remaining: rl.max - count}
}

// PruneBefore is the cutoff for windows that can no longer be hit.
func (rl *RateLimiter) PruneBefore(now time.Time) time.Time {
	return rl.WindowStart(now).Add(-rl.window)
}
