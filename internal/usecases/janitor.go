package usecases

import (
	"commercebot/internal/interfaces"
	"commercebot/internal/metrics"
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog"
)

// Janitor prunes expired dedup records and rate windows on a cron schedule.
type Janitor struct {
	processed interfaces.ProcessedMessageStore
	windows   interfaces.RateWindowStore
	limiter   *RateLimiter
	retention time.Duration
	schedule  string
	logger    zerolog.Logger
}

func NewJanitor(
	processed interfaces.ProcessedMessageStore,
	windows interfaces.RateWindowStore,
	limiter *RateLimiter,
	retention time.Duration,
	schedule string,
	logger zerolog.Logger,
) (*Janitor, error) {
	if !gronx.New().IsValid(schedule) {
		return nil, fmt.Errorf("invalid prune schedule %q", schedule)
	}
	return &Janitor{
		processed: processed,
		windows:   windows,
		limiter:   limiter,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
	}, nil
}

// Run blocks until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(j.schedule, time.Now(), false)
		if err != nil {
			j.logger.Error().Err(err).Str("schedule", j.schedule).Msg("cannot compute next prune time, janitor stopped")
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, _, err := j.Prune(ctx, time.Now()); err != nil {
			j.logger.Error().Err(err).Msg("prune failed")
		}
	}
}

// Prune removes processed records older than the retention and windows that
// ended before the previous one.
func (j *Janitor) Prune(ctx context.Context, now time.Time) (int64, int64, error) {
	processed, err := j.processed.PruneProcessed(ctx, now.Add(-j.retention))
	if err != nil {
		return 0, 0, fmt.Errorf("prune processed messages: %w", err)
	}
	metrics.PrunedRows.WithLabelValues("processed_messages").Add(float64(processed))

	windows, err := j.windows.PruneWindows(ctx, j.limiter.PruneBefore(now))
	if err != nil {
		return processed, 0, fmt.Errorf("prune rate windows: %w", err)
	}
	metrics.PrunedRows.WithLabelValues("rate_windows").Add(float64(windows))

	if processed > 0 || windows > 0 {
		j.logger.Info().Int64("processed_messages", processed).Int64("rate_windows", windows).Msg("pruned expired rows")
	}
	return processed, windows, nil
}
