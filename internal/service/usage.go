package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ilinovom/linkvault-bot/internal/repository"
)

// DefaultUsageWindow is the interval within which repeated opens collapse
// into one recorded event.
const DefaultUsageWindow = 24 * time.Hour

// UsageTracker records deduplicated "mini-app opened" events.
type UsageTracker struct {
	repo   repository.UsageRepository
	window time.Duration
	log    zerolog.Logger
}

func NewUsageTracker(repo repository.UsageRepository, window time.Duration, log zerolog.Logger) *UsageTracker {
	if window <= 0 {
		window = DefaultUsageWindow
	}
	return &UsageTracker{repo: repo, window: window, log: log}
}

// RecordOpen stores an open for userID at now unless one was stored less
// than the window ago. It reports whether a new event was written.
func (t *UsageTracker) RecordOpen(ctx context.Context, userID int64, now time.Time) (bool, error) {
	inserted, err := t.repo.RecordOpenIfIdle(ctx, userID, now, t.window)
	if err != nil {
		return false, err
	}
	t.log.Debug().Int64("user_id", userID).Bool("inserted", inserted).Msg("app open")
	return inserted, nil
}
