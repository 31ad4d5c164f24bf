package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ilinovom/linkvault-bot/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("bundle code already exists")
)

// UserRepository abstracts persistence of bot users.
type UserRepository interface {
	// UpsertUser inserts the user or refreshes its display fields. The
	// first-seen timestamp of an existing user is never changed.
	UpsertUser(ctx context.Context, u *model.User) error
	// ListUserIDs returns every known user id in a stable order.
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// BundleRepository abstracts persistence of content bundles.
type BundleRepository interface {
	// CreateBundle inserts b atomically. A code collision returns
	// ErrDuplicateCode and leaves the stored bundle untouched.
	CreateBundle(ctx context.Context, b *model.Bundle) error
	GetBundle(ctx context.Context, code string) (*model.Bundle, error)
	ListBundles(ctx context.Context) ([]model.BundleSummary, error)
}

// UsageRepository stores "app opened" events.
type UsageRepository interface {
	// RecordOpenIfIdle inserts an event at `at` unless the user already has
	// one newer than at-window. Check and insert are one transaction.
	RecordOpenIfIdle(ctx context.Context, userID int64, at time.Time, window time.Duration) (bool, error)
}

// SettingsRepository is a string key/value store.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// StatsRepository derives aggregate counters from stored rows.
type StatsRepository interface {
	Stats(ctx context.Context, now time.Time) (model.Stats, error)
}

// Store is the full persistence gateway.
type Store interface {
	UserRepository
	BundleRepository
	UsageRepository
	SettingsRepository
	StatsRepository
	Ping(ctx context.Context) error
	Close() error
}
