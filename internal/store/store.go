package store

import (
	"context"
	"errors"
	"time"

	"WaveSentinel/internal/model"
)

// ErrNotFound is returned when no bars are cached for a symbol and interval.
var ErrNotFound = errors.New("series not cached")

// Series is a cached bar sequence and the time it was fetched.
type Series struct {
	Bars      []model.PriceBar
	FetchedAt time.Time
}

// Fresh reports whether s was fetched within ttl of now and holds at least limit bars.
func (s Series) Fresh(now time.Time, ttl time.Duration, limit int) bool {
	return ttl > 0 && len(s.Bars) >= limit && now.Sub(s.FetchedAt) < ttl
}

// KlineStore caches the most recent bar sequence per symbol and interval.
// Put replaces any earlier series for the same key.
type KlineStore interface {
	Put(ctx context.Context, symbol, interval string, bars []model.PriceBar) error
	Get(ctx context.Context, symbol, interval string) (Series, error)
	Close() error
}

func key(symbol, interval string) string { return symbol + "@" + interval }
