package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"WaveSentinel/internal/model"
)

// MemoryKlineStore is an in-process KlineStore used when SQLite is not configured.
type MemoryKlineStore struct {
	mu   sync.RWMutex
	data map[string]Series
	now  func() time.Time
}

func NewMemoryKlineStore() *MemoryKlineStore {
	return &MemoryKlineStore{data: make(map[string]Series), now: time.Now}
}

// Put stores a copy of bars.
func (s *MemoryKlineStore) Put(_ context.Context, symbol, interval string, bars []model.PriceBar) error {
	if symbol == "" || interval == "" {
		return errors.New("symbol and interval are required")
	}
	dst := make([]model.PriceBar, len(bars))
	copy(dst, bars)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(symbol, interval)] = Series{Bars: dst, FetchedAt: s.now()}
	return nil
}

// Get returns a copy of the cached series.
func (s *MemoryKlineStore) Get(_ context.Context, symbol, interval string) (Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.data[key(symbol, interval)]
	if !ok {
		return Series{}, ErrNotFound
	}
	out := make([]model.PriceBar, len(cur.Bars))
	copy(out, cur.Bars)
	return Series{Bars: out, FetchedAt: cur.FetchedAt}, nil
}

func (s *MemoryKlineStore) Close() error { return nil }
