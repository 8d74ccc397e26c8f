package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/config"
	"WaveSentinel/internal/elliott"
	"WaveSentinel/internal/model"
	"WaveSentinel/internal/store"
)

// Report is one symbol's analysis together with the bars it was computed on.
type Report struct {
	Symbol    string                 `json:"symbol"`
	Interval  string                 `json:"interval"`
	Bars      []model.PriceBar       `json:"bars"`
	Result    model.AnalysisResult   `json:"result"`
	Fibonacci *model.FibonacciLevels `json:"fibonacci,omitempty"`
	Range     calculator.PriceRange  `json:"range"`
}

// Collector orchestrates bar fetching, caching and wave analysis.
type Collector struct {
	fetcher Fetcher
	store   store.KlineStore
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewCollector creates a new Collector. A nil store disables caching.
func NewCollector(fetcher Fetcher, st store.KlineStore, ttl time.Duration, logger zerolog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		store:   st,
		ttl:     ttl,
		log:     logger.With().Str("component", "collector").Logger(),
		now:     time.Now,
	}
}

// Fetcher returns the underlying market data source.
func (c *Collector) Fetcher() Fetcher { return c.fetcher }

// ValidateRequest checks interval and limit against what the exchange accepts.
func ValidateRequest(interval string, limit int) error {
	if !config.ValidIntervals[interval] {
		return fmt.Errorf("%w: unsupported interval %q", ErrInvalidRequest, interval)
	}
	if limit <= 0 || limit > config.MaxLimit {
		return fmt.Errorf("%w: limit must be in 1..%d", ErrInvalidRequest, config.MaxLimit)
	}
	return nil
}

// Bars returns up to limit bars, served from the store while fresh.
func (c *Collector) Bars(ctx context.Context, symbol, interval string, limit int) ([]model.PriceBar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidRequest)
	}
	if err := ValidateRequest(interval, limit); err != nil {
		return nil, err
	}

	if c.store != nil {
		series, err := c.store.Get(ctx, symbol, interval)
		switch {
		case err == nil && series.Fresh(c.now(), c.ttl, limit):
			c.log.Debug().Str("symbol", symbol).Str("interval", interval).Msg("cache hit")
			return tail(series.Bars, limit), nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
		}
	}

	bars, err := c.fetcher.FetchKlines(ctx, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	if c.store != nil {
		if err := c.store.Put(ctx, symbol, interval, bars); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
		}
	}
	return bars, nil
}

// Analyze fetches bars and runs the wave analysis on them.
func (c *Collector) Analyze(ctx context.Context, symbol, interval string, limit int) (*Report, error) {
	bars, err := c.Bars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	rep := BuildReport(strings.ToUpper(strings.TrimSpace(symbol)), interval, bars)
	c.log.Info().
		Str("symbol", rep.Symbol).
		Str("interval", interval).
		Int("bars", len(bars)).
		Str("pattern", rep.Result.PatternName).
		Int("confidence", rep.Result.Confidence).
		Msg("analysis complete")
	return rep, nil
}

// BuildReport analyses bars and derives the Fibonacci levels of the two most
// recent wave labels and the chart range including any prediction target.
func BuildReport(symbol, interval string, bars []model.PriceBar) *Report {
	result := elliott.Analyze(bars)
	rep := &Report{Symbol: symbol, Interval: interval, Bars: bars, Result: result}

	if levels, ok := calculator.RecentFibonacciLevels(result.WaveLabels); ok {
		rep.Fibonacci = &levels
	}

	var extra []float64
	if result.Predictions != nil {
		extra = append(extra, result.Predictions.Target)
	}
	if r, err := calculator.CalculatePriceRange(bars, extra...); err == nil {
		rep.Range = r
	}
	return rep
}

func tail(bars []model.PriceBar, n int) []model.PriceBar {
	if len(bars) <= n {
		return bars
	}
	return bars[len(bars)-n:]
}
