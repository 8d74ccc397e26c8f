package collector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"WaveSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Bars    []model.PriceBar
	Tickers []model.TickerStat
	Symbols []string
	// Err, when set, is returned wrapped in ErrMarketData by every call.
	Err error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchKlines(_ context.Context, _, _ string, limit int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, m.Err)
	}
	if m.Bars != nil {
		if limit > 0 && len(m.Bars) > limit {
			return m.Bars[len(m.Bars)-limit:], nil
		}
		return m.Bars, nil
	}
	return generateMockBars(m.Price, limit), nil
}

func (m *MockFetcher) FetchTopSymbols(_ context.Context, limit int) ([]model.TickerStat, error) {
	if m.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, m.Err)
	}
	out := append([]model.TickerStat(nil), m.Tickers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuoteVolume > out[j].QuoteVolume })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockFetcher) FetchSymbols(_ context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketData, m.Err)
	}
	return m.Symbols, nil
}

func (m *MockFetcher) FetchCurrentPrice(_ context.Context, _ string) (float64, error) {
	if m.Err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMarketData, m.Err)
	}
	return m.Price, nil
}

// generateMockBars draws a damped sine around basePrice so the series has swings.
func generateMockBars(basePrice float64, count int) []model.PriceBar {
	if basePrice <= 0 {
		basePrice = 100
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/3) + float64(i)*0.001)
		bars[i] = model.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
