package collector

import (
	"context"
	"errors"

	"WaveSentinel/internal/model"
)

// ErrMarketData marks any failure to obtain bars, tickers or prices from the exchange.
var ErrMarketData = errors.New("market data unavailable")

// ErrInvalidRequest marks an unsupported interval or limit.
var ErrInvalidRequest = errors.New("invalid request")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchKlines returns up to limit bars in ascending time order.
	FetchKlines(ctx context.Context, symbol, interval string, limit int) ([]model.PriceBar, error)
	// FetchTopSymbols returns USDT pairs ordered by 24h quote volume, largest first.
	FetchTopSymbols(ctx context.Context, limit int) ([]model.TickerStat, error)
	// FetchSymbols lists the USDT pairs currently trading.
	FetchSymbols(ctx context.Context) ([]string, error)
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Name() string
}
