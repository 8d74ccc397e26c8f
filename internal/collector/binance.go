package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"WaveSentinel/internal/model"
)

const quoteAsset = "USDT"

// BinanceFetcher implements Fetcher using the Binance spot REST API.
type BinanceFetcher struct {
	client *binance.Client
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
// An empty baseURL keeps the library default.
func NewBinanceFetcher(baseURL, apiKey, secretKey, proxyURL string, timeout time.Duration) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := binance.NewClient(apiKey, secretKey)
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	client.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return &BinanceFetcher{client: client}
}

func (f *BinanceFetcher) Name() string { return "binance" }

func (f *BinanceFetcher) FetchKlines(ctx context.Context, symbol, interval string, limit int) ([]model.PriceBar, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: klines %s %s: %v", ErrMarketData, symbol, interval, err)
	}

	bars := make([]model.PriceBar, 0, len(klines))
	for _, k := range klines {
		bar, err := toPriceBar(k)
		if err != nil {
			return nil, fmt.Errorf("%w: kline %s at %d: %v", ErrMarketData, symbol, k.OpenTime, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no klines returned for %s %s", ErrMarketData, symbol, interval)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func toPriceBar(k *binance.Kline) (model.PriceBar, error) {
	vals, err := parseDecimals(k.Open, k.High, k.Low, k.Close, k.Volume)
	if err != nil {
		return model.PriceBar{}, err
	}
	return model.PriceBar{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func (f *BinanceFetcher) FetchTopSymbols(ctx context.Context, limit int) ([]model.TickerStat, error) {
	stats, err := f.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: 24h tickers: %v", ErrMarketData, err)
	}

	out := make([]model.TickerStat, 0, len(stats))
	for _, s := range stats {
		if !strings.HasSuffix(s.Symbol, quoteAsset) {
			continue
		}
		vals, err := parseDecimals(s.LastPrice, s.PriceChangePercent, s.HighPrice, s.LowPrice, s.Volume, s.QuoteVolume)
		if err != nil {
			// Delisted pairs sometimes report empty fields.
			continue
		}
		out = append(out, model.TickerStat{
			Symbol:             s.Symbol,
			LastPrice:          vals[0],
			PriceChangePercent: vals[1],
			HighPrice:          vals[2],
			LowPrice:           vals[3],
			Volume:             vals[4],
			QuoteVolume:        vals[5],
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].QuoteVolume > out[j].QuoteVolume })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *BinanceFetcher) FetchSymbols(ctx context.Context) ([]string, error) {
	info, err := f.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange info: %v", ErrMarketData, err)
	}
	var symbols []string
	for _, s := range info.Symbols {
		if s.QuoteAsset == quoteAsset && s.Status == "TRADING" {
			symbols = append(symbols, s.Symbol)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (f *BinanceFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := f.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: price %s: %v", ErrMarketData, symbol, err)
	}
	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}
		v, err := parseDecimals(p.Price)
		if err != nil {
			return 0, fmt.Errorf("%w: price %s: %v", ErrMarketData, symbol, err)
		}
		return v[0], nil
	}
	return 0, fmt.Errorf("%w: no price for %s", ErrMarketData, symbol)
}

// parseDecimals converts exchange price strings exactly before narrowing to float64.
func parseDecimals(raw ...string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i], _ = d.Float64()
	}
	return out, nil
}
