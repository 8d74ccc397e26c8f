package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// PriceBar represents a single candlestick bar.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// UnmarshalJSON accepts time either as an RFC 3339 string or as epoch
// milliseconds, the form exchange klines and chart libraries use.
func (b *PriceBar) UnmarshalJSON(data []byte) error {
	type plain PriceBar
	var raw struct {
		plain
		Time json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = PriceBar(raw.plain)

	t := bytes.TrimSpace(raw.Time)
	switch {
	case len(t) == 0 || bytes.Equal(t, []byte("null")):
		b.Time = time.Time{}
	case t[0] == '"':
		if err := b.Time.UnmarshalJSON(t); err != nil {
			return fmt.Errorf("bar time: %w", err)
		}
	default:
		ms, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return fmt.Errorf("bar time %s: %w", t, err)
		}
		b.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

// TickerStat is a 24h rolling summary for one trading pair.
type TickerStat struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"last_price"`
	PriceChangePercent float64 `json:"price_change_percent"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quote_volume"`
}
