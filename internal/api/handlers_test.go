package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/model"
	"WaveSentinel/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// impulseBars draws a straight-line path through prices, which start and end
// on a low, so each turning point becomes a pivot ten bars apart.
func impulseBars(prices ...float64) []model.PriceBar {
	const gap = 10
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	path := append([]float64{prices[0] + 5}, prices...)
	path = append(path, prices[len(prices)-1]+5)
	var bars []model.PriceBar
	for k := 0; k+1 < len(path); k++ {
		for s := 0; s < gap; s++ {
			p := path[k] + (path[k+1]-path[k])*float64(s)/gap
			bars = append(bars, model.PriceBar{Time: start.AddDate(0, 0, len(bars)), Open: p, High: p, Low: p, Close: p})
		}
	}
	return bars
}

func newTestServer(f collector.Fetcher) *Server {
	col := collector.NewCollector(f, store.NewMemoryKlineStore(), time.Minute, zerolog.Nop())
	return NewServer(col, Options{
		Addr:            ":0",
		AllowedOrigins:  []string{"http://localhost:5173"},
		DefaultInterval: "1d",
		DefaultLimit:    100,
	}, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(&collector.MockFetcher{}), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" || resp["source"] != "mock" {
		t.Errorf("unexpected body %v", resp)
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{Bars: impulseBars(100, 110, 104, 134, 124, 140, 130, 145, 135)})
	w := do(t, s, http.MethodGet, "/api/v1/analysis/btcusdt?interval=4h", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var rep collector.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if rep.Symbol != "BTCUSDT" || rep.Interval != "4h" || len(rep.Bars) != 100 {
		t.Errorf("unexpected report header %s %s %d", rep.Symbol, rep.Interval, len(rep.Bars))
	}
	if rep.Result.Kind != model.PatternImpulse || rep.Result.Confidence != 100 {
		t.Errorf("unexpected result %s %d", rep.Result.Kind, rep.Result.Confidence)
	}
	if rep.Fibonacci == nil {
		t.Error("expected fibonacci levels")
	}
}

func TestAnalysisEndpoint_Errors(t *testing.T) {
	ok := newTestServer(&collector.MockFetcher{Price: 100})
	down := newTestServer(&collector.MockFetcher{Err: errors.New("timeout")})

	tests := []struct {
		name   string
		srv    *Server
		target string
		want   int
	}{
		{"bad interval", ok, "/api/v1/analysis/BTCUSDT?interval=2d", http.StatusBadRequest},
		{"non numeric limit", ok, "/api/v1/analysis/BTCUSDT?limit=abc", http.StatusBadRequest},
		{"limit too large", ok, "/api/v1/analysis/BTCUSDT?limit=5000", http.StatusBadRequest},
		{"exchange down", down, "/api/v1/analysis/BTCUSDT", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, tt.srv, http.MethodGet, tt.target, nil)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body)
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
				t.Errorf("expected error body, got %s", w.Body)
			}
		})
	}
}

func TestAnalyzeBarsEndpoint(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{})
	body, _ := json.Marshal(map[string]any{"bars": impulseBars(100, 110, 104, 134, 124, 140, 130, 145, 135)})

	w := do(t, s, http.MethodPost, "/api/v1/analysis", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res model.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.PatternName != "Impulse - Completed 5-wave sequence" {
		t.Errorf("unexpected pattern %q", res.PatternName)
	}
	if len(res.PivotPoints) != 9 {
		t.Errorf("expected 9 pivots, got %d", len(res.PivotPoints))
	}
}

func TestAnalyzeBarsEndpoint_EpochMillis(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{})
	type kline struct {
		Time   int64   `json:"time"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	}
	var bars []kline
	for i, b := range impulseBars(100, 110, 104, 134, 124, 140, 130, 145, 135) {
		bars = append(bars, kline{
			Time: 1700000000000 + int64(i)*60000,
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		})
	}
	body, _ := json.Marshal(map[string]any{"bars": bars})

	w := do(t, s, http.MethodPost, "/api/v1/analysis", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res model.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Kind != model.PatternImpulse || len(res.PivotPoints) != 9 {
		t.Fatalf("unexpected result %s with %d pivots", res.Kind, len(res.PivotPoints))
	}
	first := res.PivotPoints[0]
	if want := time.UnixMilli(1700000000000 + int64(first.Index)*60000); !first.Time.Equal(want) {
		t.Errorf("pivot time %v, want %v", first.Time, want)
	}
}

func TestAnalyzeBarsEndpoint_ShortInput(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{})
	w := do(t, s, http.MethodPost, "/api/v1/analysis", []byte(`{"bars":[]}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res model.AnalysisResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.PatternName != "Insufficient data" || res.Kind != model.PatternNone {
		t.Errorf("unexpected result %+v", res)
	}

	if w := do(t, s, http.MethodPost, "/api/v1/analysis", []byte(`{}`)); w.Code != http.StatusBadRequest {
		t.Errorf("missing bars: expected 400, got %d", w.Code)
	}
	if w := do(t, s, http.MethodPost, "/api/v1/analysis", []byte(`{"bars":`)); w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}
}

func TestFibonacciEndpoint(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{})
	w := do(t, s, http.MethodGet, "/api/v1/fibonacci?start=100&end=200", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Levels []model.FibonacciLevel `json:"levels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Levels) != 9 {
		t.Fatalf("expected 9 levels, got %d", len(resp.Levels))
	}
	if resp.Levels[0].Label != "0%" || resp.Levels[0].Price != 200 {
		t.Errorf("unexpected first level %+v", resp.Levels[0])
	}
	if resp.Levels[6].Label != "100%" || resp.Levels[6].Price != 100 {
		t.Errorf("unexpected 100%% level %+v", resp.Levels[6])
	}

	if w := do(t, s, http.MethodGet, "/api/v1/fibonacci?start=abc&end=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSymbolsEndpoints(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
		Tickers: []model.TickerStat{
			{Symbol: "ETHUSDT", QuoteVolume: 1},
			{Symbol: "BTCUSDT", QuoteVolume: 2},
			{Symbol: "SOLUSDT", QuoteVolume: 0.5},
		},
	})

	w := do(t, s, http.MethodGet, "/api/v1/symbols", nil)
	var syms struct {
		Symbols []string `json:"symbols"`
		Count   int      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &syms); err != nil || syms.Count != 2 {
		t.Errorf("unexpected symbols response %s", w.Body)
	}

	w = do(t, s, http.MethodGet, "/api/v1/symbols/top?limit=2", nil)
	var top struct {
		Symbols []model.TickerStat `json:"symbols"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &top); err != nil {
		t.Fatal(err)
	}
	if len(top.Symbols) != 2 || top.Symbols[0].Symbol != "BTCUSDT" {
		t.Errorf("unexpected top response %s", w.Body)
	}

	for _, q := range []string{"0", "101", "x"} {
		if w := do(t, s, http.MethodGet, "/api/v1/symbols/top?limit="+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestSymbolsEndpoint_MarketFailure(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{Err: errors.New("down")})
	if w := do(t, s, http.MethodGet, "/api/v1/symbols", nil); w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(&collector.MockFetcher{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/fibonacci", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestCORS_NoOriginsAllowsAll(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{}, nil, 0, zerolog.Nop())
	s := NewServer(col, Options{DefaultInterval: "1d", DefaultLimit: 100}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
