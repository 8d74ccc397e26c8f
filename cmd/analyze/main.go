// Command analyze runs a one-shot wave analysis for a symbol and prints it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/config"
	"WaveSentinel/internal/logging"
	"WaveSentinel/internal/notifier"
)

func main() {
	var (
		cfgPath  = flag.String("config", "configs/config.yaml", "config file")
		symbol   = flag.String("symbol", "BTCUSDT", "trading pair")
		interval = flag.String("interval", "", "kline interval (default from config)")
		limit    = flag.Int("limit", 0, "number of bars (default from config)")
		asJSON   = flag.Bool("json", false, "print the report as JSON")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	// Logs go to stderr so stdout stays machine readable.
	cfg.Log.Output = "stderr"
	logger := logging.New(cfg.Log)

	if *interval == "" {
		*interval = cfg.Analysis.DefaultInterval
	}
	if *limit == 0 {
		*limit = cfg.Analysis.DefaultLimit
	}

	fetcher := collector.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Proxy, cfg.Binance.Timeout)
	col := collector.NewCollector(fetcher, nil, 0, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Binance.Timeout+5*time.Second)
	defer cancel()

	rep, err := col.Analyze(ctx, *symbol, *interval, *limit)
	switch {
	case errors.Is(err, collector.ErrInvalidRequest):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	printReport(rep)
}

func printReport(rep *collector.Report) {
	res := rep.Result

	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle(fmt.Sprintf("%s %s", rep.Symbol, rep.Interval))
	summary.AppendRow(table.Row{"Pattern", res.PatternName})
	summary.AppendRow(table.Row{"Confidence", fmt.Sprintf("%d%%", res.Confidence)})
	summary.AppendRow(table.Row{"Bars", len(rep.Bars)})
	summary.AppendRow(table.Row{"Pivots", len(res.PivotPoints)})
	summary.AppendRow(table.Row{"Range", fmt.Sprintf("%s - %s", notifier.FormatPrice(rep.Range.Low), notifier.FormatPrice(rep.Range.High))})
	if n := len(rep.Bars); n > 0 {
		last := rep.Bars[n-1].Close
		summary.AppendRow(table.Row{"Last close", fmt.Sprintf("%s (%.0f%% of range)",
			notifier.FormatPrice(last), calculator.RangePosition(last, rep.Range)*100)})
	}
	if p := res.Predictions; p != nil {
		summary.AppendRow(table.Row{"Target", fmt.Sprintf("%s (%.1f%%)", notifier.FormatPrice(p.Target), p.Confidence)})
	}
	summary.Render()

	if len(res.WaveLabels) > 0 {
		waves := table.NewWriter()
		waves.SetOutputMirror(os.Stdout)
		waves.SetStyle(table.StyleLight)
		waves.SetTitle("Waves")
		waves.AppendHeader(table.Row{"Label", "Bar", "Time", "Price"})
		for _, l := range res.WaveLabels {
			ts := ""
			if l.Index >= 0 && l.Index < len(rep.Bars) {
				ts = rep.Bars[l.Index].Time.Format("2006-01-02 15:04")
			}
			waves.AppendRow(table.Row{l.Label, l.Index, ts, notifier.FormatPrice(l.Price)})
		}
		waves.Render()
	}

	if rep.Fibonacci != nil {
		fib := table.NewWriter()
		fib.SetOutputMirror(os.Stdout)
		fib.SetStyle(table.StyleLight)
		fib.SetTitle("Fibonacci")
		fib.AppendHeader(table.Row{"Level", "Price"})
		for _, l := range rep.Fibonacci.Ordered() {
			fib.AppendRow(table.Row{l.Label, notifier.FormatPrice(l.Price)})
		}
		fib.Render()
	}
}
