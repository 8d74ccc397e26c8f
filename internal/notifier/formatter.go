package notifier

import (
	"fmt"
	"html"
	"strings"

	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/collector"
	"WaveSentinel/internal/model"
)

// FormatPrice renders a price with precision scaled to its magnitude.
func FormatPrice(price float64) string {
	switch {
	case price < 0.1:
		return fmt.Sprintf("$%.6f", price)
	case price < 100:
		return fmt.Sprintf("$%.4f", price)
	default:
		return fmt.Sprintf("$%.2f", price)
	}
}

// FormatVolume abbreviates a quote volume to K, M or B.
func FormatVolume(volume float64) string {
	switch {
	case volume >= 1e9:
		return fmt.Sprintf("$%.2fB", volume/1e9)
	case volume >= 1e6:
		return fmt.Sprintf("$%.2fM", volume/1e6)
	default:
		return fmt.Sprintf("$%.2fK", volume/1e3)
	}
}

// FormatAnalysis formats one wave report into a Telegram message.
func FormatAnalysis(rep *collector.Report) string {
	var b strings.Builder
	res := rep.Result

	b.WriteString(fmt.Sprintf("🌊 <b>%s</b> %s", html.EscapeString(rep.Symbol), html.EscapeString(rep.Interval)))
	if n := len(rep.Bars); n > 0 {
		b.WriteString(" | " + rep.Bars[n-1].Time.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("形态: <b>%s</b>\n", html.EscapeString(res.PatternName)))
	b.WriteString(fmt.Sprintf("置信度: %d%%\n", res.Confidence))

	if n := len(rep.Bars); n > 0 {
		last := rep.Bars[n-1].Close
		pos := calculator.RangePosition(last, rep.Range)
		b.WriteString(fmt.Sprintf("最新价: %s (区间位置 %.0f%%)\n", FormatPrice(last), pos*100))
		b.WriteString(fmt.Sprintf("区间: %s - %s\n", FormatPrice(rep.Range.Low), FormatPrice(rep.Range.High)))
	}
	b.WriteString(fmt.Sprintf("枢轴点: %d\n", len(res.PivotPoints)))

	if len(res.WaveLabels) > 0 {
		b.WriteString("\n📈 <b>浪标:</b>\n")
		for _, l := range res.WaveLabels {
			b.WriteString(fmt.Sprintf("  %s: %s\n", l.Label, FormatPrice(l.Price)))
		}
	}

	if p := res.Predictions; p != nil {
		b.WriteString(fmt.Sprintf("\n🎯 目标: %s (置信度 %.1f%%)\n", FormatPrice(p.Target), p.Confidence))
	}

	if rep.Fibonacci != nil {
		b.WriteString("\n📐 <b>斐波那契:</b>\n")
		writeLevels(&b, *rep.Fibonacci)
	}
	return b.String()
}

// FormatFibonacci formats the levels between start and end.
func FormatFibonacci(start, end float64, levels model.FibonacciLevels) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>斐波那契</b> %s → %s\n\n", FormatPrice(start), FormatPrice(end)))
	writeLevels(&b, levels)
	return b.String()
}

func writeLevels(b *strings.Builder, levels model.FibonacciLevels) {
	for _, l := range levels.Ordered() {
		b.WriteString(fmt.Sprintf("  %-7s %s\n", l.Label, FormatPrice(l.Price)))
	}
}

// FormatTopSymbols formats a volume ranking.
func FormatTopSymbols(stats []model.TickerStat) string {
	if len(stats) == 0 {
		return "暂无数据"
	}
	var b strings.Builder
	b.WriteString("🏆 <b>24h 成交额排行</b>\n\n")
	for i, s := range stats {
		arrow := "🟢"
		if s.PriceChangePercent < 0 {
			arrow = "🔴"
		}
		b.WriteString(fmt.Sprintf("%d. %s %s %s %+.2f%% | %s\n",
			i+1, arrow, s.Symbol, FormatPrice(s.LastPrice), s.PriceChangePercent, FormatVolume(s.QuoteVolume)))
	}
	return b.String()
}

// FormatScanSummary summarises one watchlist scan.
func FormatScanSummary(runID string, scanned, alerts int, failed []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>扫描完成</b> %s\n", shortID(runID)))
	b.WriteString(fmt.Sprintf("分析: %d | 提醒: %d\n", scanned, alerts))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("失败: %s\n", html.EscapeString(strings.Join(failed, ", "))))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
