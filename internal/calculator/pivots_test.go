package calculator

import (
	"testing"
	"time"

	"WaveSentinel/internal/model"
)

func barsFromHighsLows(highs, lows []float64) []model.PriceBar {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(highs))
	for i := range highs {
		bars[i] = model.PriceBar{
			Time:  t0.Add(time.Duration(i) * time.Hour),
			Open:  (highs[i] + lows[i]) / 2,
			High:  highs[i],
			Low:   lows[i],
			Close: (highs[i] + lows[i]) / 2,
		}
	}
	return bars
}

// zigzag builds bars whose highs/lows peak and trough every `half` bars.
func zigzag(n, half int) []model.PriceBar {
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		phase := i % (2 * half)
		d := phase
		if phase > half {
			d = 2*half - phase
		}
		highs[i] = 100 + float64(d)*2 + 1
		lows[i] = 100 + float64(d)*2 - 1
	}
	return barsFromHighsLows(highs, lows)
}

func TestDetectPivots_ShortInput(t *testing.T) {
	for _, n := range []int{0, 1, 5, 10} {
		bars := zigzag(n, 6)
		if got := DetectPivots(bars, PivotLookback); len(got) != 0 {
			t.Errorf("n=%d: expected no pivots, got %d", n, len(got))
		}
	}
}

func TestDetectPivots_SinglePeak(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 5, 10, 5, 4, 3, 2, 1}
	lows := []float64{0.5, 1.5, 2.5, 3.5, 4.5, 9, 4.5, 3.5, 2.5, 1.5, 0.5}
	pivots := DetectPivots(barsFromHighsLows(highs, lows), PivotLookback)
	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d", len(pivots))
	}
	p := pivots[0]
	if p.Index != 5 || p.Kind != model.PivotHigh || p.Price != 10 {
		t.Errorf("unexpected pivot %+v", p)
	}
}

func TestDetectPivots_TieDisqualifies(t *testing.T) {
	highs := []float64{1, 2, 3, 4, 10, 10, 5, 4, 3, 2, 1, 0.5}
	lows := []float64{0.5, 1.5, 2.5, 3.5, 9, 9, 4.5, 3.5, 2.5, 1.5, 0.5, 0.2}
	for _, p := range DetectPivots(barsFromHighsLows(highs, lows), PivotLookback) {
		if p.Kind == model.PivotHigh {
			t.Errorf("tied highs must not produce a pivot high, got %+v", p)
		}
	}
}

func TestDetectPivots_HighCheckedBeforeLow(t *testing.T) {
	// Bar 5 has both the highest high and the lowest low of its window.
	highs := []float64{5, 5, 5, 5, 5, 20, 5, 5, 5, 5, 5}
	lows := []float64{4, 4, 4, 4, 4, 1, 4, 4, 4, 4, 4}
	pivots := DetectPivots(barsFromHighsLows(highs, lows), PivotLookback)
	if len(pivots) != 1 {
		t.Fatalf("expected 1 pivot, got %d", len(pivots))
	}
	if pivots[0].Kind != model.PivotHigh || pivots[0].Price != 20 {
		t.Errorf("expected high pivot at 20, got %+v", pivots[0])
	}
}

func TestDetectPivots_StrictExtremaAndOrder(t *testing.T) {
	bars := zigzag(120, 7)
	pivots := DetectPivots(bars, PivotLookback)
	if len(pivots) == 0 {
		t.Fatal("expected pivots on zigzag series")
	}
	prev := -1
	for _, p := range pivots {
		if p.Index <= prev {
			t.Fatalf("pivot indices not strictly increasing: %d after %d", p.Index, prev)
		}
		prev = p.Index
		if p.Index < PivotLookback || p.Index >= len(bars)-PivotLookback {
			t.Fatalf("pivot index %d outside scan range", p.Index)
		}
		for j := p.Index - PivotLookback; j <= p.Index+PivotLookback; j++ {
			if j == p.Index {
				continue
			}
			switch p.Kind {
			case model.PivotHigh:
				if bars[j].High >= bars[p.Index].High {
					t.Errorf("pivot high at %d not strict vs bar %d", p.Index, j)
				}
			case model.PivotLow:
				if bars[j].Low <= bars[p.Index].Low {
					t.Errorf("pivot low at %d not strict vs bar %d", p.Index, j)
				}
			}
		}
		if !p.Time.Equal(bars[p.Index].Time) {
			t.Errorf("pivot time mismatch at %d", p.Index)
		}
	}
}
