package elliott

import (
	"math"
	"math/rand"
	"testing"

	"WaveSentinel/internal/model"
)

func TestScoreCorrective(t *testing.T) {
	tests := []struct {
		name   string
		first  model.PivotKind
		prices []float64
		want   int
	}{
		{"retracement and c equals a", model.PivotHigh, []float64{200, 150, 180, 130, 170}, 90},
		{"retracement and c at 0.618", model.PivotLow, []float64{100, 150, 130, 161, 120}, 90},
		{"retracement only", model.PivotHigh, []float64{200, 150, 180, 175, 190}, 60},
		{"fib only", model.PivotHigh, []float64{200, 190, 220, 210, 230}, 55},
		{"base only", model.PivotLow, []float64{100, 110, 80, 150, 120}, 25},
	}
	for _, tt := range tests {
		score, _ := scoreCorrective(pivotsFrom(tt.first, tt.prices...))
		if score != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, score)
		}
	}
}

func TestWaveCMatchesFib(t *testing.T) {
	tests := []struct {
		a, c float64
		want bool
	}{
		{0, 10, false},
		{0, 0, false},
		{10, 6.2, true},
		{10, 10, true},
		{10, 16.18, true},
		{10, 13, false},
		{10, 4, false},
		{10, 30, false},
	}
	for _, tt := range tests {
		if got := waveCMatchesFib(tt.a, tt.c); got != tt.want {
			t.Errorf("a=%v c=%v: expected %v, got %v", tt.a, tt.c, tt.want, got)
		}
	}
}

func TestMatchCorrective_FlatWaveA(t *testing.T) {
	res := MatchCorrective(pivotsFrom(model.PivotHigh, 100, 100, 120, 90, 130))
	if res.Confidence != correctiveBase {
		t.Errorf("expected base score for flat wave A, got %d", res.Confidence)
	}
}

func TestMatchCorrective_Completed(t *testing.T) {
	pivots := pivotsFrom(model.PivotHigh, 200, 150, 180, 130, 170)
	res := MatchCorrective(pivots)
	if res.PatternName != "Corrective ABC - Completed ABC sequence" || res.Confidence != 90 {
		t.Errorf("got %q confidence %d", res.PatternName, res.Confidence)
	}
	want := []string{"Start", "A", "B", "C"}
	if len(res.WaveLabels) != len(want) {
		t.Fatalf("expected 4 labels, got %d", len(res.WaveLabels))
	}
	for i, l := range res.WaveLabels {
		if l.Label != want[i] || l.Index != pivots[i].Index {
			t.Errorf("label %d: got %+v", i, l)
		}
	}
}

func TestMatchCorrective_NotEnoughPivots(t *testing.T) {
	res := MatchCorrective(pivotsFrom(model.PivotHigh, 200, 150, 180, 130))
	if res.PatternName != "No corrective pattern found" || res.Confidence != 0 {
		t.Errorf("got %q confidence %d", res.PatternName, res.Confidence)
	}
	if res.Kind != model.PatternNone {
		t.Errorf("expected none kind, got %q", res.Kind)
	}
}

func TestMatchCorrective_NonAlternating(t *testing.T) {
	pivots := pivotsFrom(model.PivotHigh, 200, 150, 180, 130, 170)
	pivots[2].Kind = model.PivotLow
	if res := MatchCorrective(pivots); res.PatternName != "No corrective pattern found" {
		t.Errorf("broken alternation must not match, got %q", res.PatternName)
	}
}

func TestMatchCorrective_DevelopingAndTies(t *testing.T) {
	// Seven pivots: offsets 0, 1 and 2 all alternate. Offset 0 scores 90,
	// later windows at most tie, so offset 0 is retained.
	pivots := pivotsFrom(model.PivotHigh, 200, 150, 180, 130, 170, 120, 160)
	res := MatchCorrective(pivots)
	if res.WaveLabels[0].Index != pivots[0].Index {
		t.Errorf("expected earliest window, labels start at %d", res.WaveLabels[0].Index)
	}
	if res.PatternName != "Corrective ABC - Developing new pattern" {
		t.Errorf("unexpected name %q", res.PatternName)
	}
}

func TestCorrectivePosition(t *testing.T) {
	tests := []struct {
		offset, last int
		want         string
	}{
		{2, 6, "Completed ABC sequence"},
		{2, 4, "In wave C"},
		{2, 2, "In wave B"},
		{0, 9, "Developing new pattern"},
	}
	for _, tt := range tests {
		if got := correctivePosition(tt.offset, tt.last); got != tt.want {
			t.Errorf("offset=%d last=%d: expected %q, got %q", tt.offset, tt.last, tt.want, got)
		}
	}
}

func TestProjectWaveC(t *testing.T) {
	p := projectWaveC(180, 50, 90)
	if math.Abs(p.Target-(180+50*1.618)) > 1e-9 {
		t.Errorf("unexpected target %v", p.Target)
	}
	if math.Abs(p.Confidence-72) > 1e-9 {
		t.Errorf("expected confidence 72, got %v", p.Confidence)
	}
}

func TestMatchCorrective_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 500; trial++ {
		n := 5 + rng.Intn(10)
		prices := make([]float64, n)
		for k := range prices {
			prices[k] = 50 + rng.Float64()*100
		}
		first := model.PivotLow
		if trial%2 == 0 {
			first = model.PivotHigh
		}
		res := MatchCorrective(pivotsFrom(first, prices...))
		if res.Confidence < correctiveBase || res.Confidence > 90 {
			t.Fatalf("trial %d: confidence %d outside [25, 90]", trial, res.Confidence)
		}
	}
}
