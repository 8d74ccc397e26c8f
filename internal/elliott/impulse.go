package elliott

import (
	"math"

	"WaveSentinel/internal/model"
)

// impulseWindow is the number of alternating pivots examined per impulse candidate.
const impulseWindow = 9

var impulseKinds = []model.PivotKind{
	model.PivotLow, model.PivotHigh, model.PivotLow, model.PivotHigh, model.PivotLow,
	model.PivotHigh, model.PivotLow, model.PivotHigh, model.PivotLow,
}

var impulseLabels = []string{"0", "1", "2", "3", "4", "5"}

// Impulse rule weights. They sum to 100.
const (
	weightWave2Shorter   = 20
	weightWave3Longest   = 25
	weightWave4Shorter   = 20
	weightWave2AboveBase = 15
	weightWave4NoOverlap = 20
)

// scoreImpulse applies the five impulse rules to a 9-pivot window.
func scoreImpulse(w []model.PivotPoint) int {
	wave1 := math.Abs(w[1].Price - w[0].Price)
	wave2 := math.Abs(w[2].Price - w[1].Price)
	wave3 := math.Abs(w[3].Price - w[2].Price)
	wave4 := math.Abs(w[4].Price - w[3].Price)
	wave5 := math.Abs(w[5].Price - w[4].Price)

	score := 0
	if wave2 < wave1 {
		score += weightWave2Shorter
	}
	if wave3 > wave1 && wave3 > wave5 {
		score += weightWave3Longest
	}
	if wave4 < wave3 {
		score += weightWave4Shorter
	}
	if w[2].Price > w[0].Price {
		score += weightWave2AboveBase
	}
	if w[4].Price > w[1].Price {
		score += weightWave4NoOverlap
	}
	return score
}

func impulsePosition(offset, last int) string {
	switch last {
	case offset + 8:
		return "Completed 5-wave sequence"
	case offset + 6:
		return "In wave 5"
	case offset + 4:
		return "In wave 4"
	case offset + 2:
		return "In wave 3"
	case offset:
		return "In wave 2"
	default:
		return developing
	}
}

// projectWave5 targets wave 5 at 61.8% of the wave 0→3 distance above wave 4.
func projectWave5(w []model.PivotPoint, score int) *model.PredictionTarget {
	wave1to3 := math.Abs(w[3].Price - w[0].Price)
	return &model.PredictionTarget{
		Target:     w[4].Price + wave1to3*0.618,
		Confidence: float64(score) * 0.9,
	}
}

// MatchImpulse searches pivots for the best-scoring 5-wave impulse. A window
// replaces the current best only with a strictly higher score, so the earliest
// window wins ties and zero-score windows are never reported.
func MatchImpulse(pivots []model.PivotPoint) model.AnalysisResult {
	if len(pivots) < impulseWindow {
		return emptyResult("No impulse pattern found")
	}

	best := -1
	bestScore := 0
	for i := 0; i+impulseWindow <= len(pivots); i++ {
		w := pivots[i : i+impulseWindow]
		if !alternatesAs(w, impulseKinds) {
			continue
		}
		if score := scoreImpulse(w); score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return emptyResult("No impulse pattern found")
	}

	w := pivots[best : best+impulseWindow]
	last := len(pivots) - 1
	position := impulsePosition(best, last)

	var prediction *model.PredictionTarget
	if best+6 == last {
		prediction = projectWave5(w, bestScore)
	}

	return model.AnalysisResult{
		PatternName: "Impulse - " + position,
		Kind:        model.PatternImpulse,
		Position:    position,
		Confidence:  bestScore,
		PivotPoints: []model.PivotPoint{},
		WaveLabels:  labelWindow(w, impulseLabels),
		Predictions: prediction,
	}
}
