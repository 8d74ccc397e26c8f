package elliott

import (
	"math"

	"WaveSentinel/internal/model"
)

const correctiveWindow = 5

var (
	correctiveFromHigh = []model.PivotKind{
		model.PivotHigh, model.PivotLow, model.PivotHigh, model.PivotLow, model.PivotHigh,
	}
	correctiveFromLow = []model.PivotKind{
		model.PivotLow, model.PivotHigh, model.PivotLow, model.PivotHigh, model.PivotLow,
	}
	correctiveLabels = []string{"Start", "A", "B", "C"}
)

const (
	correctiveBase      = 25
	weightBRetracement  = 35
	weightCFibRatio     = 30
	waveCRatioTolerance = 0.2
)

var waveCRatios = []float64{0.618, 1.0, 1.618}

// waveCMatchesFib reports whether waveC/waveA lies within tolerance of a
// Fibonacci ratio. A flat wave A never matches.
func waveCMatchesFib(waveA, waveC float64) bool {
	if waveA == 0 {
		return false
	}
	ratio := waveC / waveA
	for _, r := range waveCRatios {
		if math.Abs(ratio-r) < waveCRatioTolerance {
			return true
		}
	}
	return false
}

func scoreCorrective(w []model.PivotPoint) (score int, waveA float64) {
	waveA = math.Abs(w[1].Price - w[0].Price)
	waveB := math.Abs(w[2].Price - w[1].Price)
	waveC := math.Abs(w[3].Price - w[2].Price)

	score = correctiveBase
	if waveB < waveA {
		score += weightBRetracement
	}
	if waveCMatchesFib(waveA, waveC) {
		score += weightCFibRatio
	}
	return score, waveA
}

func correctivePosition(offset, last int) string {
	switch last {
	case offset + 4:
		return "Completed ABC sequence"
	case offset + 2:
		return "In wave C"
	case offset:
		return "In wave B"
	default:
		return developing
	}
}

// projectWaveC targets wave C at 161.8% of wave A measured from the B pivot.
func projectWaveC(bPrice, waveA float64, score int) *model.PredictionTarget {
	return &model.PredictionTarget{
		Target:     bPrice + waveA*1.618,
		Confidence: float64(score) * 0.8,
	}
}

// MatchCorrective searches pivots for the best-scoring A-B-C correction using
// the same strict, first-found-wins selection as MatchImpulse.
func MatchCorrective(pivots []model.PivotPoint) model.AnalysisResult {
	if len(pivots) < correctiveWindow {
		return emptyResult("No corrective pattern found")
	}

	best := -1
	bestScore := 0
	var bestWaveA float64
	for i := 0; i+correctiveWindow <= len(pivots); i++ {
		w := pivots[i : i+correctiveWindow]
		if !alternatesAs(w, correctiveFromHigh) && !alternatesAs(w, correctiveFromLow) {
			continue
		}
		if score, waveA := scoreCorrective(w); score > bestScore {
			bestScore = score
			bestWaveA = waveA
			best = i
		}
	}
	if best < 0 {
		return emptyResult("No corrective pattern found")
	}

	w := pivots[best : best+correctiveWindow]
	last := len(pivots) - 1
	position := correctivePosition(best, last)

	var prediction *model.PredictionTarget
	if best+2 == last {
		prediction = projectWaveC(w[2].Price, bestWaveA, bestScore)
	}

	return model.AnalysisResult{
		PatternName: "Corrective ABC - " + position,
		Kind:        model.PatternCorrective,
		Position:    position,
		Confidence:  bestScore,
		PivotPoints: []model.PivotPoint{},
		WaveLabels:  labelWindow(w, correctiveLabels),
		Predictions: prediction,
	}
}
