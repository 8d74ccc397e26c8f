// Package elliott matches pivot sequences against Elliott Wave impulse and
// corrective structures. Every function is pure and safe for concurrent use.
package elliott

import (
	"WaveSentinel/internal/calculator"
	"WaveSentinel/internal/model"
)

const (
	// MinBars is the shortest bar series that is analysed at all.
	MinBars = 30
	// MinPivots is the fewest pivots needed before any pattern search runs.
	MinPivots = 5

	developing = "Developing new pattern"
)

// Analyze detects pivots in bars and returns the higher-confidence of the best
// impulse and best corrective pattern, with the full pivot list attached.
// Corrective wins when the confidences are equal.
func Analyze(bars []model.PriceBar) model.AnalysisResult {
	if len(bars) < MinBars {
		return emptyResult("Insufficient data")
	}

	pivots := calculator.DetectPivots(bars, calculator.PivotLookback)
	if len(pivots) < MinPivots {
		res := emptyResult("Insufficient pivot points")
		res.PivotPoints = pivots
		return res
	}

	res := selectPattern(MatchImpulse(pivots), MatchCorrective(pivots))
	res.PivotPoints = pivots
	return res
}

func selectPattern(impulse, corrective model.AnalysisResult) model.AnalysisResult {
	if impulse.Confidence > corrective.Confidence {
		return impulse
	}
	return corrective
}

func emptyResult(name string) model.AnalysisResult {
	return model.AnalysisResult{
		PatternName: name,
		Kind:        model.PatternNone,
		Confidence:  0,
		PivotPoints: []model.PivotPoint{},
		WaveLabels:  []model.WaveLabel{},
	}
}

func alternatesAs(w []model.PivotPoint, kinds []model.PivotKind) bool {
	for i, k := range kinds {
		if w[i].Kind != k {
			return false
		}
	}
	return true
}

func labelWindow(w []model.PivotPoint, labels []string) []model.WaveLabel {
	out := make([]model.WaveLabel, len(labels))
	for i, l := range labels {
		out[i] = model.WaveLabel{Index: w[i].Index, Price: w[i].Price, Label: l}
	}
	return out
}
