package model

import "time"

// PivotKind marks a pivot as a local high or low.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// PivotPoint is a local price extremum at a bar index.
type PivotPoint struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
	Kind  PivotKind `json:"kind"`
}

// WaveLabel anchors a wave role ("0".."5", "Start", "A".."C") to a bar index.
type WaveLabel struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
	Label string  `json:"label"`
}

// PredictionTarget is a projected price for a pattern still in progress.
type PredictionTarget struct {
	Target     float64 `json:"target"`
	Confidence float64 `json:"confidence"`
}

// PatternKind tags which wave structure an AnalysisResult describes.
type PatternKind string

const (
	PatternNone       PatternKind = "none"
	PatternImpulse    PatternKind = "impulse"
	PatternCorrective PatternKind = "corrective"
)

// AnalysisResult is the output of one wave analysis run.
type AnalysisResult struct {
	PatternName string            `json:"pattern_name"`
	Kind        PatternKind       `json:"kind"`
	Position    string            `json:"position,omitempty"`
	Confidence  int               `json:"confidence"`
	PivotPoints []PivotPoint      `json:"pivot_points"`
	WaveLabels  []WaveLabel       `json:"wave_labels"`
	Predictions *PredictionTarget `json:"predictions"`
}

// FibonacciLevel is one labelled retracement or extension price.
type FibonacciLevel struct {
	Label string  `json:"label"`
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// FibonacciLevels holds the nine levels derived from a start and end price.
type FibonacciLevels struct {
	Level0     float64 `json:"level_0"`
	Level23_6  float64 `json:"level_23_6"`
	Level38_2  float64 `json:"level_38_2"`
	Level50_0  float64 `json:"level_50_0"`
	Level61_8  float64 `json:"level_61_8"`
	Level78_6  float64 `json:"level_78_6"`
	Level100   float64 `json:"level_100"`
	Level161_8 float64 `json:"level_161_8"`
	Level261_8 float64 `json:"level_261_8"`
}

// Ordered returns the levels in chart order, 0% first.
func (f FibonacciLevels) Ordered() []FibonacciLevel {
	return []FibonacciLevel{
		{Label: "0%", Ratio: 0, Price: f.Level0},
		{Label: "23.6%", Ratio: 0.236, Price: f.Level23_6},
		{Label: "38.2%", Ratio: 0.382, Price: f.Level38_2},
		{Label: "50.0%", Ratio: 0.5, Price: f.Level50_0},
		{Label: "61.8%", Ratio: 0.618, Price: f.Level61_8},
		{Label: "78.6%", Ratio: 0.786, Price: f.Level78_6},
		{Label: "100%", Ratio: 1, Price: f.Level100},
		{Label: "161.8%", Ratio: 1.618, Price: f.Level161_8},
		{Label: "261.8%", Ratio: 2.618, Price: f.Level261_8},
	}
}
