package calculator

import (
	"errors"
	"math"

	"WaveSentinel/internal/model"
)

// PriceRange is the lowest low and highest high over a set of bars.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// CalculatePriceRange scans all bars for the extreme low and high, widened to
// include any extra prices such as a projected target.
func CalculatePriceRange(bars []model.PriceBar, extra ...float64) (PriceRange, error) {
	if len(bars) == 0 {
		return PriceRange{}, errors.New("no bars provided")
	}
	r := PriceRange{Low: math.Inf(1), High: math.Inf(-1)}
	for _, b := range bars {
		if b.High > r.High {
			r.High = b.High
		}
		if b.Low < r.Low {
			r.Low = b.Low
		}
	}
	for _, p := range extra {
		if p > r.High {
			r.High = p
		}
		if p < r.Low {
			r.Low = p
		}
	}
	return r, nil
}

// RangePosition returns where price sits inside r, clamped to 0.0~1.0.
func RangePosition(price float64, r PriceRange) float64 {
	if r.High == r.Low {
		return 0.5
	}
	pos := (price - r.Low) / (r.High - r.Low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos
}
