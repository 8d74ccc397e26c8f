package calculator

import "WaveSentinel/internal/model"

// PivotLookback is the number of bars checked on each side of a pivot candidate.
const PivotLookback = 5

// DetectPivots returns the local highs and lows of bars in ascending index order.
// Bar i is a high if its High is strictly above every other High in
// [i-lookback, i+lookback]; only when that fails is it tested as a low, with
// Low strictly below every other Low. Equal extremes disqualify the bar.
func DetectPivots(bars []model.PriceBar, lookback int) []model.PivotPoint {
	pivots := []model.PivotPoint{}
	if lookback < 0 || len(bars) < 2*lookback+1 {
		return pivots
	}
	for i := lookback; i < len(bars)-lookback; i++ {
		if isPivotHigh(bars, i, lookback) {
			pivots = append(pivots, model.PivotPoint{
				Index: i,
				Price: bars[i].High,
				Time:  bars[i].Time,
				Kind:  model.PivotHigh,
			})
		} else if isPivotLow(bars, i, lookback) {
			pivots = append(pivots, model.PivotPoint{
				Index: i,
				Price: bars[i].Low,
				Time:  bars[i].Time,
				Kind:  model.PivotLow,
			})
		}
	}
	return pivots
}

func isPivotHigh(bars []model.PriceBar, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j != i && bars[j].High >= bars[i].High {
			return false
		}
	}
	return true
}

func isPivotLow(bars []model.PriceBar, i, lookback int) bool {
	for j := i - lookback; j <= i+lookback; j++ {
		if j != i && bars[j].Low <= bars[i].Low {
			return false
		}
	}
	return true
}
