package calculator

import "WaveSentinel/internal/model"

// CalculateFibonacciLevels derives retracement levels measured back from endPrice
// toward startPrice, plus the 161.8% and 261.8% extensions beyond startPrice.
func CalculateFibonacciLevels(startPrice, endPrice float64) model.FibonacciLevels {
	diff := endPrice - startPrice
	return model.FibonacciLevels{
		Level0:     endPrice,
		Level23_6:  endPrice - diff*0.236,
		Level38_2:  endPrice - diff*0.382,
		Level50_0:  endPrice - diff*0.5,
		Level61_8:  endPrice - diff*0.618,
		Level78_6:  endPrice - diff*0.786,
		Level100:   startPrice,
		Level161_8: startPrice - diff*0.618,
		Level261_8: startPrice - diff*1.618,
	}
}

// RecentFibonacciLevels measures levels between the last two wave labels.
// It reports false when fewer than two labels are present.
func RecentFibonacciLevels(labels []model.WaveLabel) (model.FibonacciLevels, bool) {
	if len(labels) < 2 {
		return model.FibonacciLevels{}, false
	}
	start := labels[len(labels)-2]
	end := labels[len(labels)-1]
	return CalculateFibonacciLevels(start.Price, end.Price), true
}
