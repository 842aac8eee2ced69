package calculator

import (
	"errors"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average series of values, aligned to the input.
// Entries before the first full window are zero.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) < period {
		// talib indexes past the end on short input
		return make([]float64, len(values)), nil
	}
	if period == 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out, nil
	}
	return talib.Sma(values, period), nil
}

// TrailingAverage returns, for every index i, the mean of values[i-period .. i-1].
// The current bar is excluded so a candle is compared against the candles before it.
// Entries without a full window are zero.
func TrailingAverage(values []float64, period int) ([]float64, error) {
	sma, err := SMA(values, period)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i := period; i < len(values); i++ {
		out[i] = sma[i-1]
	}
	return out, nil
}

// Bodies returns the real-body length of every bar.
func Bodies(open, high, low, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		out[i] = CandleAt(open, high, low, close, i).Body()
	}
	return out
}

// Ranges returns the high-low range of every bar.
func Ranges(high, low []float64) []float64 {
	out := make([]float64, len(high))
	for i := range high {
		out[i] = high[i] - low[i]
	}
	return out
}
