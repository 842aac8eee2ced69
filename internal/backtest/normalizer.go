package backtest

import (
	"fmt"
	"time"

	"PatternRank/internal/model"
)

// Normalize maps raw detector output to buy/sell/none intents.
// When news is non-empty, bars falling on a news date are forced to none.
func Normalize(raw []float64, times []time.Time, news model.NewsDateSet) ([]model.Intent, error) {
	if len(raw) != len(times) {
		return nil, fmt.Errorf("%w: %d signals for %d bars", ErrShapeMismatch, len(raw), len(times))
	}
	intents := make([]model.Intent, len(raw))
	for i, v := range raw {
		switch {
		case v > 0:
			intents[i] = model.IntentBuy
		case v < 0:
			intents[i] = model.IntentSell
		}
		// NaN compares false both ways and stays none.
	}
	if len(news) > 0 {
		for i, t := range times {
			if news.Contains(t) {
				intents[i] = model.IntentNone
			}
		}
	}
	return intents, nil
}

// CountSignals counts the non-zero intents, opens and closes alike.
func CountSignals(intents []model.Intent) int {
	n := 0
	for _, v := range intents {
		if v != model.IntentNone {
			n++
		}
	}
	return n
}
