package backtest

import (
	"fmt"
	"time"

	"PatternRank/internal/model"
)

// Simulate walks the intents with a single long-only position.
//
// A buy while flat opens a position of positionSize notional at the bar close; a sell while
// long closes it and emits a Trade. Sells while flat and buys while long are ignored. A position
// still open at the end of the sequence is dropped.
func Simulate(intents []model.Intent, times []time.Time, closes []float64, positionSize float64) ([]model.Trade, error) {
	if len(intents) != len(times) || len(intents) != len(closes) {
		return nil, fmt.Errorf("%w: %d intents, %d times, %d closes",
			ErrShapeMismatch, len(intents), len(times), len(closes))
	}

	var trades []model.Trade
	var units, entryPrice float64
	entryIdx := -1

	for i, intent := range intents {
		switch {
		case intent == model.IntentBuy && entryIdx < 0:
			if closes[i] <= 0 {
				continue // cannot size a position at a non-positive price
			}
			entryIdx = i
			entryPrice = closes[i]
			units = positionSize / closes[i]

		case intent == model.IntentSell && entryIdx >= 0:
			trades = append(trades, model.Trade{
				EntryTime:  times[entryIdx],
				ExitTime:   times[i],
				EntryPrice: entryPrice,
				ExitPrice:  closes[i],
				PnL:        units * (closes[i] - entryPrice),
			})
			entryIdx = -1
			units, entryPrice = 0, 0
		}
	}
	return trades, nil
}
