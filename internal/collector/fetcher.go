package collector

import "PatternRank/internal/model"

// Fetcher defines the interface for fetching historical bars.
// interval is a normalised interval (see NormalizeTimeframe); period is a
// lookback such as "60d", "6mo" or "max".
type Fetcher interface {
	FetchBars(symbol, interval, period string) ([]model.OHLCV, error)
	Name() string
}
