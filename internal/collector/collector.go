package collector

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"PatternRank/internal/metrics"
	"PatternRank/internal/model"
)

// DefaultTimezone is the zone bar timestamps are converted to when none is configured.
const DefaultTimezone = "Europe/Moscow"

// Collector orchestrates fetching and cleaning one price series.
type Collector struct {
	Fetcher   Fetcher
	Symbol    string
	Timeframe string
	Period    string
	Timezone  string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol, timeframe, period, timezone string) *Collector {
	return &Collector{
		Fetcher:   fetcher,
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Timeframe: timeframe,
		Period:    period,
		Timezone:  timezone,
	}
}

// Load fetches the series, converts it to the configured zone and builds
// 4h bars from hourly data when needed. An empty download yields an empty
// series, not an error.
func (c *Collector) Load() (*model.PriceSeries, error) {
	interval, err := NormalizeTimeframe(c.Timeframe)
	if err != nil {
		return nil, err
	}
	tz := c.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	bars, err := c.Fetcher.FetchBars(c.Symbol, DownloadInterval(interval), c.Period)
	if err != nil {
		return nil, fmt.Errorf("%s fetch %s %s: %w", c.Fetcher.Name(), c.Symbol, interval, err)
	}

	bars = cleanBars(bars, loc)
	if interval == "4h" {
		bars = Resample(bars, HourBucket(4))
	}

	series := &model.PriceSeries{
		Symbol:    c.Symbol,
		Interval:  interval,
		Location:  loc,
		Bars:      bars,
		FetchedAt: time.Now(),
	}
	metrics.SeriesBars.Set(float64(len(bars)))

	if len(bars) == 0 {
		log.Warn().Str("symbol", c.Symbol).Str("interval", interval).Msg("no bars returned")
	} else {
		first, last := series.Span()
		log.Info().
			Str("source", c.Fetcher.Name()).
			Str("symbol", c.Symbol).
			Str("interval", interval).
			Int("bars", len(bars)).
			Time("from", first).
			Time("to", last).
			Msg("price series loaded")
	}
	return series, nil
}

// cleanBars moves bars into loc, sorts them, keeps the last bar per timestamp
// and drops bars with non-finite prices.
func cleanBars(bars []model.OHLCV, loc *time.Location) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	dropped := 0
	for _, b := range bars {
		if !finite(b.Open) || !finite(b.High) || !finite(b.Low) || !finite(b.Close) {
			dropped++
			continue
		}
		b.Time = b.Time.In(loc)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("bars with invalid prices dropped")
	}
	return dedup
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
