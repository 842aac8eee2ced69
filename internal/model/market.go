package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds a validated, chronologically ordered bar sequence.
type PriceSeries struct {
	Symbol    string
	Interval  string
	Location  *time.Location
	Bars      []OHLCV
	FetchedAt time.Time
}

func (s *PriceSeries) Len() int { return len(s.Bars) }

func (s *PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

func (s *PriceSeries) Opens() []float64  { return s.column(func(b OHLCV) float64 { return b.Open }) }
func (s *PriceSeries) Highs() []float64  { return s.column(func(b OHLCV) float64 { return b.High }) }
func (s *PriceSeries) Lows() []float64   { return s.column(func(b OHLCV) float64 { return b.Low }) }
func (s *PriceSeries) Closes() []float64 { return s.column(func(b OHLCV) float64 { return b.Close }) }

func (s *PriceSeries) column(pick func(OHLCV) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = pick(b)
	}
	return out
}

// Span returns the first and last bar times. Both are zero for an empty series.
func (s *PriceSeries) Span() (start, end time.Time) {
	if len(s.Bars) == 0 {
		return
	}
	return s.Bars[0].Time, s.Bars[len(s.Bars)-1].Time
}
