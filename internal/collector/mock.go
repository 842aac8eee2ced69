package collector

import (
	"time"

	"PatternRank/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error

	// Calls records the intervals requested, in order.
	Calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ string, interval, _ string) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, interval)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, 200, time.Hour), nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	start := time.Now().UTC().Truncate(step).Add(-time.Duration(count) * step)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i%7-3)*0.001)
		open := p * 0.999
		if i%2 == 1 {
			open = p * 1.001
		}
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * step),
			Open:   open,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
