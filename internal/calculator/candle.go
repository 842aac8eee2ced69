package calculator

import "math"

// Candle is the geometry of one bar.
type Candle struct {
	Open, High, Low, Close float64
}

// CandleAt builds the candle at index i of aligned OHLC arrays.
func CandleAt(open, high, low, close []float64, i int) Candle {
	return Candle{Open: open[i], High: high[i], Low: low[i], Close: close[i]}
}

func (c Candle) Body() float64        { return math.Abs(c.Close - c.Open) }
func (c Candle) Range() float64       { return c.High - c.Low }
func (c Candle) UpperShadow() float64 { return c.High - math.Max(c.Open, c.Close) }
func (c Candle) LowerShadow() float64 { return math.Min(c.Open, c.Close) - c.Low }
func (c Candle) BodyTop() float64     { return math.Max(c.Open, c.Close) }
func (c Candle) BodyBottom() float64  { return math.Min(c.Open, c.Close) }
func (c Candle) Midpoint() float64    { return (c.Open + c.Close) / 2 }
func (c Candle) IsBull() bool         { return c.Close > c.Open }
func (c Candle) IsBear() bool         { return c.Close < c.Open }

// BodyPct is the body as a fraction of the full range (0 for a zero-range bar).
func (c Candle) BodyPct() float64 {
	r := c.Range()
	if r <= 0 {
		return 0
	}
	return c.Body() / r
}
