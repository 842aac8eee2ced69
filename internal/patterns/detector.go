package patterns

import (
	"errors"
	"fmt"

	"PatternRank/internal/calculator"
)

// Tunable thresholds. Averages are taken over the bars preceding the candle.
const (
	averagePeriod = 10
	trendPeriod   = 10

	dojiBodyPct       = 0.10 // body <= 10% of the average range
	veryShortShadow   = 0.10 // shadow <= 10% of the average range
	shortBodyFactor   = 0.50 // body < half the average body
	longShadowFactor  = 2.0  // shadow >= 2x body
	starPenetration   = 0.30 // third star candle recovers 30% of the first body
	piercingMinimum   = 0.50 // second candle closes beyond the first body's midpoint
	longLineShadowPct = 0.25 // long line shadows below a quarter of the body
)

const (
	bullish = 100.0
	bearish = -100.0
)

var errLength = errors.New("ohlc arrays must have equal length")

// bars holds the inputs plus the rolling references shared by all detectors.
type bars struct {
	open, high, low, close []float64

	bodyAvg  []float64
	rangeAvg []float64
	trend    []float64
}

func newBars(open, high, low, close []float64) (*bars, error) {
	n := len(close)
	if len(open) != n || len(high) != n || len(low) != n {
		return nil, fmt.Errorf("%w: open=%d high=%d low=%d close=%d", errLength, len(open), len(high), len(low), n)
	}
	b := &bars{open: open, high: high, low: low, close: close}
	var err error
	if b.bodyAvg, err = calculator.TrailingAverage(calculator.Bodies(open, high, low, close), averagePeriod); err != nil {
		return nil, err
	}
	if b.rangeAvg, err = calculator.TrailingAverage(calculator.Ranges(high, low), averagePeriod); err != nil {
		return nil, err
	}
	if b.trend, err = calculator.TrailingAverage(close, trendPeriod); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *bars) at(i int) calculator.Candle {
	return calculator.CandleAt(b.open, b.high, b.low, b.close, i)
}

func (b *bars) isDoji(i int) bool {
	return b.at(i).Body() <= dojiBodyPct*b.rangeAvg[i]
}

func (b *bars) isLongBody(i int) bool {
	return b.at(i).Body() > b.bodyAvg[i]
}

func (b *bars) isShortBody(i int) bool {
	return b.at(i).Body() < shortBodyFactor*b.bodyAvg[i]
}

func (b *bars) isVeryShortShadow(shadow float64, i int) bool {
	return shadow <= veryShortShadow*b.rangeAvg[i]
}

// belowTrend reports a close under the trailing close average, i.e. after a decline.
func (b *bars) belowTrend(i int) bool { return b.close[i] < b.trend[i] }
func (b *bars) aboveTrend(i int) bool { return b.close[i] > b.trend[i] }

// scan builds a Detector for a pattern spanning `span` candles that ends at index i.
// Indexes without enough history for the rolling references stay zero.
func scan(span int, match func(b *bars, i int) float64) Detector {
	return func(open, high, low, close []float64) ([]float64, error) {
		b, err := newBars(open, high, low, close)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(close))
		for i := averagePeriod + span - 1; i < len(close); i++ {
			out[i] = match(b, i)
		}
		return out, nil
	}
}

func catalog() map[string]Detector {
	return map[string]Detector{
		// one candle
		"CDLDOJI":           scan(1, doji),
		"CDLDRAGONFLYDOJI":  scan(1, dragonflyDoji),
		"CDLGRAVESTONEDOJI": scan(1, gravestoneDoji),
		"CDLHAMMER":         scan(1, hammer),
		"CDLHANGINGMAN":     scan(1, hangingMan),
		"CDLINVERTEDHAMMER": scan(1, invertedHammer),
		"CDLSHOOTINGSTAR":   scan(1, shootingStar),
		"CDLMARUBOZU":       scan(1, marubozu),
		"CDLSPINNINGTOP":    scan(1, spinningTop),
		"CDLLONGLINE":       scan(1, longLine),
		// two candles
		"CDLENGULFING":      scan(2, engulfing),
		"CDLHARAMI":         scan(2, harami),
		"CDLPIERCING":       scan(2, piercing),
		"CDLDARKCLOUDCOVER": scan(2, darkCloudCover),
		"CDLKICKING":        scan(2, kicking),
		// three candles
		"CDLMORNINGSTAR":     scan(3, morningStar),
		"CDLEVENINGSTAR":     scan(3, eveningStar),
		"CDL3WHITESOLDIERS":  scan(3, threeWhiteSoldiers),
		"CDL3BLACKCROWS":     scan(3, threeBlackCrows),
		"CDL3INSIDE":         scan(3, threeInside),
	}
}
