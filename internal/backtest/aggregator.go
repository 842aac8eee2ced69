package backtest

import (
	"math"

	"PatternRank/internal/model"
)

// TradingDaysPerYear annualises the per-trade Sharpe ratio.
const TradingDaysPerYear = 252

// Aggregate summarises the trades of one pattern.
// It returns false when the pattern produced no signals or no completed trade.
func Aggregate(name string, totalSignals int, trades []model.Trade) (*model.PatternResult, bool) {
	if totalSignals == 0 || len(trades) == 0 {
		return nil, false
	}

	r := &model.PatternResult{
		PatternName:  name,
		TotalSignals: totalSignals,
		MaxProfit:    math.Inf(-1),
		MaxLoss:      math.Inf(1),
	}
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnL
		r.TotalPnL += t.PnL
		if t.PnL > 0 {
			r.WinningTrades++
		} else {
			r.LosingTrades++
		}
		if t.PnL > r.MaxProfit {
			r.MaxProfit = t.PnL
		}
		if t.PnL < r.MaxLoss {
			r.MaxLoss = t.PnL
		}
	}

	n := float64(len(trades))
	r.WinRate = float64(r.WinningTrades) / n * 100
	r.AvgPnL = r.TotalPnL / n
	r.SharpeRatio = SharpeRatio(pnls)
	return r, true
}

// SharpeRatio returns mean/stdev scaled by sqrt(252), using the population deviation.
// It is 0 for fewer than two values or a zero deviation.
func SharpeRatio(pnls []float64) float64 {
	if len(pnls) < 2 {
		return 0
	}
	mean, std := meanStd(pnls)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(TradingDaysPerYear)
}

func meanStd(xs []float64) (mean, std float64) {
	same := true
	for _, x := range xs {
		mean += x
		same = same && x == xs[0]
	}
	mean /= float64(len(xs))
	if same {
		// the rounded mean may differ from xs[0] in the last bit
		return mean, 0
	}

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
