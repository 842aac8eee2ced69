package model

import "time"

// Intent is the desired position direction derived from a pattern signal.
type Intent int8

const (
	IntentSell Intent = -1
	IntentNone Intent = 0
	IntentBuy  Intent = 1
)

// Trade is a completed round trip: an entry followed by a later exit.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
}

// PatternResult summarises the simulated performance of one pattern.
type PatternResult struct {
	PatternName   string  `json:"pattern_name"`
	TotalSignals  int     `json:"total_signals"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // percent, 0 ~ 100
	TotalPnL      float64 `json:"total_pnl"`
	AvgPnL        float64 `json:"avg_pnl"`
	MaxProfit     float64 `json:"max_profit"`
	MaxLoss       float64 `json:"max_loss"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
}

// TotalTrades is the number of completed trades behind the result.
func (r PatternResult) TotalTrades() int {
	return r.WinningTrades + r.LosingTrades
}
