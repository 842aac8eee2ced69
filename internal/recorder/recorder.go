package recorder

import (
	"time"

	"PatternRank/internal/ranking"
)

// RunSnapshot holds one ranking pass together with the market context it ran on.
type RunSnapshot struct {
	Run            *ranking.Run
	Symbol         string
	Interval       string
	Bars           int
	InitialCapital float64
	PositionSize   float64
	NewsDates      []string
}

// RunSummary is a stored run as read back for history views.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	Symbol     string
	Interval   string
	FilterNews bool
	Ranked     int
	Skipped    int
	TopPattern string
	TopWinRate float64
}

// Recorder persists ranking history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
