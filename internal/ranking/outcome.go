package ranking

import (
	"fmt"

	"PatternRank/internal/model"
)

// OutcomeKind classifies how a single pattern test ended.
type OutcomeKind string

const (
	OutcomeRanked    OutcomeKind = "RANKED"
	OutcomeNoSignals OutcomeKind = "NO_SIGNALS"
	OutcomeNoTrades  OutcomeKind = "NO_TRADES"
	OutcomeFailed    OutcomeKind = "FAILED"
)

// Outcome is the typed result of testing one pattern.
// Only RANKED outcomes carry a Result; FAILED outcomes carry Err.
type Outcome struct {
	Pattern string
	Kind    OutcomeKind
	Signals int
	Result  *model.PatternResult
	Err     error
}

// Reason describes why a pattern is missing from the ranking.
func (o Outcome) Reason() string {
	switch o.Kind {
	case OutcomeNoSignals:
		return "no signals generated"
	case OutcomeNoTrades:
		return fmt.Sprintf("%d signals but no completed trades", o.Signals)
	case OutcomeFailed:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "failed"
	}
	return ""
}
