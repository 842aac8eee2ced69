package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"PatternRank/internal/model"
	"PatternRank/internal/ranking"
)

// SkippedPattern is a pattern left out of a stored ranking.
type SkippedPattern struct {
	Pattern string `json:"pattern"`
	Outcome string `json:"outcome"`
	Signals int    `json:"signals"`
	Reason  string `json:"reason"`
}

// State is the most recent ranking, kept on disk so it survives restarts.
type State struct {
	RunID      string                `json:"run_id"`
	Symbol     string                `json:"symbol"`
	Interval   string                `json:"interval"`
	FilterNews bool                  `json:"filter_news"`
	StartedAt  time.Time             `json:"started_at"`
	Results    []model.PatternResult `json:"results"`
	Skipped    []SkippedPattern      `json:"skipped,omitempty"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// FromRun captures a ranking run.
func FromRun(symbol, interval string, run *ranking.Run) *State {
	st := &State{
		RunID:      run.ID,
		Symbol:     symbol,
		Interval:   interval,
		FilterNews: run.FilterNews,
		StartedAt:  run.StartedAt,
		Results:    append([]model.PatternResult(nil), run.Results...),
	}
	for _, o := range run.Skipped() {
		st.Skipped = append(st.Skipped, SkippedPattern{
			Pattern: o.Pattern, Outcome: string(o.Kind), Signals: o.Signals, Reason: o.Reason(),
		})
	}
	return st
}

// Run rebuilds a ranking run from the stored state. Ranked outcomes are not
// stored, so only the skipped ones are restored.
func (st *State) Run() *ranking.Run {
	run := &ranking.Run{
		ID:         st.RunID,
		StartedAt:  st.StartedAt,
		FilterNews: st.FilterNews,
		Results:    append([]model.PatternResult(nil), st.Results...),
	}
	for _, sp := range st.Skipped {
		o := ranking.Outcome{Pattern: sp.Pattern, Kind: ranking.OutcomeKind(sp.Outcome), Signals: sp.Signals}
		if o.Kind == ranking.OutcomeFailed {
			o.Err = errors.New(sp.Reason)
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	return run
}

// LoadState reads the state from a JSON file. Returns nil if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
