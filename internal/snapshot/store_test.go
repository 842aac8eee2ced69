package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PatternRank/internal/model"
	"PatternRank/internal/ranking"
)

func sampleRun() *ranking.Run {
	return &ranking.Run{
		ID:        "run-1",
		StartedAt: time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC),
		Results: []model.PatternResult{
			{PatternName: "ENGULFING", WinRate: 75, TotalPnL: 12},
			{PatternName: "DOJI", WinRate: 50, TotalPnL: 1},
		},
		Outcomes: []ranking.Outcome{
			{Pattern: "CDLENGULFING", Kind: ranking.OutcomeRanked},
			{Pattern: "CDLDOJI", Kind: ranking.OutcomeRanked},
			{Pattern: "CDLHAMMER", Kind: ranking.OutcomeFailed, Err: errors.New("boom")},
		},
	}
}

func TestFromRun(t *testing.T) {
	st := FromRun("EURUSD", "15m", sampleRun())
	if st.RunID != "run-1" || st.Symbol != "EURUSD" || len(st.Results) != 2 {
		t.Errorf("unexpected state %+v", st)
	}
	if len(st.Skipped) != 1 || st.Skipped[0].Outcome != "FAILED" || st.Skipped[0].Reason != "boom" {
		t.Errorf("unexpected skipped %+v", st.Skipped)
	}
}

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Get() != nil || s.Top(3) != nil {
		t.Error("expected an empty store")
	}
	if err := s.Put(FromRun("EURUSD", "15m", sampleRun())); err != nil {
		t.Fatalf("put: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st := reopened.Get()
	if st == nil || st.RunID != "run-1" || st.Results[0].PatternName != "ENGULFING" {
		t.Fatalf("expected restored state, got %+v", st)
	}
	if !st.StartedAt.Equal(time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC)) || st.UpdatedAt.IsZero() {
		t.Errorf("unexpected timestamps %v %v", st.StartedAt, st.UpdatedAt)
	}
	if top := reopened.Top(1); len(top) != 1 || top[0].PatternName != "ENGULFING" {
		t.Errorf("unexpected top %v", top)
	}
	if all := reopened.Top(0); len(all) != 2 {
		t.Errorf("expected 2 results, got %d", len(all))
	}
}

func TestStateRun(t *testing.T) {
	orig := sampleRun()
	orig.Outcomes = append(orig.Outcomes, ranking.Outcome{Pattern: "CDLKICKING", Kind: ranking.OutcomeNoTrades, Signals: 4})
	run := FromRun("EURUSD", "15m", orig).Run()
	if run.ID != "run-1" || len(run.Results) != 2 {
		t.Errorf("unexpected run %+v", run)
	}
	skipped := run.Skipped()
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped outcomes, got %d", len(skipped))
	}
	for i, want := range []string{"boom", "4 signals but no completed trades"} {
		if got := skipped[i].Reason(); got != want {
			t.Errorf("expected reason %q, got %q", want, got)
		}
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s, _ := NewStore("")
	s.Put(FromRun("EURUSD", "15m", sampleRun()))
	got := s.Get()
	got.Results[0].PatternName = "CHANGED"
	if s.Get().Results[0].PatternName != "ENGULFING" {
		t.Error("expected Get to return a copy")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Error("expected error for corrupt state file")
	}
}
