package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"PatternRank/internal/collector"
	"PatternRank/internal/model"
	"PatternRank/internal/patterns"
	"PatternRank/internal/ranking"
	"PatternRank/internal/recorder"
	"PatternRank/internal/snapshot"
)

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, text)
	return nil
}

func (f *fakeNotifier) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.msgs...)
}

// Two calendar days, four bars each.
func testBars() []model.OHLCV {
	closes := []float64{10, 12, 11, 13, 9, 15, 14, 8}
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.Add(time.Duration(i) * 6 * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return bars
}

func testRegistry(t *testing.T) *patterns.Registry {
	t.Helper()
	r := patterns.NewRegistry()
	fixed := func(vals ...float64) patterns.Detector {
		return func(open, high, low, close []float64) ([]float64, error) {
			return append([]float64(nil), vals...), nil
		}
	}
	if err := r.Register("AAA", fixed(100, -100, 0, 0, 100, -100, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("NONE", fixed(0, 0, 0, 0, 0, 0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	return r
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher, rec recorder.Recorder, store *snapshot.Store) (*Scheduler, *fakeNotifier) {
	t.Helper()
	news, err := model.ParseNewsDates([]string{"2025-04-01"})
	if err != nil {
		t.Fatal(err)
	}
	col := collector.NewCollector(fetcher, "EURUSD", "1h", "60d", "UTC")
	n := &fakeNotifier{}
	job := Job{TopN: 5, ExportPath: filepath.Join(t.TempDir(), "out", "ranking.csv"), InitialCapital: 10000}
	s := NewScheduler(context.Background(), col, testRegistry(t), ranking.Options{PositionSize: 100, News: news},
		job, n, rec, store)
	return s, n
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Bars: testBars()}, recorder.NewNoopRecorder(), nil)
	if err := s.RegisterAll("0 0 7 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for bad cron expression")
	}
}

func TestRunRank(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()
	store, _ := snapshot.NewStore("")
	s, n := newTestScheduler(t, &collector.MockFetcher{Bars: testBars()}, rec, store)

	run, err := s.RunRank()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 1 || run.Results[0].PatternName != "AAA" {
		t.Fatalf("expected AAA only, got %+v", run.Results)
	}
	if run.Results[0].WinningTrades != 2 {
		t.Errorf("expected 2 winning trades, got %d", run.Results[0].WinningTrades)
	}

	msgs := n.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "<b>AAA</b> win 100.0%") || !strings.Contains(msgs[0], "NONE: no signals generated") {
		t.Errorf("unexpected report:\n%s", msgs[0])
	}

	if _, err := os.Stat(s.Job.ExportPath); err != nil {
		t.Errorf("expected export file: %v", err)
	}
	if st := store.Get(); st == nil || st.RunID != run.ID || st.Symbol != "EURUSD" {
		t.Errorf("expected stored snapshot for run %s, got %+v", run.ID, st)
	}
	runs, err := rec.RecentRuns(5)
	if err != nil || len(runs) != 1 || runs[0].TopPattern != "AAA" {
		t.Errorf("expected recorded run, got %+v (%v)", runs, err)
	}
}

func TestRankTaskReportsFailure(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Err: errors.New("offline")}, recorder.NewNoopRecorder(), nil)
	if _, err := s.RunRank(); err == nil {
		t.Fatal("expected load error")
	}
	s.rankTask()
	msgs := n.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Ranking failed") || !strings.Contains(msgs[0], "offline") {
		t.Errorf("expected failure notice, got %v", msgs)
	}
}

func TestHandleCommandBeforeRank(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Bars: testBars()}, recorder.NewNoopRecorder(), nil)
	tests := map[string]string{
		"/top":         "No ranking yet",
		"/compare":     "No price data loaded yet",
		"/signals AAA": "No price data loaded yet",
		"/history":     "No runs recorded",
		"/patterns":    "2 patterns",
		"hello":        "/signals PATTERN",
		"":             "Commands",
	}
	for cmd, want := range tests {
		if got := s.HandleCommand(context.Background(), cmd); !strings.Contains(got, want) {
			t.Errorf("%q: expected %q in reply, got %q", cmd, want, got)
		}
	}
}

func TestHandleCommandTopFromSnapshot(t *testing.T) {
	store, _ := snapshot.NewStore("")
	store.Put(&snapshot.State{
		RunID: "old", Symbol: "GBPUSD", Interval: "1h",
		Results: []model.PatternResult{{PatternName: "HAMMER", WinRate: 60, WinningTrades: 3, LosingTrades: 2}},
	})
	s, _ := newTestScheduler(t, &collector.MockFetcher{Bars: testBars()}, recorder.NewNoopRecorder(), store)
	got := s.HandleCommand(context.Background(), "/top")
	if !strings.Contains(got, "GBPUSD 1h") || !strings.Contains(got, "<b>HAMMER</b> win 60.0%") {
		t.Errorf("expected stored ranking, got %q", got)
	}
}

func TestHandleCommandAfterRank(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Bars: testBars()}, recorder.NewNoopRecorder(), nil)
	if got := s.HandleCommand(context.Background(), "/rank"); got != "" {
		t.Errorf("expected /rank to reply through the notifier, got %q", got)
	}
	if len(n.messages()) != 1 {
		t.Fatalf("expected a ranking message, got %v", n.messages())
	}

	cmp := s.HandleCommand(context.Background(), "/compare")
	if !strings.Contains(cmp, "News filter comparison") || !strings.Contains(cmp, "<b>AAA</b>") {
		t.Errorf("unexpected comparison %q", cmp)
	}
	top := s.HandleCommand(context.Background(), "/top 1")
	if !strings.Contains(top, "<b>AAA</b>") || strings.Contains(top, "news filtered") {
		t.Errorf("expected the scheduled unfiltered ranking, got %q", top)
	}

	tests := map[string]string{
		"/signals AAA 2025-04-02":               "signals on 2025-04-02: 2",
		"/signals cdlaaa 2025-04-01 2025-04-02": "from 2025-04-01 to 2025-04-02: 4",
		"/signals ZZZ":                          "unknown pattern",
		"/signals AAA 04/02":                    "invalid date",
		"/signals":                              "Usage",
		"/top zero":                             "Usage",
	}
	for cmd, want := range tests {
		if got := s.HandleCommand(context.Background(), cmd); !strings.Contains(got, want) {
			t.Errorf("%q: expected %q in reply, got %q", cmd, want, got)
		}
	}
}
