package ranking

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"PatternRank/internal/backtest"
	"PatternRank/internal/model"
	"PatternRank/internal/patterns"
)

// Two calendar days, four bars each.
var closes = []float64{10, 12, 11, 13, 9, 15, 14, 8}

func testSeries() *model.PriceSeries {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: "EURUSD=X", Interval: "6h", Location: time.UTC}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.OHLCV{
			Time: start.Add(time.Duration(i) * 6 * time.Hour),
			Open: c, High: c + 1, Low: c - 1, Close: c,
		})
	}
	return s
}

func fixed(vals ...float64) patterns.Detector {
	return func(open, high, low, close []float64) ([]float64, error) {
		out := make([]float64, len(vals))
		copy(out, vals)
		return out, nil
	}
}

func testRegistry(t *testing.T) *patterns.Registry {
	t.Helper()
	r := patterns.NewRegistry()
	detectors := map[string]patterns.Detector{
		"AAA":      fixed(100, -100, 0, 0, 100, -100, 0, 0),
		"BBB":      fixed(0, 0, 100, -100, 0, 0, 100, -100),
		"CCC":      fixed(100, 0, 0, 0, 0, 0, 0, -100),
		"EEE":      fixed(0, 0, 100, -100, 0, 0, 0, 0),
		"OPENONLY": fixed(100, 0, 0, 0, 0, 0, 0, 0),
		"NONE":     fixed(0, 0, 0, 0, 0, 0, 0, 0),
		"SHORT":    fixed(100, -100),
		"ERR": func(open, high, low, close []float64) ([]float64, error) {
			return nil, errors.New("boom")
		},
		"PANIC": func(open, high, low, close []float64) ([]float64, error) {
			var out []float64
			out[3] = 1
			return out, nil
		},
	}
	for name, d := range detectors {
		if err := r.Register(name, d); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func resultNames(res []model.PatternResult) []string {
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.PatternName
	}
	return out
}

func TestTestAllPatterns_RanksAndSkips(t *testing.T) {
	tester := NewTester(testSeries(), testRegistry(t), Options{PositionSize: 100})
	res, err := tester.TestAllPatterns(false)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"AAA", "EEE", "BBB", "CCC"}
	if got := resultNames(res); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected ranking %v, got %v", want, got)
	}

	a := res[0]
	if a.TotalSignals != 4 || a.WinningTrades != 2 || a.LosingTrades != 0 || a.WinRate != 100 {
		t.Errorf("AAA: unexpected stats %+v", a)
	}
	wantPnL := 100.0/10*2 + 100.0/9*6
	if math.Abs(a.TotalPnL-wantPnL) > 1e-9 {
		t.Errorf("AAA: expected total pnl %.4f, got %.4f", wantPnL, a.TotalPnL)
	}
	if b := res[2]; b.WinRate != 50 || b.TotalTrades() != 2 {
		t.Errorf("BBB: expected 50%% over 2 trades, got %.1f%% over %d", b.WinRate, b.TotalTrades())
	}

	kinds := map[string]Outcome{}
	for _, o := range tester.LastRun().Outcomes {
		kinds[patterns.DisplayName(o.Pattern)] = o
	}
	if k := kinds["OPENONLY"]; k.Kind != OutcomeNoTrades || k.Signals != 1 {
		t.Errorf("OPENONLY: expected NO_TRADES with 1 signal, got %s/%d", k.Kind, k.Signals)
	}
	if k := kinds["NONE"]; k.Kind != OutcomeNoSignals {
		t.Errorf("NONE: expected NO_SIGNALS, got %s", k.Kind)
	}
	for _, name := range []string{"ERR", "PANIC"} {
		k := kinds[name]
		if k.Kind != OutcomeFailed || !errors.Is(k.Err, backtest.ErrDetectorFailure) {
			t.Errorf("%s: expected detector failure, got %s (%v)", name, k.Kind, k.Err)
		}
	}
	if k := kinds["SHORT"]; k.Kind != OutcomeFailed || !errors.Is(k.Err, backtest.ErrShapeMismatch) {
		t.Errorf("SHORT: expected shape mismatch, got %s (%v)", k.Kind, k.Err)
	}
	if n := len(tester.LastRun().Skipped()); n != 5 {
		t.Errorf("expected 5 skipped patterns, got %d", n)
	}
}

func TestTestAllPatterns_WorkersMatchSequential(t *testing.T) {
	seq, err := NewTester(testSeries(), testRegistry(t), Options{}).TestAllPatterns(false)
	if err != nil {
		t.Fatal(err)
	}
	par, err := NewTester(testSeries(), testRegistry(t), Options{Workers: 4}).TestAllPatterns(false)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Errorf("parallel ranking differs:\n%v\n%v", seq, par)
	}
}

func TestTestAllPatterns_EmptyNewsIsIdempotent(t *testing.T) {
	for _, news := range []model.NewsDateSet{nil, {}} {
		tester := NewTester(testSeries(), testRegistry(t), Options{News: news})
		plain, _ := tester.TestAllPatterns(false)
		filtered, _ := tester.TestAllPatterns(true)
		if !reflect.DeepEqual(plain, filtered) {
			t.Errorf("empty news set changed the ranking:\n%v\n%v", plain, filtered)
		}
	}
}

func TestTestAllPatterns_NewsFilter(t *testing.T) {
	news, _ := model.ParseNewsDates([]string{"2025-04-01"})
	tester := NewTester(testSeries(), testRegistry(t), Options{News: news})
	res, err := tester.TestAllPatterns(true)
	if err != nil {
		t.Fatal(err)
	}
	if got := resultNames(res); !reflect.DeepEqual(got, []string{"AAA", "BBB"}) {
		t.Fatalf("expected [AAA BBB], got %v", got)
	}
	if res[0].TotalSignals != 2 {
		t.Errorf("AAA: expected 2 signals after filtering, got %d", res[0].TotalSignals)
	}
}

func TestTestAllPatterns_EmptyAndMissingSeries(t *testing.T) {
	empty := &model.PriceSeries{Symbol: "X"}
	res, err := NewTester(empty, testRegistry(t), Options{}).TestAllPatterns(false)
	if err != nil || len(res) != 0 {
		t.Errorf("empty series: expected empty ranking, got %v (%v)", res, err)
	}
	if _, err := NewTester(nil, testRegistry(t), Options{}).TestAllPatterns(false); !errors.Is(err, ErrNoSeries) {
		t.Errorf("expected ErrNoSeries, got %v", err)
	}
}

func TestTopPatterns(t *testing.T) {
	tester := NewTester(testSeries(), testRegistry(t), Options{})
	if top := tester.TopPatterns(3); top != nil {
		t.Errorf("expected nil before the first run, got %v", top)
	}
	if _, err := tester.TestAllPatterns(false); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		n    int
		want int
	}{{1, 1}, {2, 2}, {0, 4}, {-1, 4}, {10, 4}}
	for _, tt := range tests {
		if got := len(tester.TopPatterns(tt.n)); got != tt.want {
			t.Errorf("TopPatterns(%d): expected %d, got %d", tt.n, tt.want, got)
		}
	}
	top := tester.TopPatterns(1)
	top[0].PatternName = "mutated"
	if tester.TopPatterns(1)[0].PatternName != "AAA" {
		t.Error("TopPatterns must return a copy")
	}
}

func TestComparisonReport_PairsByPosition(t *testing.T) {
	news, _ := model.ParseNewsDates([]string{"2025-04-01"})
	tester := NewTester(testSeries(), testRegistry(t), Options{News: news})
	rows, err := tester.ComparisonReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Pattern != "AAA" || rows[0].FilteredPattern != "AAA" {
		t.Errorf("row 1: expected AAA/AAA, got %s/%s", rows[0].Pattern, rows[0].FilteredPattern)
	}
	// rank 2 is EEE unfiltered but BBB once the first day is excluded
	if rows[1].Pattern != "EEE" || rows[1].FilteredPattern != "BBB" {
		t.Errorf("row 2: expected EEE/BBB, got %s/%s", rows[1].Pattern, rows[1].FilteredPattern)
	}
	if rows[1].FilteredWinRate != 0 || rows[1].WinRate != 100 {
		t.Errorf("row 2: unexpected win rates %.1f/%.1f", rows[1].WinRate, rows[1].FilteredWinRate)
	}
	if !tester.LastRun().FilterNews {
		t.Error("the filtered ranking should be the most recent one")
	}
}

func TestSortResults_IndependentOfInputOrder(t *testing.T) {
	base := []model.PatternResult{
		{PatternName: "A", WinRate: 60, TotalPnL: 10},
		{PatternName: "B", WinRate: 60, TotalPnL: 30},
		{PatternName: "C", WinRate: 75, TotalPnL: -5},
		{PatternName: "D", WinRate: 60, TotalPnL: 10},
		{PatternName: "E", WinRate: 0, TotalPnL: -50},
	}
	want := []string{"C", "B", "A", "D", "E"}

	r := rand.New(rand.NewSource(5))
	for round := 0; round < 20; round++ {
		shuffled := append([]model.PatternResult(nil), base...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		SortResults(shuffled)
		if got := resultNames(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("round %d: expected %v, got %v", round, want, got)
		}
	}
}

func TestOutcomeReason(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{Kind: OutcomeNoSignals}, "no signals generated"},
		{Outcome{Kind: OutcomeNoTrades, Signals: 3}, "3 signals but no completed trades"},
		{Outcome{Kind: OutcomeFailed, Err: errors.New("bad")}, "bad"},
		{Outcome{Kind: OutcomeRanked}, ""},
	}
	for _, tt := range tests {
		if got := tt.o.Reason(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestTestAllPatterns_BuiltinCatalog(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	s := &model.PriceSeries{Symbol: "SYN", Location: time.UTC}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < 2000; i++ {
		o := price
		price += r.NormFloat64()
		c := price
		s.Bars = append(s.Bars, model.OHLCV{
			Time: start.Add(time.Duration(i) * 15 * time.Minute),
			Open: o, Close: c,
			High: max(o, c) + r.Float64()*0.8,
			Low:  min(o, c) - r.Float64()*0.8,
		})
	}
	tester := NewTester(s, patterns.Default(), Options{PositionSize: 100})
	res, err := tester.TestAllPatterns(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(tester.LastRun().Outcomes) != patterns.Default().Len() {
		t.Fatalf("expected one outcome per pattern, got %d", len(tester.LastRun().Outcomes))
	}
	for i, r := range res {
		if r.WinRate < 0 || r.WinRate > 100 {
			t.Errorf("%s: win rate out of range: %.2f", r.PatternName, r.WinRate)
		}
		if i > 0 && res[i-1].WinRate < r.WinRate {
			t.Errorf("ranking not sorted at %d", i)
		}
	}
}
