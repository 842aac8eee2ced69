package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"PatternRank/internal/backtest"
	"PatternRank/internal/metrics"
	"PatternRank/internal/model"
	"PatternRank/internal/patterns"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ComparisonDepth is the number of ranked rows paired in a comparison report.
const ComparisonDepth = 20

// ErrNoSeries is returned when the tester has no price series to work on.
var ErrNoSeries = errors.New("no price series loaded")

// Options configures a Tester.
type Options struct {
	InitialCapital float64
	PositionSize   float64
	News           model.NewsDateSet
	Workers        int
}

// Run is one completed ranking pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	FilterNews bool
	Results    []model.PatternResult
	Outcomes   []Outcome
}

// Skipped returns the outcomes of patterns absent from the ranking.
func (r *Run) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeRanked {
			out = append(out, o)
		}
	}
	return out
}

// Tester runs every catalog pattern against one price series and ranks them.
type Tester struct {
	Series   *model.PriceSeries
	Registry *patterns.Registry
	Options  Options

	mu   sync.RWMutex
	last *Run
}

// NewTester creates a Tester. A zero position size defaults to 100.
func NewTester(series *model.PriceSeries, registry *patterns.Registry, opts Options) *Tester {
	if opts.PositionSize == 0 {
		opts.PositionSize = 100
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Tester{Series: series, Registry: registry, Options: opts}
}

// columns are the aligned arrays shared read-only by all pattern tests.
type columns struct {
	times                  []time.Time
	open, high, low, close []float64
}

// TestAllPatterns tests every registered pattern and returns the ranking.
// It becomes the most recent ranking for TopPatterns.
func (t *Tester) TestAllPatterns(filterNews bool) ([]model.PatternResult, error) {
	run, err := t.run(filterNews)
	if err != nil {
		return nil, err
	}
	return run.Results, nil
}

func (t *Tester) run(filterNews bool) (*Run, error) {
	if t.Series == nil {
		return nil, ErrNoSeries
	}
	run := &Run{ID: uuid.NewString(), StartedAt: time.Now(), FilterNews: filterNews}

	var news model.NewsDateSet
	if filterNews {
		news = t.Options.News
	}
	s := t.Series
	cols := columns{times: s.Times(), open: s.Opens(), high: s.Highs(), low: s.Lows(), close: s.Closes()}

	names := t.Registry.Names()
	outcomes := make([]Outcome, len(names))
	if s.Len() > 0 {
		var g errgroup.Group
		g.SetLimit(t.Options.Workers)
		for i, id := range names {
			detect, _ := t.Registry.Lookup(id)
			g.Go(func() error {
				outcomes[i] = t.evaluate(id, detect, news, cols)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		log.Warn().Str("symbol", s.Symbol).Msg("empty price series, nothing to rank")
		outcomes = nil
	}

	for _, o := range outcomes {
		metrics.PatternOutcomesTotal.WithLabelValues(string(o.Kind)).Inc()
		if o.Kind == OutcomeRanked {
			run.Results = append(run.Results, *o.Result)
			continue
		}
		logSkipped(o)
	}
	SortResults(run.Results)
	run.Outcomes = outcomes
	run.Duration = time.Since(run.StartedAt)

	metrics.RankingRunsTotal.WithLabelValues(strconv.FormatBool(filterNews)).Inc()
	metrics.RankingDuration.Observe(run.Duration.Seconds())
	log.Info().
		Str("run_id", run.ID).
		Bool("news_filter", filterNews).
		Int("patterns", len(names)).
		Int("ranked", len(run.Results)).
		Dur("took", run.Duration).
		Msg("ranking complete")

	t.mu.Lock()
	t.last = run
	t.mu.Unlock()
	return run, nil
}

func logSkipped(o Outcome) {
	var ev *zerolog.Event
	switch o.Kind {
	case OutcomeFailed:
		ev = log.Warn()
	case OutcomeNoTrades:
		ev = log.Info()
	default:
		ev = log.Debug()
	}
	ev.Str("pattern", patterns.DisplayName(o.Pattern)).Str("reason", o.Reason()).Msg("pattern skipped")
}

// evaluate tests one pattern. Detector errors and panics become FAILED outcomes.
func (t *Tester) evaluate(id string, detect patterns.Detector, news model.NewsDateSet, cols columns) (out Outcome) {
	out = Outcome{Pattern: id}
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Pattern: id, Kind: OutcomeFailed,
				Err: fmt.Errorf("%w: %s: panic: %v", backtest.ErrDetectorFailure, id, r)}
		}
	}()

	raw, err := detect(cols.open, cols.high, cols.low, cols.close)
	if err != nil {
		out.Kind = OutcomeFailed
		out.Err = fmt.Errorf("%w: %s: %w", backtest.ErrDetectorFailure, id, err)
		return out
	}
	intents, err := backtest.Normalize(raw, cols.times, news)
	if err != nil {
		out.Kind = OutcomeFailed
		out.Err = fmt.Errorf("%s: %w", id, err)
		return out
	}
	out.Signals = backtest.CountSignals(intents)
	if out.Signals == 0 {
		out.Kind = OutcomeNoSignals
		return out
	}
	trades, err := backtest.Simulate(intents, cols.times, cols.close, t.Options.PositionSize)
	if err != nil {
		out.Kind = OutcomeFailed
		out.Err = fmt.Errorf("%s: %w", id, err)
		return out
	}
	res, ok := backtest.Aggregate(patterns.DisplayName(id), out.Signals, trades)
	if !ok {
		out.Kind = OutcomeNoTrades
		return out
	}
	out.Kind = OutcomeRanked
	out.Result = res
	return out
}

// SortResults orders by win rate, then total PnL, both descending.
// Exact ties fall back to the pattern name so the order does not depend on the catalog.
func SortResults(results []model.PatternResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.TotalPnL != b.TotalPnL {
			return a.TotalPnL > b.TotalPnL
		}
		return a.PatternName < b.PatternName
	})
}

// LastRun returns the most recent ranking pass, or nil before the first one.
func (t *Tester) LastRun() *Run {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// TopPatterns returns up to n entries of the most recent ranking.
// A non-positive n returns the whole ranking.
func (t *Tester) TopPatterns(n int) []model.PatternResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return nil
	}
	res := t.last.Results
	if n <= 0 || n > len(res) {
		n = len(res)
	}
	out := make([]model.PatternResult, n)
	copy(out, res[:n])
	return out
}

// ComparisonRow pairs the unfiltered and news-filtered results at one rank position.
type ComparisonRow struct {
	Rank                int
	Pattern             string
	FilteredPattern     string
	WinRate             float64
	FilteredWinRate     float64
	TotalPnL            float64
	FilteredTotalPnL    float64
	Signals             int
	FilteredSignals     int
	SharpeRatio         float64
	FilteredSharpeRatio float64
}

// ComparisonReport ranks without and then with the news filter and pairs the two
// rankings row by row. Rows are paired by rank position, not by pattern, so row i
// compares whichever pattern holds rank i in each run. The filtered ranking is left
// as the most recent one.
func (t *Tester) ComparisonReport() ([]ComparisonRow, error) {
	plain, err := t.TestAllPatterns(false)
	if err != nil {
		return nil, fmt.Errorf("unfiltered ranking: %w", err)
	}
	filtered, err := t.TestAllPatterns(true)
	if err != nil {
		return nil, fmt.Errorf("filtered ranking: %w", err)
	}

	n := min(len(plain), len(filtered), ComparisonDepth)
	rows := make([]ComparisonRow, n)
	for i := 0; i < n; i++ {
		a, b := plain[i], filtered[i]
		rows[i] = ComparisonRow{
			Rank:                i + 1,
			Pattern:             a.PatternName,
			FilteredPattern:     b.PatternName,
			WinRate:             a.WinRate,
			FilteredWinRate:     b.WinRate,
			TotalPnL:            a.TotalPnL,
			FilteredTotalPnL:    b.TotalPnL,
			Signals:             a.TotalSignals,
			FilteredSignals:     b.TotalSignals,
			SharpeRatio:         a.SharpeRatio,
			FilteredSharpeRatio: b.SharpeRatio,
		}
	}
	return rows, nil
}
