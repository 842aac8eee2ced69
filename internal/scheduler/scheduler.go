package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"PatternRank/internal/collector"
	"PatternRank/internal/export"
	"PatternRank/internal/notifier"
	"PatternRank/internal/patterns"
	"PatternRank/internal/ranking"
	"PatternRank/internal/recorder"
	"PatternRank/internal/snapshot"
)

// Job describes what a ranking run does with its output.
type Job struct {
	TopN           int
	FilterNews     bool
	ExportPath     string
	InitialCapital float64
}

// Scheduler runs ranking jobs on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Registry  *patterns.Registry
	Options   ranking.Options
	Job       Job
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Snapshots *snapshot.Store
	Ctx       context.Context

	mu     sync.Mutex // serialises ranking runs
	tester *ranking.Tester
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, reg *patterns.Registry, opts ranking.Options,
	job Job, n notifier.Notifier, rec recorder.Recorder, store *snapshot.Store) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Registry:  reg,
		Options:   opts,
		Job:       job,
		Notifier:  n,
		Recorder:  rec,
		Snapshots: store,
		Ctx:       ctx,
	}
}

// RegisterAll registers the ranking task.
func (s *Scheduler) RegisterAll(rankCron string) error {
	if _, err := s.Cron.AddFunc(rankCron, s.rankTask); err != nil {
		return fmt.Errorf("register rank task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) rankTask() {
	if _, err := s.RunRank(); err != nil {
		log.Error().Err(err).Msg("rank task")
		s.trySend(fmt.Sprintf("❌ Ranking failed: %v", err))
	}
}

// RunRank loads a fresh series, ranks every pattern, then records, stores,
// exports and announces the result. Recording, export and delivery failures
// are logged and do not fail the run.
func (s *Scheduler) RunRank() (*ranking.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().Str("symbol", s.Collector.Symbol).Bool("filter_news", s.Job.FilterNews).Msg("running rank task")
	series, err := s.Collector.Load()
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	tester := ranking.NewTester(series, s.Registry, s.Options)
	if _, err := tester.TestAllPatterns(s.Job.FilterNews); err != nil {
		return nil, fmt.Errorf("rank patterns: %w", err)
	}
	run := tester.LastRun()
	s.tester = tester

	if err := s.Recorder.RecordRun(&recorder.RunSnapshot{
		Run:            run,
		Symbol:         series.Symbol,
		Interval:       series.Interval,
		Bars:           series.Len(),
		InitialCapital: s.Job.InitialCapital,
		PositionSize:   tester.Options.PositionSize,
		NewsDates:      s.Options.News.Dates(),
	}); err != nil {
		log.Error().Err(err).Msg("record run")
	}
	if s.Snapshots != nil {
		if err := s.Snapshots.Put(snapshot.FromRun(series.Symbol, series.Interval, run)); err != nil {
			log.Error().Err(err).Msg("store snapshot")
		}
	}
	if s.Job.ExportPath != "" {
		if err := export.ExportResults(s.Job.ExportPath, run.Results); err != nil {
			log.Error().Err(err).Msg("export results")
		} else {
			log.Info().Str("path", s.Job.ExportPath).Msg("results exported")
		}
	}

	report := notifier.FormatRanking(series.Symbol, series.Interval, run, s.Job.TopN)
	if skipped := notifier.FormatSkipped(run.Skipped()); skipped != "" {
		report += "\n" + skipped
	}
	s.trySend(report)
	return run, nil
}

func (s *Scheduler) currentTester() *ranking.Tester {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tester
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/rank":
		s.rankTask()
		return ""
	case "/top":
		return s.top(args)
	case "/compare":
		return s.compare()
	case "/signals":
		return s.signals(args)
	case "/patterns":
		names := s.Registry.Names()
		for i, id := range names {
			names[i] = patterns.DisplayName(id)
		}
		return fmt.Sprintf("🕯 <b>%d patterns</b>\n%s", len(names), strings.Join(names, ", "))
	case "/history":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatHistory(runs)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) top(args []string) string {
	n := s.Job.TopN
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return "Usage: /top [n]"
		}
		n = v
	}
	if t := s.currentTester(); t != nil {
		return notifier.FormatRanking(t.Series.Symbol, t.Series.Interval, t.LastRun(), n)
	}
	if s.Snapshots != nil {
		if st := s.Snapshots.Get(); st != nil {
			return notifier.FormatRanking(st.Symbol, st.Interval, st.Run(), n)
		}
	}
	return "No ranking yet. Send /rank to run one."
}

func (s *Scheduler) compare() string {
	t := s.currentTester()
	if t == nil {
		return "No price data loaded yet. Send /rank first."
	}
	// A separate tester keeps the scheduled ranking as the latest one.
	rows, err := ranking.NewTester(t.Series, s.Registry, s.Options).ComparisonReport()
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return notifier.FormatComparison(rows)
}

func (s *Scheduler) signals(args []string) string {
	if len(args) == 0 || len(args) > 3 {
		return "Usage: /signals PATTERN [DATE | START END]"
	}
	t := s.currentTester()
	if t == nil {
		return "No price data loaded yet. Send /rank first."
	}
	var filter patterns.DateFilter
	switch len(args) {
	case 2:
		filter.Date = args[1]
	case 3:
		filter.Start, filter.End = args[1], args[2]
	}
	sigs, err := patterns.NewAnalyzer(t.Series, s.Registry).Signals(args[0], filter)
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return notifier.FormatSignals(args[0], filter, sigs, 20)
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
