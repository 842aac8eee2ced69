package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"PatternRank/internal/config"
	"PatternRank/internal/export"
	"PatternRank/internal/metrics"
	"PatternRank/internal/notifier"
	"PatternRank/internal/patterns"
)

func runRank(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	df := bindDataFlags(fs, cfg)
	fs.BoolVar(&cfg.Backtest.FilterNews, "filter-news", cfg.Backtest.FilterNews, "ignore signals on news dates")
	fs.IntVar(&cfg.Backtest.TopN, "top", cfg.Backtest.TopN, "rows to print, 0 for all")
	fs.StringVar(&cfg.Export.CSVPath, "export", cfg.Export.CSVPath, "CSV output path, empty to skip")
	notify := fs.Bool("notify", false, "send the ranking to Telegram")
	fs.Parse(args)
	df.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	sched, closeFn, err := newScheduler(context.Background(), cfg, newNotifier(cfg, *notify))
	if err != nil {
		return err
	}
	defer closeFn()

	run, err := sched.RunRank()
	if err != nil {
		return err
	}
	top := run.Results
	if n := cfg.Backtest.TopN; n > 0 && n < len(top) {
		top = top[:n]
	}
	if err := export.PrintResults(os.Stdout, top); err != nil {
		return err
	}
	if skipped := run.Skipped(); len(skipped) > 0 {
		fmt.Printf("\n%d of %d patterns not ranked (use LOG_LEVEL=DEBUG for details)\n", len(skipped), len(run.Outcomes))
	}
	return nil
}

func runCompare(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	df := bindDataFlags(fs, cfg)
	fs.StringVar(&cfg.Export.ComparisonPath, "export", cfg.Export.ComparisonPath, "CSV output path, empty to skip")
	fs.Parse(args)
	df.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	tester, err := newTester(cfg)
	if err != nil {
		return err
	}
	if len(tester.Options.News) == 0 {
		log.Warn().Msg("no news dates configured, both rankings will be identical")
	}
	rows, err := tester.ComparisonReport()
	if err != nil {
		return err
	}
	if err := export.PrintComparison(os.Stdout, rows); err != nil {
		return err
	}
	if path := cfg.Export.ComparisonPath; path != "" {
		if err := export.ExportComparison(path, rows); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("comparison exported")
	}
	return nil
}

func runSignals(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("signals", flag.ExitOnError)
	df := bindDataFlags(fs, cfg)
	pattern := fs.String("pattern", "", "pattern name, e.g. CDLENGULFING or ENGULFING")
	all := fs.Bool("all-patterns", false, "scan every pattern")
	var filter patterns.DateFilter
	fs.StringVar(&filter.Date, "date", "", "only signals on this day (YYYY-MM-DD)")
	fs.StringVar(&filter.Start, "start-date", "", "only signals on or after this day")
	fs.StringVar(&filter.End, "end-date", "", "only signals on or before this day")
	fs.Parse(args)
	df.apply(cfg)

	if (*pattern == "") == !*all {
		return errors.New("specify exactly one of -pattern or -all-patterns")
	}
	if err := filter.Validate(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	tester, err := newTester(cfg)
	if err != nil {
		return err
	}
	analyzer := patterns.NewAnalyzer(tester.Series, tester.Registry)

	names := []string{*pattern}
	if *all {
		names = tester.Registry.Names()
	}
	for _, name := range names {
		sigs, err := analyzer.Signals(name, filter)
		if err != nil {
			return err
		}
		if *all && len(sigs) == 0 {
			continue
		}
		printSignals(os.Stdout, name, filter, sigs)
	}
	return nil
}

func printSignals(w io.Writer, name string, filter patterns.DateFilter, sigs []patterns.Signal) {
	fmt.Fprintf(w, "%s%s: %d signals\n", patterns.DisplayName(patterns.NormalizeName(name)), filter.Describe(), len(sigs))
	for _, s := range sigs {
		fmt.Fprintf(w, "  %s  %+.0f\n", s.Time.Format("2006-01-02 15:04 MST"), s.Value)
	}
}

func runPatterns(args []string) error {
	fs := flag.NewFlagSet("patterns", flag.ExitOnError)
	fs.Parse(args)
	for _, id := range patterns.Default().Names() {
		fmt.Printf("%s\t%s\n", id, patterns.DisplayName(id))
	}
	return nil
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	df := bindDataFlags(fs, cfg)
	fs.StringVar(&cfg.Schedule.RankCron, "cron", cfg.Schedule.RankCron, "ranking schedule (cron with seconds)")
	fs.StringVar(&cfg.Metrics.ListenAddr, "metrics-addr", cfg.Metrics.ListenAddr, "serve /metrics on this address, empty to disable")
	fs.Parse(args)
	df.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Warn().Msg("telegram not configured, rankings will only be logged and exported")
	}

	sched, closeFn, err := newScheduler(ctx, cfg, n)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := sched.RegisterAll(cfg.Schedule.RankCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		log.Info().Str("addr", addr).Msg("metrics endpoint started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, ranking now")
		go func() {
			if _, err := sched.RunRank(); err != nil {
				log.Error().Err(err).Msg("initial rank")
			}
		}()
	}

	log.Info().Str("cron", cfg.Schedule.RankCron).Msg("patternrank is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
