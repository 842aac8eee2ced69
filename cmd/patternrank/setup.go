package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"PatternRank/internal/collector"
	"PatternRank/internal/config"
	"PatternRank/internal/notifier"
	"PatternRank/internal/patterns"
	"PatternRank/internal/ranking"
	"PatternRank/internal/recorder"
	"PatternRank/internal/scheduler"
	"PatternRank/internal/snapshot"
)

// dataFlags are the series and news flags shared by every command that loads prices.
type dataFlags struct {
	csv      string
	news     string
	newsFile string
}

func bindDataFlags(fs *flag.FlagSet, cfg *config.Config) *dataFlags {
	df := &dataFlags{}
	fs.StringVar(&cfg.DataSource.Symbol, "symbol", cfg.DataSource.Symbol, "currency pair or ticker, e.g. EURUSD")
	fs.StringVar(&cfg.DataSource.Timeframe, "timeframe", cfg.DataSource.Timeframe, "bar interval: M1 M5 M15 M30 H1 H4 D1 or 15m, 1h, 1d ...")
	fs.StringVar(&cfg.DataSource.Period, "period", cfg.DataSource.Period, "lookback, e.g. 60d, 6mo, 1y, max")
	fs.StringVar(&cfg.DataSource.Timezone, "timezone", cfg.DataSource.Timezone, "timezone bar times are converted to")
	fs.StringVar(&df.csv, "csv", "", "read bars from this CSV file instead of downloading")
	fs.StringVar(&df.news, "news", "", "comma separated news dates (YYYY-MM-DD)")
	fs.StringVar(&df.newsFile, "news-file", "", "file with news dates, one per line or a YAML list")
	fs.IntVar(&cfg.Backtest.Workers, "workers", cfg.Backtest.Workers, "patterns evaluated in parallel")
	fs.Float64Var(&cfg.Backtest.PositionSize, "position-size", cfg.Backtest.PositionSize, "notional per trade")
	return df
}

func (df *dataFlags) apply(cfg *config.Config) {
	if df.csv != "" {
		cfg.DataSource.Source = "csv"
		cfg.DataSource.CSVPath = df.csv
	}
	if df.news != "" {
		for _, d := range strings.Split(df.news, ",") {
			if d = strings.TrimSpace(d); d != "" {
				cfg.News.Dates = append(cfg.News.Dates, d)
			}
		}
	}
	if df.newsFile != "" {
		cfg.News.File = df.newsFile
	}
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Source {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	}
	return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Source)
}

func newCollector(cfg *config.Config) (*collector.Collector, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source")
	ds := cfg.DataSource
	return collector.NewCollector(fetcher, ds.Symbol, ds.Timeframe, ds.Period, ds.Timezone), nil
}

func rankingOptions(cfg *config.Config) (ranking.Options, error) {
	news, err := cfg.NewsDates()
	if err != nil {
		return ranking.Options{}, err
	}
	return ranking.Options{
		InitialCapital: cfg.Backtest.InitialCapital,
		PositionSize:   cfg.Backtest.PositionSize,
		News:           news,
		Workers:        cfg.Backtest.Workers,
	}, nil
}

// newTester loads the configured series and prepares a tester over the builtin catalog.
func newTester(cfg *config.Config) (*ranking.Tester, error) {
	col, err := newCollector(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := rankingOptions(cfg)
	if err != nil {
		return nil, err
	}
	series, err := col.Load()
	if err != nil {
		return nil, err
	}
	return ranking.NewTester(series, patterns.Default(), opts), nil
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newNotifier(cfg *config.Config, enabled bool) notifier.Notifier {
	if !enabled || !cfg.TelegramEnabled() {
		return notifier.NoopNotifier{}
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

// newScheduler wires the full ranking pipeline. The returned func closes the recorder.
func newScheduler(ctx context.Context, cfg *config.Config, n notifier.Notifier) (*scheduler.Scheduler, func(), error) {
	col, err := newCollector(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts, err := rankingOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := snapshot.NewStore(cfg.State.File)
	if err != nil {
		return nil, nil, err
	}
	rec := openRecorder(cfg)
	job := scheduler.Job{
		TopN:           cfg.Backtest.TopN,
		FilterNews:     cfg.Backtest.FilterNews,
		ExportPath:     cfg.Export.CSVPath,
		InitialCapital: cfg.Backtest.InitialCapital,
	}
	sched := scheduler.NewScheduler(ctx, col, patterns.Default(), opts, job, n, rec, store)
	return sched, func() { rec.Close() }, nil
}
