package main

import (
	"bytes"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PatternRank/internal/config"
	"PatternRank/internal/patterns"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, k := range []string{"PATTERNRANK_SYMBOL", "PATTERNRANK_TIMEFRAME", "PATTERNRANK_PERIOD", "PATTERNRANK_CSV", "NEWS_DATES", "POSITION_SIZE"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestDataFlags(t *testing.T) {
	cfg := defaultConfig(t)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	df := bindDataFlags(fs, cfg)
	err := fs.Parse([]string{"-symbol", "GBPUSD", "-timeframe", "H4", "-csv", "bars.csv",
		"-news", "2025-04-01, 2025-04-02", "-workers", "4"})
	if err != nil {
		t.Fatal(err)
	}
	df.apply(cfg)
	if cfg.DataSource.Symbol != "GBPUSD" || cfg.DataSource.Timeframe != "H4" || cfg.Backtest.Workers != 4 {
		t.Errorf("flags not applied: %+v %+v", cfg.DataSource, cfg.Backtest)
	}
	if cfg.DataSource.Source != "csv" || cfg.DataSource.CSVPath != "bars.csv" {
		t.Errorf("expected csv source, got %s %s", cfg.DataSource.Source, cfg.DataSource.CSVPath)
	}
	if strings.Join(cfg.News.Dates, ",") != "2025-04-01,2025-04-02" {
		t.Errorf("unexpected news dates %v", cfg.News.Dates)
	}
	if cfg.DataSource.Period != "60d" {
		t.Errorf("expected untouched default period, got %s", cfg.DataSource.Period)
	}
}

func TestNewFetcher(t *testing.T) {
	cfg := defaultConfig(t)
	for source, want := range map[string]string{"yahoo": "yahoo", "csv": "csv", "rest": "rest"} {
		cfg.DataSource.Source = source
		f, err := newFetcher(cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", source, err)
		}
		if f.Name() != want {
			t.Errorf("expected %s fetcher, got %s", want, f.Name())
		}
	}
	cfg.DataSource.Source = "ftp"
	if _, err := newFetcher(cfg); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestRankingOptions(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.News.Dates = []string{"2025-04-01"}
	opts, err := rankingOptions(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.PositionSize != 100 || opts.InitialCapital != 10000 || len(opts.News) != 1 {
		t.Errorf("unexpected options %+v", opts)
	}
	cfg.News.Dates = []string{"tomorrow"}
	if _, err := rankingOptions(cfg); err == nil {
		t.Error("expected error for bad news date")
	}
}

func TestPrintSignals(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	printSignals(&buf, "hammer", patterns.DateFilter{Date: "2025-04-01"}, []patterns.Signal{{Index: 3, Time: at, Value: 100}})
	want := "HAMMER on 2025-04-01: 1 signals\n  2025-04-01 09:30 UTC  +100\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
