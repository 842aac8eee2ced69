package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"PatternRank/internal/model"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Source    string `yaml:"source"` // yahoo, csv or rest
		Symbol    string `yaml:"symbol"`
		Period    string `yaml:"period"`
		Timeframe string `yaml:"timeframe"`
		Timezone  string `yaml:"timezone"`
		CSVPath   string `yaml:"csv_path"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
	} `yaml:"data_source"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital"`
		PositionSize   float64 `yaml:"position_size"`
		TopN           int     `yaml:"top_n"`
		Workers        int     `yaml:"workers"`
		FilterNews     bool    `yaml:"filter_news"`
	} `yaml:"backtest"`
	News struct {
		Dates []string `yaml:"dates"`
		File  string   `yaml:"file"`
	} `yaml:"news"`
	Export struct {
		CSVPath        string `yaml:"csv_path"`
		ComparisonPath string `yaml:"comparison_path"`
	} `yaml:"export"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RankCron string `yaml:"rank_cron"`
	} `yaml:"schedule"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PATTERNRANK_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("PATTERNRANK_TIMEFRAME"); v != "" {
		cfg.DataSource.Timeframe = v
	}
	if v := os.Getenv("PATTERNRANK_PERIOD"); v != "" {
		cfg.DataSource.Period = v
	}
	if v := os.Getenv("PATTERNRANK_CSV"); v != "" {
		cfg.DataSource.Source = "csv"
		cfg.DataSource.CSVPath = v
	}
	if v := os.Getenv("NEWS_DATES"); v != "" {
		cfg.News.Dates = splitList(v)
	}
	if v := os.Getenv("POSITION_SIZE"); v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("POSITION_SIZE: %w", err)
		}
		cfg.Backtest.PositionSize = size
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("CRON_RANK"); v != "" {
		cfg.Schedule.RankCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Source == "" {
		c.DataSource.Source = "yahoo"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "EURUSD"
	}
	if c.DataSource.Period == "" {
		c.DataSource.Period = "60d"
	}
	if c.DataSource.Timeframe == "" {
		c.DataSource.Timeframe = "15m"
	}
	if c.DataSource.Timezone == "" {
		c.DataSource.Timezone = "Europe/Moscow"
	}
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = 10000
	}
	if c.Backtest.PositionSize == 0 {
		c.Backtest.PositionSize = 100
	}
	if c.Backtest.TopN == 0 {
		c.Backtest.TopN = 10
	}
	if c.Backtest.Workers == 0 {
		c.Backtest.Workers = 1
	}
	if c.Export.CSVPath == "" {
		c.Export.CSVPath = "pattern_ranking.csv"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/patternrank.db"
	}
	if c.State.File == "" {
		c.State.File = "data/last_ranking.json"
	}
	if c.Schedule.RankCron == "" {
		c.Schedule.RankCron = "0 0 7 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Source {
	case "yahoo":
	case "csv":
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for the csv source")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("data_source.source %q is not one of yahoo, csv, rest", c.DataSource.Source)
	}
	if c.Backtest.PositionSize <= 0 {
		return fmt.Errorf("backtest.position_size must be positive")
	}
	if c.Backtest.TopN < 0 {
		return fmt.Errorf("backtest.top_n must not be negative")
	}
	if c.Backtest.Workers < 1 {
		return fmt.Errorf("backtest.workers must be at least 1")
	}
	if _, err := model.ParseNewsDates(c.News.Dates); err != nil {
		return fmt.Errorf("news.dates: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// NewsDates merges news.dates with the dates listed in news.file.
func (c *Config) NewsDates() (model.NewsDateSet, error) {
	dates := append([]string(nil), c.News.Dates...)
	if c.News.File != "" {
		fromFile, err := LoadNewsFile(c.News.File)
		if err != nil {
			return nil, err
		}
		dates = append(dates, fromFile...)
	}
	return model.ParseNewsDates(dates)
}

// LoadNewsFile reads news dates from a YAML list or from a plain file with one
// date per line. Lines starting with # are ignored in the plain form.
func LoadNewsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read news file: %w", err)
	}
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, splitList(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read news file: %w", err)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
