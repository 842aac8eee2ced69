package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists ranking runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking_runs (
			id              TEXT PRIMARY KEY,
			timestamp       INTEGER NOT NULL,
			duration_ms     INTEGER,
			symbol          TEXT,
			interval        TEXT,
			bars            INTEGER,
			filter_news     INTEGER,
			news_dates      TEXT,
			initial_capital REAL,
			position_size   REAL,
			ranked          INTEGER,
			skipped         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON ranking_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS pattern_results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES ranking_runs(id),
			rank           INTEGER NOT NULL,
			pattern        TEXT NOT NULL,
			total_signals  INTEGER,
			winning_trades INTEGER,
			losing_trades  INTEGER,
			win_rate       REAL,
			total_pnl      REAL,
			avg_pnl        REAL,
			max_profit     REAL,
			max_loss       REAL,
			sharpe_ratio   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON pattern_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_pattern ON pattern_results(pattern)`,

		`CREATE TABLE IF NOT EXISTS skipped_patterns (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES ranking_runs(id),
			pattern TEXT NOT NULL,
			outcome TEXT NOT NULL,
			signals INTEGER,
			reason  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skipped_run ON skipped_patterns(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run, its ranked results and its skipped patterns in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	if snap == nil || snap.Run == nil {
		return errors.New("record run: nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	run := snap.Run
	skipped := run.Skipped()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO ranking_runs
		(id, timestamp, duration_ms, symbol, interval, bars, filter_news, news_dates,
		 initial_capital, position_size, ranked, skipped)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Duration.Milliseconds(),
		snap.Symbol, snap.Interval, snap.Bars, run.FilterNews, strings.Join(snap.NewsDates, ","),
		snap.InitialCapital, snap.PositionSize, len(run.Results), len(skipped),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range run.Results {
		_, err := tx.Exec(`INSERT INTO pattern_results
			(run_id, rank, pattern, total_signals, winning_trades, losing_trades,
			 win_rate, total_pnl, avg_pnl, max_profit, max_loss, sharpe_ratio)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, i+1, res.PatternName, res.TotalSignals, res.WinningTrades, res.LosingTrades,
			res.WinRate, res.TotalPnL, res.AvgPnL, res.MaxProfit, res.MaxLoss, res.SharpeRatio,
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.PatternName, err)
		}
	}

	for _, o := range skipped {
		_, err := tx.Exec(`INSERT INTO skipped_patterns (run_id, pattern, outcome, signals, reason)
			VALUES (?,?,?,?,?)`,
			run.ID, o.Pattern, string(o.Kind), o.Signals, o.Reason(),
		)
		if err != nil {
			return fmt.Errorf("insert skipped %s: %w", o.Pattern, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first, with their top-ranked pattern.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT r.id, r.timestamp, r.symbol, r.interval, r.filter_news,
			r.ranked, r.skipped, COALESCE(p.pattern, ''), COALESCE(p.win_rate, 0)
		FROM ranking_runs r
		LEFT JOIN pattern_results p ON p.run_id = r.id AND p.rank = 1
		ORDER BY r.timestamp DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Symbol, &s.Interval, &s.FilterNews,
			&s.Ranked, &s.Skipped, &s.TopPattern, &s.TopWinRate); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
