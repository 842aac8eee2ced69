package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"PatternRank/internal/model"
	"PatternRank/internal/ranking"
)

// ResultHeader is the column layout of a ranking export.
var ResultHeader = []string{
	"Rank", "Pattern", "Total Signals", "Winning Trades", "Losing Trades",
	"Win Rate %", "Total PnL", "Avg PnL", "Max Profit", "Max Loss", "Sharpe Ratio",
}

// ComparisonHeader is the column layout of a comparison export.
var ComparisonHeader = []string{
	"Rank", "Pattern", "Pattern (With Filter)",
	"Win Rate (No News Filter)", "Win Rate (With News Filter)",
	"Total PnL (No Filter)", "Total PnL (With Filter)",
	"Signals (No Filter)", "Signals (With Filter)",
	"Sharpe (No Filter)", "Sharpe (With Filter)",
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func percent(v float64) string { return fixed(v, 1) + "%" }

func money(v float64) string { return "$" + fixed(v, 2) }

func resultRecord(rank int, r model.PatternResult) []string {
	return []string{
		strconv.Itoa(rank),
		r.PatternName,
		strconv.Itoa(r.TotalSignals),
		strconv.Itoa(r.WinningTrades),
		strconv.Itoa(r.LosingTrades),
		fixed(r.WinRate, 2),
		fixed(r.TotalPnL, 2),
		fixed(r.AvgPnL, 2),
		fixed(r.MaxProfit, 2),
		fixed(r.MaxLoss, 2),
		fixed(r.SharpeRatio, 2),
	}
}

func comparisonRecord(row ranking.ComparisonRow) []string {
	return []string{
		strconv.Itoa(row.Rank),
		row.Pattern,
		row.FilteredPattern,
		percent(row.WinRate),
		percent(row.FilteredWinRate),
		money(row.TotalPnL),
		money(row.FilteredTotalPnL),
		strconv.Itoa(row.Signals),
		strconv.Itoa(row.FilteredSignals),
		fixed(row.SharpeRatio, 2),
		fixed(row.FilteredSharpeRatio, 2),
	}
}

// WriteResults writes the ranking as CSV, ranks starting at 1.
func WriteResults(w io.Writer, results []model.PatternResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return err
	}
	for i, r := range results {
		if err := cw.Write(resultRecord(i+1, r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparison writes a comparison report as CSV.
func WriteComparison(w io.Writer, rows []ranking.ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ComparisonHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(comparisonRecord(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportResults writes the ranking to path, creating parent directories.
func ExportResults(path string, results []model.PatternResult) error {
	return writeFile(path, func(w io.Writer) error { return WriteResults(w, results) })
}

// ExportComparison writes a comparison report to path, creating parent directories.
func ExportComparison(path string, rows []ranking.ComparisonRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteComparison(w, rows) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// PrintResults renders the ranking as an aligned console table.
func PrintResults(w io.Writer, results []model.PatternResult) error {
	return printTable(w, ResultHeader, len(results), func(i int) []string {
		return resultRecord(i+1, results[i])
	})
}

// PrintComparison renders a comparison report as an aligned console table.
func PrintComparison(w io.Writer, rows []ranking.ComparisonRow) error {
	return printTable(w, ComparisonHeader, len(rows), func(i int) []string {
		return comparisonRecord(rows[i])
	})
}

func printTable(w io.Writer, header []string, n int, row func(int) []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	writeLine(header)
	for i := 0; i < n; i++ {
		writeLine(row(i))
	}
	return tw.Flush()
}
