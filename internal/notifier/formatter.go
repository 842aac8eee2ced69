package notifier

import (
	"fmt"
	"html"
	"strings"

	"PatternRank/internal/patterns"
	"PatternRank/internal/ranking"
	"PatternRank/internal/recorder"
)

// FormatRanking formats the top n entries of a run into a Telegram message.
func FormatRanking(symbol, interval string, run *ranking.Run, n int) string {
	var b strings.Builder

	filter := "no news filter"
	if run.FilterNews {
		filter = "news filtered"
	}
	b.WriteString(fmt.Sprintf("📊 <b>Pattern ranking</b> | %s %s | %s\n", html.EscapeString(symbol), interval, filter))
	b.WriteString(fmt.Sprintf("%s, %d ranked, %d skipped\n\n",
		run.StartedAt.Format("2006-01-02 15:04"), len(run.Results), len(run.Skipped())))

	if len(run.Results) == 0 {
		b.WriteString("No pattern completed a trade.\n")
		return b.String()
	}
	if n <= 0 || n > len(run.Results) {
		n = len(run.Results)
	}
	for i, r := range run.Results[:n] {
		b.WriteString(fmt.Sprintf("%2d. <b>%s</b> win %.1f%% | PnL $%.2f | %d trades | Sharpe %.2f\n",
			i+1, html.EscapeString(r.PatternName), r.WinRate, r.TotalPnL, r.TotalTrades(), r.SharpeRatio))
	}
	return b.String()
}

// FormatComparison formats a comparison report. Rows pair rank positions,
// so both pattern names are shown when they differ.
func FormatComparison(rows []ranking.ComparisonRow) string {
	var b strings.Builder
	b.WriteString("⚖️ <b>News filter comparison</b>\n\n")
	if len(rows) == 0 {
		b.WriteString("Nothing to compare.\n")
		return b.String()
	}
	for _, r := range rows {
		name := html.EscapeString(r.Pattern)
		if r.FilteredPattern != r.Pattern {
			name += " / " + html.EscapeString(r.FilteredPattern)
		}
		b.WriteString(fmt.Sprintf("%2d. <b>%s</b>\n", r.Rank, name))
		b.WriteString(fmt.Sprintf("    win %.1f%% → %.1f%% | PnL $%.2f → $%.2f | signals %d → %d\n",
			r.WinRate, r.FilteredWinRate, r.TotalPnL, r.FilteredTotalPnL, r.Signals, r.FilteredSignals))
	}
	return b.String()
}

// FormatSkipped lists the patterns that did not make the ranking and why.
func FormatSkipped(outcomes []ranking.Outcome) string {
	if len(outcomes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏭ <b>Skipped patterns</b> (%d)\n", len(outcomes)))
	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("  %s: %s\n",
			html.EscapeString(patterns.DisplayName(o.Pattern)), html.EscapeString(o.Reason())))
	}
	return b.String()
}

// FormatSignals lists the signal bars of one pattern, newest last.
// At most limit entries are shown; the rest are summarised.
func FormatSignals(pattern string, filter patterns.DateFilter, signals []patterns.Signal, limit int) string {
	var b strings.Builder
	name := html.EscapeString(patterns.DisplayName(patterns.NormalizeName(pattern)))
	b.WriteString(fmt.Sprintf("🕯 <b>%s</b> signals%s: %d\n", name, filter.Describe(), len(signals)))
	shown := signals
	if limit > 0 && len(shown) > limit {
		shown = shown[len(shown)-limit:]
		b.WriteString(fmt.Sprintf("  (showing last %d)\n", limit))
	}
	for _, s := range shown {
		dir := "bullish"
		if s.Value < 0 {
			dir = "bearish"
		}
		b.WriteString(fmt.Sprintf("  %s %s (%+.0f)\n", s.Time.Format("2006-01-02 15:04"), dir, s.Value))
	}
	return b.String()
}

// FormatHistory summarises recorded runs.
func FormatHistory(runs []recorder.RunSummary) string {
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n\n")
	if len(runs) == 0 {
		b.WriteString("No runs recorded.\n")
		return b.String()
	}
	for _, r := range runs {
		mark := ""
		if r.FilterNews {
			mark = " (news filtered)"
		}
		top := "none"
		if r.TopPattern != "" {
			top = fmt.Sprintf("%s %.1f%%", html.EscapeString(r.TopPattern), r.TopWinRate)
		}
		b.WriteString(fmt.Sprintf("%s %s %s%s: %d ranked, top %s\n",
			r.StartedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Symbol), r.Interval, mark, r.Ranked, top))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n\n" +
		"/rank - rerun the ranking now\n" +
		"/top [n] - best patterns of the last run\n" +
		"/compare - with and without the news filter\n" +
		"/signals PATTERN [YYYY-MM-DD] - signal bars of one pattern\n" +
		"/patterns - list available patterns\n" +
		"/history - recent recorded runs\n"
}
