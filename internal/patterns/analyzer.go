package patterns

import (
	"fmt"
	"strings"
	"time"

	"PatternRank/internal/model"
)

// Signal is one non-zero detector output.
type Signal struct {
	Index int
	Time  time.Time
	Value float64
}

// DateFilter restricts signals to one calendar day or an inclusive day range.
// Dates use YYYY-MM-DD and are read in the series timezone.
type DateFilter struct {
	Date  string
	Start string
	End   string
}

func (f DateFilter) IsZero() bool { return f.Date == "" && f.Start == "" && f.End == "" }

// Describe renders the filter for messages, e.g. " on 2025-04-01".
func (f DateFilter) Describe() string {
	switch {
	case f.Date != "":
		return " on " + f.Date
	case f.Start != "" || f.End != "":
		start, end := f.Start, f.End
		if start == "" {
			start = "beginning"
		}
		if end == "" {
			end = "end"
		}
		return fmt.Sprintf(" from %s to %s", start, end)
	}
	return ""
}

// Validate rejects a single date combined with a range, and malformed dates.
func (f DateFilter) Validate() error {
	if f.Date != "" && (f.Start != "" || f.End != "") {
		return fmt.Errorf("use either a date or a start/end range, not both")
	}
	for _, d := range []string{f.Date, f.Start, f.End} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return fmt.Errorf("invalid date %q: %w", d, err)
		}
	}
	return nil
}

func (f DateFilter) match(day string) bool {
	if f.Date != "" {
		return day == f.Date
	}
	// YYYY-MM-DD orders lexically
	if f.Start != "" && day < f.Start {
		return false
	}
	if f.End != "" && day > f.End {
		return false
	}
	return true
}

// Analyzer lists raw detector signals over a loaded series.
type Analyzer struct {
	Series   *model.PriceSeries
	Registry *Registry
}

// NewAnalyzer creates an Analyzer over the given catalog.
func NewAnalyzer(series *model.PriceSeries, registry *Registry) *Analyzer {
	return &Analyzer{Series: series, Registry: registry}
}

// Signals returns the non-zero outputs of one pattern, optionally restricted by date.
func (a *Analyzer) Signals(pattern string, filter DateFilter) ([]Signal, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	detect, ok := a.Registry.Lookup(pattern)
	if !ok {
		available := make([]string, 0, a.Registry.Len())
		for _, id := range a.Registry.Names() {
			available = append(available, DisplayName(id))
		}
		return nil, fmt.Errorf("unknown pattern %q, available: %s", pattern, strings.Join(available, ", "))
	}

	s := a.Series
	values, err := detect(s.Opens(), s.Highs(), s.Lows(), s.Closes())
	if err != nil {
		return nil, fmt.Errorf("detect %s: %w", NormalizeName(pattern), err)
	}
	if len(values) != s.Len() {
		return nil, fmt.Errorf("detect %s: %d values for %d bars", NormalizeName(pattern), len(values), s.Len())
	}

	var out []Signal
	for i, v := range values {
		if v == 0 {
			continue
		}
		t := s.Bars[i].Time
		if !filter.IsZero() && !filter.match(t.Format(model.DateLayout)) {
			continue
		}
		out = append(out, Signal{Index: i, Time: t, Value: v})
	}
	return out, nil
}
