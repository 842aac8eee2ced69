package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for news dates.
const DateLayout = "2006-01-02"

// NewsDateSet is a set of calendar dates whose signals are suppressed.
type NewsDateSet map[string]struct{}

// ParseNewsDates builds a set from YYYY-MM-DD strings. Blank entries are ignored.
func ParseNewsDates(dates []string) (NewsDateSet, error) {
	set := make(NewsDateSet, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid news date %q: %w", d, err)
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// Contains reports whether the calendar date of t, taken in t's own location, is in the set.
func (s NewsDateSet) Contains(t time.Time) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[t.Format(DateLayout)]
	return ok
}

// Dates returns the members in ascending order.
func (s NewsDateSet) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
