package collector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var timeframeAliases = map[string]string{
	"M1":  "1m",
	"M5":  "5m",
	"M15": "15m",
	"M30": "30m",
	"H1":  "1h",
	"H4":  "4h",
	"D1":  "1d",
}

var validIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true, "30m": true, "60m": true, "90m": true,
	"1h": true, "4h": true, "1d": true, "5d": true, "1wk": true, "1mo": true, "3mo": true,
}

// NormalizeTimeframe converts names like M15 or H1 into chart intervals.
func NormalizeTimeframe(timeframe string) (string, error) {
	tf := strings.TrimSpace(timeframe)
	interval, ok := timeframeAliases[strings.ToUpper(tf)]
	if !ok {
		interval = strings.ToLower(tf)
	}
	if !validIntervals[interval] {
		allowed := make([]string, 0, len(validIntervals))
		for k := range validIntervals {
			allowed = append(allowed, k)
		}
		sort.Strings(allowed)
		return "", fmt.Errorf("unsupported timeframe %q, allowed: %s", timeframe, strings.Join(allowed, ", "))
	}
	return interval, nil
}

// DownloadInterval maps intervals the chart API does not serve to one it does.
// 4h bars are built from 1h bars.
func DownloadInterval(interval string) string {
	if interval == "4h" {
		return "1h"
	}
	return interval
}

// ParsePeriod converts a lookback like "60d", "2wk", "6mo" or "1y" into a duration.
// "max" and "" return 0, meaning no limit. Months count as 30 days.
func ParsePeriod(period string) (time.Duration, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" || p == "max" {
		return 0, nil
	}
	units := []struct {
		suffix string
		day    float64
	}{
		{"wk", 7}, {"mo", 30}, {"d", 1}, {"y", 365},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		return time.Duration(float64(n)*u.day) * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("invalid period %q", period)
}
