package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"PatternRank/internal/model"
)

var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006-01-02",
	"2006.01.02",
}

// CSVFetcher reads bars from a local export (MetaTrader, Yahoo downloads, etc.).
// The file must have a header naming a time column and open/high/low/close.
// UTF-8 and UTF-16 files with a byte order mark are both accepted.
type CSVFetcher struct {
	Path string
}

func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchBars ignores symbol and interval: the file is taken as-is. The period
// keeps only bars within that span of the newest bar.
func (f *CSVFetcher) FetchBars(_ string, _ string, period string) ([]model.OHLCV, error) {
	lookback, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	bars, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	if lookback > 0 && len(bars) > 0 {
		cutoff := bars[len(bars)-1].Time.Add(-lookback)
		i := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(cutoff) })
		bars = bars[i:]
	}
	return bars, nil
}

// ReadCSV parses bars from r and returns them sorted by time.
func ReadCSV(r io.Reader) ([]model.OHLCV, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := csvColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseCSVRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

type csvLayout struct {
	time, open, high, low, close, volume int
}

func csvColumns(header []string) (csvLayout, error) {
	l := csvLayout{-1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.Trim(strings.TrimSpace(h), "<>")) {
		case "time", "date", "datetime", "timestamp", "gmt time", "local time":
			if l.time < 0 {
				l.time = i
			}
		case "open":
			l.open = i
		case "high":
			l.high = i
		case "low":
			l.low = i
		case "close":
			l.close = i
		case "volume", "vol", "tickvol":
			l.volume = i
		}
	}
	if l.time < 0 || l.open < 0 || l.high < 0 || l.low < 0 || l.close < 0 {
		return l, errors.New("csv header must name time, open, high, low and close columns")
	}
	return l, nil
}

func parseCSVRecord(rec []string, l csvLayout) (model.OHLCV, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	t, err := parseCSVTime(field(l.time))
	if err != nil {
		return model.OHLCV{}, err
	}
	bar := model.OHLCV{Time: t}
	for _, c := range []struct {
		idx int
		dst *float64
	}{
		{l.open, &bar.Open}, {l.high, &bar.High}, {l.low, &bar.Low}, {l.close, &bar.Close},
	} {
		v, err := strconv.ParseFloat(field(c.idx), 64)
		if err != nil {
			return model.OHLCV{}, fmt.Errorf("bad price %q", field(c.idx))
		}
		*c.dst = v
	}
	if s := field(l.volume); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			bar.Volume = v
		}
	}
	return bar, nil
}

// parseCSVTime accepts the common layouts and unix seconds. Times without a
// zone are taken as UTC.
func parseCSVTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
