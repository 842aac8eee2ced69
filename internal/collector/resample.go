package collector

import (
	"time"

	"PatternRank/internal/model"
)

// BucketFunc maps a bar time to the start of the bucket it belongs to.
type BucketFunc func(t time.Time) time.Time

// HourBucket groups bars into n-hour windows counted from local midnight.
func HourBucket(hours int) BucketFunc {
	return func(t time.Time) time.Time {
		y, m, d := t.Date()
		midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		h := t.Sub(midnight) / time.Hour
		return midnight.Add((h / time.Duration(hours)) * time.Duration(hours) * time.Hour)
	}
}

// ISOWeekBucket groups bars by ISO week, starting on Monday.
func ISOWeekBucket(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Resample aggregates chronologically ordered bars: first open, max high, min low,
// last close, summed volume. Each output bar is stamped with its bucket start.
func Resample(bars []model.OHLCV, bucket BucketFunc) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	var curKey time.Time
	for i, b := range bars {
		key := bucket(b.Time)
		if i == 0 || !key.Equal(curKey) {
			if i > 0 {
				out = append(out, cur)
			}
			curKey = key
			cur = model.OHLCV{Time: key, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}
