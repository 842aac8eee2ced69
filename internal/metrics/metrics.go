package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RankingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternrank_runs_total",
			Help: "Total number of ranking runs",
		},
		[]string{"news_filter"},
	)

	PatternOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patternrank_pattern_outcomes_total",
			Help: "Pattern evaluations by outcome",
		},
		[]string{"outcome"},
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "patternrank_run_duration_seconds",
			Help:    "Duration of a full ranking run",
			Buckets: prometheus.DefBuckets,
		},
	)

	SeriesBars = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "patternrank_series_bars",
			Help: "Number of bars in the most recently loaded price series",
		},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
