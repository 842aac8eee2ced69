package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesMetrics(t *testing.T) {
	SeriesBars.Set(42)
	RankingRunsTotal.WithLabelValues("true").Inc()
	if got := testutil.ToFloat64(SeriesBars); got != 42 {
		t.Errorf("expected 42, got %v", got)
	}

	srv := httptest.NewServer(Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"patternrank_series_bars 42", `patternrank_runs_total{news_filter="true"}`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}
