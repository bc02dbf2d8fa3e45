package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every pipeline metric. A run is one-shot, so nothing is
// scraped; the registry is pushed to a Pushgateway at the end instead.
var Registry = prometheus.NewRegistry()

var (
	PagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_pages_total",
			Help: "Listing pages requested, by result (ok, empty, failed)",
		},
		[]string{"result"},
	)

	PageCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_page_cache_hits_total",
			Help: "Listing pages served from the page cache",
		},
	)

	CardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_cards_total",
			Help: "Product cards seen, by result (extracted, skipped)",
		},
		[]string{"result"},
	)

	RowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_dropped_total",
			Help: "Rows removed by the transform, by stage",
		},
		[]string{"stage"},
	)

	CleanRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "etl_clean_rows",
			Help: "Rows in the clean table of the last run",
		},
	)

	SinkWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_sink_writes_total",
			Help: "Sink write attempts, by sink and result (success, failure)",
		},
		[]string{"sink", "result"},
	)

	RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "etl_run_duration_seconds",
			Help: "Wall time of the last run",
		},
	)
)

func init() {
	Registry.MustRegister(PagesTotal, PageCacheHits, CardsTotal, RowsDropped, CleanRows, SinkWrites, RunDuration)
}

func RecordSink(sink string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SinkWrites.WithLabelValues(sink, result).Inc()
}

// Push sends the current registry contents to a Pushgateway under job.
func Push(ctx context.Context, gatewayURL, job string) error {
	return push.New(gatewayURL, job).
		Gatherer(Registry).
		PushContext(ctx)
}
