// Package metrics exposes Prometheus counters for bookmark traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

const namespace = "marks"

// Metrics holds every collector of the process on a private registry, so
// building it twice (tests) never hits a duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	BookmarksInserted *prometheus.CounterVec
	InsertsRejected   *prometheus.CounterVec
	InsertsFailed     prometheus.Counter
	Queries           *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	QueryResults      prometheus.Histogram
}

// New creates and registers the collectors, including Go runtime and process stats.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.BookmarksInserted = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookmarks_inserted_total",
		Help:      "Bookmarks written to the store",
	}, []string{"category"})
	m.InsertsRejected = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insert_rejected_total",
		Help:      "Insert submissions rejected before any write",
	}, []string{"reason"})
	m.InsertsFailed = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insert_failed_total",
		Help:      "Inserts that reached the store and failed",
	})
	m.Queries = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queries_total",
		Help:      "Category queries by outcome",
	}, []string{"category", "result"})
	m.QueryDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Time spent querying one category",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	})
	m.QueryResults = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_results",
		Help:      "Bookmarks returned per successful query",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Inserted(c domain.Category) {
	m.BookmarksInserted.WithLabelValues(c.String()).Inc()
}

func (m *Metrics) InsertRejected(reason string) {
	m.InsertsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) InsertFailed() {
	m.InsertsFailed.Inc()
}

func (m *Metrics) Queried(c domain.Category, ok bool, took time.Duration, results int) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Queries.WithLabelValues(c.String(), result).Inc()
	m.QueryDuration.Observe(took.Seconds())
	if ok {
		m.QueryResults.Observe(float64(results))
	}
}
