package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// SearchMetrics holds the Prometheus instruments for search runs.
type SearchMetrics struct {
	Attempts      prometheus.Counter
	Searches      *prometheus.CounterVec
	SearchTime    prometheus.Histogram
	ActiveWorkers prometheus.Gauge
}

// NewSearchMetrics registers the search instruments on reg.
func NewSearchMetrics(reg prometheus.Registerer, namespace string) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of candidates hashed",
		}),
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Finished searches by mode and terminal status",
		}, []string{"mode", "status"}),
		SearchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall-clock time of finished searches",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Workers of the search currently running",
		}),
	}
}

func (m *SearchMetrics) SearchStarted(workers int) {
	m.ActiveWorkers.Set(float64(workers))
}

// SearchFinished records the outcome of res.
func (m *SearchMetrics) SearchFinished(res *domain.SearchResult) {
	m.ActiveWorkers.Set(0)
	m.Attempts.Add(float64(res.Attempts))
	m.Searches.WithLabelValues(string(res.Mode), string(res.Status)).Inc()
	m.SearchTime.Observe(res.Elapsed.Seconds())
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
