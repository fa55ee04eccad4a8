package sim

import "github.com/prometheus/client_golang/prometheus"

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relmap_sim_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relmap_sim_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ciCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relmap_sim_cis_total",
			Help: "Total configuration items in the store",
		},
	)

	relCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relmap_sim_rels_total",
			Help: "Total relationship records in the store",
		},
	)
)

func init() {
	prometheus.MustRegister(requestDuration, requestsTotal, ciCount, relCount)
}
