// Package metrics exposes Prometheus counters for the Garmin-facing flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MetricFetches counts per-metric fetch outcomes against the Garmin API.
	MetricFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garmin_metric_fetch_total",
		Help: "Per-metric fetch outcomes against the Garmin API.",
	}, []string{"metric", "outcome"})

	// Logins counts credential exchange outcomes.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garmin_login_total",
		Help: "Credential exchange outcomes.",
	}, []string{"outcome"})

	// Reports counts resolved daily report outcomes.
	Reports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garmin_daily_report_total",
		Help: "Resolved daily report outcomes.",
	}, []string{"outcome"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
