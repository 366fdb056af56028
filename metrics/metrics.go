package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegeportal_http_requests_total",
			Help: "Total number of HTTP requests by route group, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collegeportal_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	APIPanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegeportal_api_panics_recovered_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
		[]string{"method", "route"},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collegeportal_rate_limited_requests_total",
			Help: "Total number of requests rejected by the per-IP rate limiter",
		},
	)

	DatabaseConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegeportal_database_connect_attempts_total",
			Help: "Total number of MongoDB connection attempts by result",
		},
		[]string{"result"},
	)

	DatabaseConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collegeportal_database_connected",
			Help: "1 if the startup MongoDB connection succeeded, 0 otherwise",
		},
	)
)

// RecordRequest records one served HTTP request
func RecordRequest(route, method string, status int, durationSec float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(durationSec)
}

// RecordDatabaseConnect records the outcome of the startup connection attempt
func RecordDatabaseConnect(err error) {
	if err != nil {
		DatabaseConnectAttempts.WithLabelValues("failure").Inc()
		DatabaseConnected.Set(0)
		return
	}
	DatabaseConnectAttempts.WithLabelValues("success").Inc()
	DatabaseConnected.Set(1)
}
