package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "school", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	DashboardLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school", Name: "dashboard_lookups_total", Help: "Parent dashboard lookups by outcome",
	}, []string{"outcome"})
	AdminWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "school", Name: "admin_writes_total", Help: "Admin create/update/delete by resource and outcome",
	}, []string{"resource", "op", "outcome"})
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "school", Name: "bot_updates_total", Help: "Processed telegram updates",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "school", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, DashboardLookups, AdminWrites, BotUpdates, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
