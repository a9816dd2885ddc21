package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	ReviewDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "review_decisions_total", Help: "Review transitions applied",
	}, []string{"subject", "decision"})
	LedgerMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "ledger_mutations_total", Help: "Point ledger credits and adjustments",
	}, []string{"op"})
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal", Name: "notifications_total", Help: "Notification delivery attempts",
	}, []string{"kind", "result"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portal", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, ReviewDecisions, LedgerMutations, Notifications, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRequest(method, route, status string, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func Review(subject, decision string) { ReviewDecisions.WithLabelValues(subject, decision).Inc() }

func Ledger(op string) { LedgerMutations.WithLabelValues(op).Inc() }

func Notification(kind string, ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	Notifications.WithLabelValues(kind, result).Inc()
}
