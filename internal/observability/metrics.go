package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	scansTotal         *prometheus.CounterVec
	scanLatencySeconds *prometheus.HistogramVec
	smsSendsTotal      *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySecs    *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the attendance core.
func RegisterMetrics() {
	registerOnce.Do(func() {
		scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_scans_total",
			Help: "Total number of QR scans processed, by resulting action and outcome.",
		}, []string{"action", "result"})

		scanLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_scan_latency_seconds",
			Help:    "Latency distribution for scan processing.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"action"})

		smsSendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sms_sends_total",
			Help: "Total number of SMS delivery outcomes, by terminal status.",
		}, []string{"status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teacher_notifications_total",
			Help: "Total number of in-app teacher notifications created, by type.",
		}, []string{"type"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of handled HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"})

		httpLatencySecs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for handled HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(scansTotal, scanLatencySeconds, smsSendsTotal, notificationsTotal,
			httpRequestsTotal, httpLatencySecs)
	})
}

// Scans exposes the counter for processed scans.
func Scans() *prometheus.CounterVec {
	RegisterMetrics()
	return scansTotal
}

// ScanLatency exposes the latency histogram for scan processing.
func ScanLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return scanLatencySeconds
}

// SMSSends exposes the counter for SMS delivery outcomes.
func SMSSends() *prometheus.CounterVec {
	RegisterMetrics()
	return smsSendsTotal
}

// Notifications exposes the counter for created teacher notifications.
func Notifications() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// HTTPRequests exposes the counter for handled HTTP requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for handled HTTP requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySecs
}
