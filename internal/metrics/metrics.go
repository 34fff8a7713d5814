package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for palletpack
	Registry = prometheus.NewRegistry()

	// Solves counts finished solves by algorithm and status (ok, error, unverified)
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "palletpack_solves_total", Help: "Solves by algorithm and status."},
		[]string{"algorithm", "status"},
	)
	// SolveDuration records strategy run time in seconds
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "palletpack_solve_duration_seconds",
			Help:    "Solve duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"algorithm"},
	)
	// SolveProfit is the profit of the last successful solve per algorithm
	SolveProfit = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "palletpack_solve_profit", Help: "Profit of the most recent solve."},
		[]string{"algorithm"},
	)
	// ExternalExits counts external optimizer runs by result (ok, nonzero, error)
	ExternalExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "palletpack_external_optimizer_exits_total", Help: "External optimizer runs by result."},
		[]string{"result"},
	)

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// ObserveSolve records one finished solve.
func ObserveSolve(algorithm, status string, elapsed time.Duration, profit int) {
	Solves.WithLabelValues(algorithm, status).Inc()
	SolveDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	if status != "error" {
		SolveProfit.WithLabelValues(algorithm).Set(float64(profit))
	}
}

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Solves, SolveDuration, SolveProfit, ExternalExits)
		Registry.MustRegister(HTTPRequests, HTTPDuration)
		Registry.MustRegister(WebhookDeliveries, WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
