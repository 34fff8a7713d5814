package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"palletpack/internal/metrics"
)

// Routes builds the HTTP handler tree with middleware applied.
func (s *Server) Routes() http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()

	// Solving
	mux.HandleFunc("/v1/solve", s.SolveHandler)
	mux.HandleFunc("/v1/algorithms", s.AlgorithmsHandler)

	// Datasets
	mux.HandleFunc("/v1/datasets", s.DatasetsHandler)
	mux.HandleFunc("/v1/datasets/", s.DatasetByIDHandler) // includes /events/stream

	// Streams
	mux.HandleFunc("/v1/events/stream", s.EventsStreamHandler)
	mux.HandleFunc("/v1/ws", s.WSHandler)

	// Admin
	mux.HandleFunc("/v1/admin/webhook-deliveries", s.WebhookDeliveriesHandler)
	mux.HandleFunc("/v1/admin/webhook-deliveries/", s.WebhookDeliveryRetryHandler)

	// Health, metrics, docs
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", s.OpenAPIJSONHandler)
	mux.HandleFunc("/docs", s.DocsHandler)
	mux.HandleFunc("/debug/vars", s.DebugJSON)

	return s.logMiddleware(s.rateLimit(mux))
}

// HTTPServer returns an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.Config.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: s.readHeaderTimeout(),
	}
}
