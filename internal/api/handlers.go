package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"palletpack/internal/integrations/extopt"
	"palletpack/internal/model"
	"palletpack/internal/opt"
	"palletpack/internal/store"
	"palletpack/internal/webhooks"
)

// SolveHandler handles POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.principal(w, r); !ok {
		return
	}
	var req model.SolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	alg, err := validateSolveRequest(&req)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}

	var inst model.ProblemInstance
	if req.DatasetID != "" {
		ds, err := s.Store.GetDataset(r.Context(), req.DatasetID)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Dataset not found", err.Error(), r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Load dataset failed", err.Error(), r.URL.Path)
			return
		}
		req.DatasetID = ds.ID
		inst = ds.Instance(alg)
	} else {
		inst = *req.Instance
		inst.Algorithm = alg
	}

	sol, err := s.Solver.Solve(r.Context(), inst)
	resp := model.SolveResponse{
		RunID:     uuid.New().String(),
		DatasetID: req.DatasetID,
		Algorithm: alg,
		Solution:  model.NewSolutionOut(sol),
	}
	var exitErr *opt.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		resp.Warning = err.Error() + "; the solution is unverified"
		s.publishSolve(r.Context(), resp, len(inst.Items))
		writeJSON(w, http.StatusBadGateway, resp)
		return
	case errors.Is(err, opt.ErrLimitExceeded):
		writeProblem(w, http.StatusUnprocessableEntity, "Instance too large", err.Error(), r.URL.Path)
		return
	case errors.Is(err, model.ErrInvalidInstance), errors.Is(err, opt.ErrUnknownAlgorithm):
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	case errors.Is(err, opt.ErrNoExternalOptimizer):
		writeProblem(w, http.StatusServiceUnavailable, "External optimizer unavailable", err.Error(), r.URL.Path)
		return
	case errors.Is(err, extopt.ErrNoOutput), errors.Is(err, extopt.ErrMalformedOutput):
		writeProblem(w, http.StatusBadGateway, "External optimizer failed", err.Error(), r.URL.Path)
		return
	default:
		writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		return
	}
	s.publishSolve(r.Context(), resp, len(inst.Items))
	writeJSON(w, http.StatusOK, resp)
}

// publishSolve fans a finished solve out to stream subscribers and webhooks.
func (s *Server) publishSolve(ctx context.Context, resp model.SolveResponse, items int) {
	ev := model.SolveEvent{
		RunID:       resp.RunID,
		DatasetID:   resp.DatasetID,
		Algorithm:   resp.Algorithm,
		Items:       items,
		TotalWeight: resp.Solution.TotalWeight,
		TotalProfit: resp.Solution.TotalProfit,
		ElapsedMs:   resp.Solution.ElapsedMs,
		Unverified:  resp.Solution.Unverified,
		TS:          time.Now().UTC().Format(time.RFC3339),
	}
	sse := SSEEvent{Type: webhooks.EventSolveCompleted, Data: ev}
	s.Broker.Publish(TopicSolves, sse)
	if ev.DatasetID != "" {
		s.Broker.Publish(DatasetTopic(ev.DatasetID), sse)
	}
	s.Pub.Emit(ctx, webhooks.EventSolveCompleted, ev)
	s.Log.Info("solve completed",
		zap.String("runId", ev.RunID),
		zap.String("datasetId", ev.DatasetID),
		zap.Stringer("algorithm", ev.Algorithm),
		zap.Int("profit", ev.TotalProfit),
		zap.Float64("elapsedMs", ev.ElapsedMs))
}

// AlgorithmsHandler handles GET /v1/algorithms
func (s *Server) AlgorithmsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	type algorithmOut struct {
		Number int    `json:"number"`
		Name   string `json:"name"`
		Title  string `json:"title"`
		Exact  bool   `json:"exact"`
	}
	items := make([]algorithmOut, 0, len(model.Algorithms))
	for _, a := range model.Algorithms {
		items = append(items, algorithmOut{
			Number: int(a),
			Name:   a.String(),
			Title:  a.Title(),
			Exact:  a != model.GreedyApproximation,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// DatasetsHandler handles GET/POST /v1/datasets
func (s *Server) DatasetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/datasets" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if _, ok := s.principal(w, r); !ok {
			return
		}
		items, err := s.Store.ListDatasets(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List datasets failed", err.Error(), r.URL.Path)
			return
		}
		if items == nil {
			items = []model.DatasetInfo{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case http.MethodPost:
		if _, ok := s.admin(w, r); !ok {
			return
		}
		var ds model.Dataset
		if err := decodeJSON(w, r, &ds); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateDataset(&ds); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid dataset", err.Error(), r.URL.Path)
			return
		}
		id, err := s.Store.SaveDataset(r.Context(), ds)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save dataset failed", err.Error(), r.URL.Path)
			return
		}
		ds.ID = id
		w.Header().Set("Location", "/v1/datasets/"+id)
		writeJSON(w, http.StatusCreated, ds.Info())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// DatasetByIDHandler handles GET /v1/datasets/{id} and
// GET /v1/datasets/{id}/events/stream
func (s *Server) DatasetByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/datasets/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if rest == r.URL.Path || id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.principal(w, r); !ok {
		return
	}
	ds, err := s.Store.GetDataset(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Dataset not found", err.Error(), r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Load dataset failed", err.Error(), r.URL.Path)
		return
	}
	switch {
	case len(parts) == 1:
		writeJSON(w, http.StatusOK, ds)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream":
		s.streamEvents(w, r, DatasetTopic(ds.ID))
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

// EventsStreamHandler handles GET /v1/events/stream (SSE of every solve)
func (s *Server) EventsStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.principal(w, r); !ok {
		return
	}
	s.streamEvents(w, r, TopicSolves)
}

const heartbeatEvery = 15 * time.Second

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(topic)
	defer s.Broker.Unsubscribe(topic, ch)

	heartbeat := func() {
		fmt.Fprintf(w, "event: heartbeat\n")
		fmt.Fprintf(w, "data: {\"topic\":%q,\"ts\":%q}\n\n", topic, time.Now().UTC().Format(time.RFC3339))
		flusher.Flush()
	}
	heartbeat()
	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, evt)
			flusher.Flush()
		case <-ticker.C:
			heartbeat()
		}
	}
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using Postgres store
	if pg, ok := s.Store.(store.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Admin: webhook deliveries list and retry
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/webhook-deliveries" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.admin(w, r); !ok {
		return
	}
	status := r.URL.Query().Get("status")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil || limit < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", v, r.URL.Path)
			return
		}
	}
	items, err := s.Queue.List(r.Context(), status, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) WebhookDeliveryRetryHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v1/admin/webhook-deliveries/") || !strings.HasSuffix(r.URL.Path, "/retry") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.admin(w, r); !ok {
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/admin/webhook-deliveries/"), "/retry")
	if err := s.Queue.Retry(r.Context(), id); err != nil {
		writeProblem(w, http.StatusNotFound, "Retry delivery failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": 1})
}
