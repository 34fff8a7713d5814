package api

import (
	"net/http"
	"time"

	"palletpack/internal/buildinfo"
)

// DebugJSON reports build details and a summary of the active settings.
// Secrets and connection strings are reported only as present or absent.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.admin(w, r); !ok {
		return
	}
	cfg := s.Config
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"addr":               cfg.Addr(),
			"authMode":           cfg.Auth.Mode,
			"datasetsBackend":    cfg.Datasets.Backend,
			"rateRps":            cfg.Server.RateRPS,
			"rateBurst":          cfg.Server.RateBurst,
			"bruteForceMaxItems": cfg.Limits.BruteForceMaxItems,
			"dpMaxCells":         cfg.Limits.DPMaxCells,
			"optimizerCommand":   cfg.Optimizer.Command,
			"webhookMaxAttempts": cfg.Webhooks.MaxAttempts,
			"webhookSubscribers": len(cfg.Webhooks.Subscriptions),
			"hasDatabaseUrl":     cfg.Database.URL != "",
			"hasRedisUrl":        cfg.Redis.URL != "",
		},
	}
	writeJSON(w, http.StatusOK, info)
}
