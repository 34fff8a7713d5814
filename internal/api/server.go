// Package api implements the palletpack HTTP service.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"palletpack/internal/auth"
	"palletpack/internal/config"
	"palletpack/internal/integrations/extopt"
	"palletpack/internal/opt"
	"palletpack/internal/store"
	"palletpack/internal/webhooks"
)

type Server struct {
	Store   store.Store
	Solver  *opt.Solver
	Pub     *webhooks.Publisher
	Queue   webhooks.Queue
	Auth    *auth.Verifier
	Broker  EventBroker
	Log     *zap.Logger
	Limiter *rate.Limiter
	Config  *config.Config
}

// NewServer wires the service from cfg. Without a redis URL, or when redis
// is unreachable, events stay in process.
func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ext, err := extopt.FromConfig(cfg.Optimizer, log.Named("extopt"))
	if err != nil {
		return nil, fmt.Errorf("external optimizer: %w", err)
	}
	verifier, err := auth.NewVerifier(cfg.Auth.Mode, cfg.Auth.HMACSecret)
	if err != nil {
		return nil, err
	}

	var broker EventBroker = NewBroker()
	if cfg.Redis.URL != "" {
		rb, err := NewRedisBroker(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis broker unavailable, using in-memory broker", zap.Error(err))
		} else {
			broker = rb
		}
	}

	subs := make([]webhooks.Subscription, 0, len(cfg.Webhooks.Subscriptions))
	for _, s := range cfg.Webhooks.Subscriptions {
		subs = append(subs, webhooks.Subscription{URL: s.URL, Secret: s.Secret, Events: s.Events})
	}
	queue := webhooks.NewMemoryQueue()

	s := &Server{
		Store: st,
		Solver: opt.NewSolver(ext, log.Named("solver"), opt.WithLimits(opt.Limits{
			BruteForceMaxItems: cfg.Limits.BruteForceMaxItems,
			DPMaxCells:         cfg.Limits.DPMaxCells,
		})),
		Pub:    webhooks.NewPublisher(queue, subs, log.Named("webhooks")),
		Queue:  queue,
		Auth:   verifier,
		Broker: broker,
		Log:    log,
		Config: cfg,
	}
	if cfg.Server.RateRPS > 0 {
		s.Limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateRPS), cfg.Server.RateBurst)
	}
	return s, nil
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Queue, s.Config.Webhooks.MaxAttempts, s.Log.Named("webhooks"))
}

// Close releases the store and broker connections.
func (s *Server) Close() error {
	var errs []error
	if c, ok := s.Store.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.Broker.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) readHeaderTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.ReadHeaderTimeout > 0 {
		return s.Config.Server.ReadHeaderTimeout
	}
	return 5 * time.Second
}
