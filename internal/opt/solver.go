// Package opt holds the knapsack strategies and the Solver that dispatches
// between them.
//
// BruteForce and Dynamic are exact. Greedy is a heuristic and marks its
// result Approximate. External delegates to an out-of-process optimizer.
// The pure strategies run to completion once started and ignore ctx.
package opt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"palletpack/internal/integrations"
	"palletpack/internal/metrics"
	"palletpack/internal/model"
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm tag with no strategy.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrLimitExceeded is returned when an instance is too large for the
	// configured limits of the requested strategy.
	ErrLimitExceeded = errors.New("instance exceeds solver limits")
)

// Strategy solves one problem instance.
type Strategy interface {
	Solve(ctx context.Context, inst model.ProblemInstance) (model.Solution, error)
}

// Limits bounds the exponential and pseudo-polynomial strategies. Zero
// disables a limit.
type Limits struct {
	BruteForceMaxItems int
	DPMaxCells         int64
}

// Check reports whether inst may be solved with alg under l.
func (l Limits) Check(alg model.Algorithm, inst model.ProblemInstance) error {
	switch alg {
	case model.BruteForce:
		if l.BruteForceMaxItems > 0 && len(inst.Items) > l.BruteForceMaxItems {
			return fmt.Errorf("%w: brute force allows at most %d items, got %d", ErrLimitExceeded, l.BruteForceMaxItems, len(inst.Items))
		}
	case model.DynamicProgramming:
		if l.DPMaxCells <= 0 {
			return nil
		}
		// divide first: (n+1)*(capacity+1) can overflow
		rows := int64(len(inst.Items) + 1)
		if int64(inst.Capacity) >= l.DPMaxCells || rows > l.DPMaxCells/(int64(inst.Capacity)+1) {
			return fmt.Errorf("%w: dp table of %d x %d cells exceeds limit %d", ErrLimitExceeded, rows, int64(inst.Capacity)+1, l.DPMaxCells)
		}
	}
	return nil
}

type Option func(*Solver)

func WithLimits(l Limits) Option { return func(s *Solver) { s.limits = l } }

// WithStrategy replaces the strategy registered for alg.
func WithStrategy(alg model.Algorithm, st Strategy) Option {
	return func(s *Solver) { s.strategies[alg] = st }
}

// Solver dispatches instances to strategies. It keeps no per-run state and
// is safe for concurrent use.
type Solver struct {
	strategies map[model.Algorithm]Strategy
	limits     Limits
	log        *zap.Logger
}

// NewSolver registers the four strategies. ext may be nil, in which case the
// external algorithm reports ErrNoExternalOptimizer.
func NewSolver(ext integrations.ExternalOptimizer, log *zap.Logger, opts ...Option) *Solver {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Solver{
		strategies: map[model.Algorithm]Strategy{
			model.BruteForce:          BruteForce{},
			model.DynamicProgramming:  Dynamic{},
			model.GreedyApproximation: Greedy{},
			model.ExternalOptimizer:   NewExternal(ext),
		},
		log: log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Limits returns the configured limits.
func (s *Solver) Limits() Limits { return s.limits }

// Solve runs the strategy named by inst.Algorithm. An instance with zero
// capacity or no items yields an empty solution without running anything.
// On an *ExitError the returned Solution is still populated and flagged
// Unverified.
func (s *Solver) Solve(ctx context.Context, inst model.ProblemInstance) (model.Solution, error) {
	alg := inst.Algorithm
	st, ok := s.strategies[alg]
	if !ok {
		return model.Solution{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	if err := inst.Validate(); err != nil {
		return model.Solution{}, err
	}
	if inst.Capacity == 0 || len(inst.Items) == 0 {
		return model.Solution{Approximate: alg == model.GreedyApproximation}, nil
	}
	if err := s.limits.Check(alg, inst); err != nil {
		return model.Solution{}, err
	}

	start := time.Now()
	sol, err := st.Solve(ctx, inst)
	sol.Elapsed = time.Since(start)

	status := "ok"
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		status = "unverified"
		s.log.Warn("external optimizer exited non-zero", zap.Int("exitCode", exitErr.Code), zap.Int("items", len(sol.Items)))
	case err != nil:
		status = "error"
		s.log.Error("solve failed", zap.Stringer("algorithm", alg), zap.Error(err))
	default:
		s.log.Debug("solve finished",
			zap.Stringer("algorithm", alg),
			zap.Int("items", len(inst.Items)),
			zap.Int("capacity", inst.Capacity),
			zap.Int("profit", sol.TotalProfit),
			zap.Duration("elapsed", sol.Elapsed))
	}
	metrics.ObserveSolve(alg.String(), status, sol.Elapsed, sol.TotalProfit)
	return sol, err
}
