package opt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"palletpack/internal/integrations"
	"palletpack/internal/metrics"
	"palletpack/internal/model"
)

// ErrNoExternalOptimizer is returned by External when no optimizer is
// configured.
var ErrNoExternalOptimizer = errors.New("no external optimizer configured")

// ExitError reports a non-zero exit from the external optimizer. The
// solution returned alongside it was parsed from whatever output existed and
// must not be trusted.
type ExitError struct {
	Optimizer string
	Code      int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("external optimizer %s exited with code %d", e.Optimizer, e.Code)
}

// External runs an integrations.ExternalOptimizer. The optimizer exchanges
// data through fixed files, so runs are serialized.
type External struct {
	mu  sync.Mutex
	ext integrations.ExternalOptimizer
}

func NewExternal(ext integrations.ExternalOptimizer) *External {
	return &External{ext: ext}
}

func (e *External) Solve(ctx context.Context, inst model.ProblemInstance) (model.Solution, error) {
	if e.ext == nil {
		return model.Solution{}, ErrNoExternalOptimizer
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ext.PrepareInput(inst); err != nil {
		metrics.ExternalExits.WithLabelValues("error").Inc()
		return model.Solution{}, err
	}
	code, err := e.ext.Invoke(ctx)
	if err != nil {
		metrics.ExternalExits.WithLabelValues("error").Inc()
		return model.Solution{}, err
	}
	sol, perr := e.ext.ParseOutput(inst)
	if code != 0 {
		metrics.ExternalExits.WithLabelValues("nonzero").Inc()
		sol.Unverified = true
		exit := &ExitError{Optimizer: e.ext.Name(), Code: code}
		if perr != nil {
			return sol, errors.Join(exit, perr)
		}
		return sol, exit
	}
	metrics.ExternalExits.WithLabelValues("ok").Inc()
	if perr != nil {
		return model.Solution{}, perr
	}
	return sol, nil
}
