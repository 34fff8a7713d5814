package integrations

import (
	"context"

	"palletpack/internal/model"
)

// ExternalOptimizer is the contract for an out-of-process optimizer that
// exchanges the problem and its answer through files.
type ExternalOptimizer interface {
	Name() string
	// PrepareInput serializes inst where the optimizer expects its input.
	PrepareInput(inst model.ProblemInstance) error
	// Invoke runs the optimizer to completion and returns its exit status.
	// err is reserved for failures to run it at all.
	Invoke(ctx context.Context) (exitCode int, err error)
	// ParseOutput reads the optimizer's answer, resolving identifiers
	// against inst.Items.
	ParseOutput(inst model.ProblemInstance) (model.Solution, error)
}
