package store

import (
	"context"
	"errors"

	"palletpack/internal/model"
)

// Store holds the datasets (truck capacity plus candidate pallets) that
// solves run against. Solve results are never stored.
type Store interface {
	ListDatasets(ctx context.Context) ([]model.DatasetInfo, error)
	GetDataset(ctx context.Context, id string) (model.Dataset, error)
	// SaveDataset stores ds under a new id and returns it. ds.ID is ignored.
	SaveDataset(ctx context.Context, ds model.Dataset) (string, error)
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")

// validateDataset applies the instance rules to a dataset before it is saved.
func validateDataset(ds model.Dataset) error {
	return ds.Instance(0).Validate()
}
