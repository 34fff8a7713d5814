package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"palletpack/internal/model"
)

// Memory is a simple in-memory store used for tests and when no dataset
// directory or DATABASE_URL is configured.
type Memory struct {
	mu    sync.Mutex
	data  map[string]model.Dataset
	order []string // insertion order
}

func NewMemory(seed ...model.Dataset) *Memory {
	m := &Memory{data: map[string]model.Dataset{}}
	for _, ds := range seed {
		if ds.ID == "" {
			ds.ID = uuid.New().String()
		}
		m.put(ds)
	}
	return m
}

func (m *Memory) put(ds model.Dataset) {
	if _, ok := m.data[ds.ID]; !ok {
		m.order = append(m.order, ds.ID)
	}
	m.data[ds.ID] = cloneDataset(ds)
}

func (m *Memory) ListDatasets(ctx context.Context) ([]model.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DatasetInfo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.data[id].Info())
	}
	return out, nil
}

func (m *Memory) GetDataset(ctx context.Context, id string) (model.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.data[id]
	if !ok {
		return model.Dataset{}, fmt.Errorf("dataset %q: %w", id, ErrNotFound)
	}
	return cloneDataset(ds), nil
}

func (m *Memory) SaveDataset(ctx context.Context, ds model.Dataset) (string, error) {
	if err := validateDataset(ds); err != nil {
		return "", err
	}
	ds.ID = uuid.New().String()
	if ds.Name == "" {
		ds.Name = ds.ID
	}
	m.mu.Lock()
	m.put(ds)
	m.mu.Unlock()
	return ds.ID, nil
}

func cloneDataset(ds model.Dataset) model.Dataset {
	ds.Items = append([]model.Item(nil), ds.Items...)
	return ds
}
