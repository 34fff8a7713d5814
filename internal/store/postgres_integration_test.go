//go:build postgres_integration

package store

import (
	"errors"
	"os"
	"testing"

	"palletpack/internal/model"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer p.Close()
	if err := p.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := p.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	in := model.Dataset{Name: "it", Capacity: 10, Items: []model.Item{{ID: 1, Weight: 6, Profit: 10}, {ID: 2, Weight: 5, Profit: 9}}}
	id, err := p.SaveDataset(t.Context(), in)
	if err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	got, err := p.GetDataset(t.Context(), id)
	if err != nil {
		t.Fatalf("GetDataset: %v", err)
	}
	if got.Capacity != 10 || len(got.Items) != 2 || got.Items[1].ID != 2 {
		t.Fatalf("unexpected dataset: %+v", got)
	}
	if _, err := p.GetDataset(t.Context(), "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := p.ListDatasets(t.Context()); err != nil {
		t.Fatalf("ListDatasets: %v", err)
	}
}
