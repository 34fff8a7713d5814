package store

import (
	"context"
	"fmt"

	"palletpack/internal/config"
)

// Open returns the dataset store selected by cfg.Datasets.Backend. The
// postgres backend runs Migrate unless cfg.Database.Migrate is false.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Datasets.Backend {
	case "", "csv":
		return NewCSV(cfg.Datasets.Dir), nil
	case "memory":
		return NewMemory(), nil
	case "postgres":
		pg, err := NewPostgres(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown dataset backend %q", cfg.Datasets.Backend)
	}
}
