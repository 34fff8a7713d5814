package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"palletpack/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id         uuid PRIMARY KEY,
    name       text NOT NULL DEFAULT '',
    capacity   integer NOT NULL CHECK (capacity >= 0),
    created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pallets (
    dataset_id uuid NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    seq        integer NOT NULL,
    pallet_id  integer NOT NULL CHECK (pallet_id >= 1),
    weight     integer NOT NULL CHECK (weight >= 0),
    profit     integer NOT NULL CHECK (profit >= 0),
    PRIMARY KEY (dataset_id, seq)
);
`

// Postgres keeps datasets in two tables; pallet order is kept in seq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *Postgres) ListDatasets(ctx context.Context) ([]model.DatasetInfo, error) {
	rows, err := p.db.QueryContext(ctx, `
SELECT d.id::text, d.name, d.capacity, COUNT(pl.seq)
FROM datasets d LEFT JOIN pallets pl ON pl.dataset_id = d.id
GROUP BY d.id, d.name, d.capacity, d.created_at
ORDER BY d.created_at, d.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []model.DatasetInfo{}
	for rows.Next() {
		var di model.DatasetInfo
		if err := rows.Scan(&di.ID, &di.Name, &di.Capacity, &di.Items); err != nil {
			return nil, err
		}
		out = append(out, di)
	}
	return out, rows.Err()
}

func (p *Postgres) GetDataset(ctx context.Context, id string) (model.Dataset, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Dataset{}, fmt.Errorf("dataset %q: %w", id, ErrNotFound)
	}
	var ds model.Dataset
	err := p.db.QueryRowContext(ctx, `SELECT id::text, name, capacity FROM datasets WHERE id=$1`, id).
		Scan(&ds.ID, &ds.Name, &ds.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Dataset{}, fmt.Errorf("dataset %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Dataset{}, err
	}

	rows, err := p.db.QueryContext(ctx, `SELECT pallet_id, weight, profit FROM pallets WHERE dataset_id=$1 ORDER BY seq`, id)
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() { _ = rows.Close() }()
	ds.Items = []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Weight, &it.Profit); err != nil {
			return model.Dataset{}, err
		}
		ds.Items = append(ds.Items, it)
	}
	return ds, rows.Err()
}

func (p *Postgres) SaveDataset(ctx context.Context, ds model.Dataset) (string, error) {
	if err := validateDataset(ds); err != nil {
		return "", err
	}
	id := uuid.New()
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO datasets (id, name, capacity) VALUES ($1,$2,$3)`, id, ds.Name, ds.Capacity); err != nil {
		return "", err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pallets (dataset_id, seq, pallet_id, weight, profit) VALUES ($1,$2,$3,$4,$5)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()
	for i, it := range ds.Items {
		if _, err := stmt.ExecContext(ctx, id, i, it.ID, it.Weight, it.Profit); err != nil {
			return "", fmt.Errorf("pallet %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id.String(), nil
}
