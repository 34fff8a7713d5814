package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"palletpack/internal/model"
)

// CSV reads numbered datasets from a directory laid out as
//
//	TruckAndPallets_01.csv  header, then "capacity,pallets"
//	Pallets_01.csv          header, then "id,weight,profit" per pallet
//
// Dataset ids are the two-digit numbers; "1" and "01" name the same one.
type CSV struct {
	dir string
	mu  sync.Mutex
}

func NewCSV(dir string) *CSV { return &CSV{dir: dir} }

func (c *CSV) Dir() string { return c.dir }

func (c *CSV) ListDatasets(ctx context.Context) ([]model.DatasetInfo, error) {
	nums, err := c.numbers()
	if err != nil {
		return nil, err
	}
	out := make([]model.DatasetInfo, 0, len(nums))
	for _, n := range nums {
		ds, err := c.load(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ds.Info())
	}
	return out, nil
}

func (c *CSV) GetDataset(ctx context.Context, id string) (model.Dataset, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 1 {
		return model.Dataset{}, fmt.Errorf("dataset %q: %w", id, ErrNotFound)
	}
	return c.load(n)
}

// SaveDataset writes ds under the next free number.
func (c *CSV) SaveDataset(ctx context.Context, ds model.Dataset) (string, error) {
	if err := validateDataset(ds); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	nums, err := c.numbers()
	if err != nil {
		return "", err
	}
	next := 1
	if len(nums) > 0 {
		next = nums[len(nums)-1] + 1
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}

	pallets := [][]string{{"Pallet", "Weight", "Profit"}}
	for _, it := range ds.Items {
		pallets = append(pallets, []string{strconv.Itoa(it.ID), strconv.Itoa(it.Weight), strconv.Itoa(it.Profit)})
	}
	if err := writeCSV(c.palletsPath(next), pallets); err != nil {
		return "", err
	}
	truck := [][]string{{"Capacity", "Pallets"}, {strconv.Itoa(ds.Capacity), strconv.Itoa(len(ds.Items))}}
	if err := writeCSV(c.truckPath(next), truck); err != nil {
		return "", err
	}
	return datasetID(next), nil
}

func (c *CSV) truckPath(n int) string {
	return filepath.Join(c.dir, fmt.Sprintf("TruckAndPallets_%02d.csv", n))
}

func (c *CSV) palletsPath(n int) string {
	return filepath.Join(c.dir, fmt.Sprintf("Pallets_%02d.csv", n))
}

func datasetID(n int) string { return fmt.Sprintf("%02d", n) }

// numbers returns the dataset numbers that have a truck file, ascending.
func (c *CSV) numbers() ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "TruckAndPallets_*.csv"))
	if err != nil {
		return nil, err
	}
	var nums []int
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "TruckAndPallets_"), ".csv")
		if n, err := strconv.Atoi(base); err == nil && n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums, nil
}

func (c *CSV) load(n int) (model.Dataset, error) {
	id := datasetID(n)
	truck, err := readCSV(c.truckPath(n))
	if err != nil {
		return model.Dataset{}, wrapMissing(id, err)
	}
	if len(truck) == 0 || len(truck[0]) == 0 {
		return model.Dataset{}, fmt.Errorf("dataset %s: truck file has no capacity row", id)
	}
	capacity, err := atoi(truck[0][0])
	if err != nil {
		return model.Dataset{}, fmt.Errorf("dataset %s: capacity: %w", id, err)
	}

	rows, err := readCSV(c.palletsPath(n))
	if err != nil {
		return model.Dataset{}, wrapMissing(id, err)
	}
	ds := model.Dataset{ID: id, Name: "Pallets_" + id, Capacity: capacity, Items: make([]model.Item, 0, len(rows))}
	for i, r := range rows {
		if len(r) < 3 {
			return model.Dataset{}, fmt.Errorf("dataset %s: pallet row %d: want 3 columns, got %d", id, i+1, len(r))
		}
		var vals [3]int
		for j := range vals {
			if vals[j], err = atoi(r[j]); err != nil {
				return model.Dataset{}, fmt.Errorf("dataset %s: pallet row %d: %w", id, i+1, err)
			}
		}
		ds.Items = append(ds.Items, model.Item{ID: vals[0], Weight: vals[1], Profit: vals[2]})
	}
	return ds, nil
}

func wrapMissing(id string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("dataset %s: %w", id, err)
}

// readCSV returns every record after the header line.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return r.ReadAll()
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
