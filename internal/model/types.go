package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Core domain types shared by the solver, the stores and the API.

// ErrInvalidInstance is wrapped by ProblemInstance.Validate failures.
var ErrInvalidInstance = errors.New("invalid problem instance")

// Item is a pallet: an identifier plus the weight it adds to the truck and
// the profit it earns when loaded.
type Item struct {
	ID     int `json:"id" yaml:"id"`
	Weight int `json:"weight" yaml:"weight"`
	Profit int `json:"profit" yaml:"profit"`
}

// Ratio returns profit per unit of weight. A weightless item has an
// infinite ratio regardless of its profit.
func (it Item) Ratio() float64 {
	if it.Weight == 0 {
		return math.Inf(1)
	}
	return float64(it.Profit) / float64(it.Weight)
}

// ProblemInstance is the solver input. Item order is significant: it drives
// tie-breaking in every strategy.
type ProblemInstance struct {
	Capacity  int       `json:"capacity" yaml:"capacity"`
	Items     []Item    `json:"items" yaml:"items"`
	Algorithm Algorithm `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
}

// Validate rejects negative quantities and non-positive ids. Duplicate ids
// are allowed.
func (p ProblemInstance) Validate() error {
	if p.Capacity < 0 {
		return fmt.Errorf("%w: capacity must be >= 0 (got %d)", ErrInvalidInstance, p.Capacity)
	}
	for i, it := range p.Items {
		if it.ID < 1 {
			return fmt.Errorf("%w: items[%d].id must be >= 1 (got %d)", ErrInvalidInstance, i, it.ID)
		}
		if it.Weight < 0 {
			return fmt.Errorf("%w: items[%d].weight must be >= 0 (got %d)", ErrInvalidInstance, i, it.Weight)
		}
		if it.Profit < 0 {
			return fmt.Errorf("%w: items[%d].profit must be >= 0 (got %d)", ErrInvalidInstance, i, it.Profit)
		}
	}
	return nil
}

// Solution is the solver output. Approximate marks heuristic results;
// Unverified marks results read back from an external optimizer that did
// not exit cleanly.
type Solution struct {
	Items       []Item        `json:"items"`
	TotalWeight int           `json:"totalWeight"`
	TotalProfit int           `json:"totalProfit"`
	Elapsed     time.Duration `json:"-"`
	Approximate bool          `json:"approximate,omitempty"`
	Unverified  bool          `json:"unverified,omitempty"`
}

// ElapsedMillis returns the elapsed time in milliseconds rounded to three
// decimals.
func (s Solution) ElapsedMillis() float64 {
	return math.Round(float64(s.Elapsed.Nanoseconds())/1e3) / 1e3
}

// Add appends it and updates the running totals.
func (s *Solution) Add(it Item) {
	s.Items = append(s.Items, it)
	s.TotalWeight += it.Weight
	s.TotalProfit += it.Profit
}

// Dataset is a stored truck capacity with its candidate pallets.
type Dataset struct {
	ID       string `json:"id" yaml:"id,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Items    []Item `json:"items" yaml:"items"`
}

// Instance builds the problem instance for this dataset.
func (d Dataset) Instance(alg Algorithm) ProblemInstance {
	items := make([]Item, len(d.Items))
	copy(items, d.Items)
	return ProblemInstance{Capacity: d.Capacity, Items: items, Algorithm: alg}
}

// Info summarizes the dataset for listings.
func (d Dataset) Info() DatasetInfo {
	return DatasetInfo{ID: d.ID, Name: d.Name, Capacity: d.Capacity, Items: len(d.Items)}
}

type DatasetInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
	Items    int    `json:"items"`
}

// Read models for API requests and responses

type SolveRequest struct {
	DatasetID string           `json:"datasetId,omitempty"`
	Instance  *ProblemInstance `json:"instance,omitempty"`
	Algorithm string           `json:"algorithm"`
}

type SolutionOut struct {
	Items       []Item  `json:"items"`
	TotalWeight int     `json:"totalWeight"`
	TotalProfit int     `json:"totalProfit"`
	ElapsedMs   float64 `json:"elapsedMs"`
	Approximate bool    `json:"approximate,omitempty"`
	Unverified  bool    `json:"unverified,omitempty"`
}

// NewSolutionOut converts a Solution for JSON output.
func NewSolutionOut(s Solution) SolutionOut {
	items := s.Items
	if items == nil {
		items = []Item{}
	}
	return SolutionOut{
		Items:       items,
		TotalWeight: s.TotalWeight,
		TotalProfit: s.TotalProfit,
		ElapsedMs:   s.ElapsedMillis(),
		Approximate: s.Approximate,
		Unverified:  s.Unverified,
	}
}

type SolveResponse struct {
	RunID     string      `json:"runId"`
	DatasetID string      `json:"datasetId,omitempty"`
	Algorithm Algorithm   `json:"algorithm"`
	Solution  SolutionOut `json:"solution"`
	Warning   string      `json:"warning,omitempty"`
}

// SolveEvent is published after every completed solve.
type SolveEvent struct {
	RunID       string    `json:"runId"`
	DatasetID   string    `json:"datasetId,omitempty"`
	Algorithm   Algorithm `json:"algorithm"`
	Items       int       `json:"items"`
	TotalWeight int       `json:"totalWeight"`
	TotalProfit int       `json:"totalProfit"`
	ElapsedMs   float64   `json:"elapsedMs"`
	Unverified  bool      `json:"unverified,omitempty"`
	TS          string    `json:"ts"`
}
