package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm selects a solving strategy. The numeric values match the
// console menu.
type Algorithm int

const (
	BruteForce Algorithm = iota + 1
	DynamicProgramming
	GreedyApproximation
	ExternalOptimizer
)

// Algorithms lists every known algorithm in menu order.
var Algorithms = []Algorithm{BruteForce, DynamicProgramming, GreedyApproximation, ExternalOptimizer}

var algorithmNames = map[Algorithm]string{
	BruteForce:          "bruteforce",
	DynamicProgramming:  "dp",
	GreedyApproximation: "greedy",
	ExternalOptimizer:   "external",
}

var algorithmTitles = map[Algorithm]string{
	BruteForce:          "Brute Force",
	DynamicProgramming:  "Dynamic Programming",
	GreedyApproximation: "Greedy Approximation",
	ExternalOptimizer:   "Integer Linear Programming (external)",
}

var algorithmAliases = map[string]Algorithm{
	"bruteforce":  BruteForce,
	"brute-force": BruteForce,
	"bf":          BruteForce,
	"backtrack":   BruteForce,
	"dp":          DynamicProgramming,
	"dynamic":     DynamicProgramming,
	"greedy":      GreedyApproximation,
	"approx":      GreedyApproximation,
	"external":    ExternalOptimizer,
	"ilp":         ExternalOptimizer,
}

// Valid reports whether a is one of the known algorithms.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

func (a Algorithm) String() string {
	if n, ok := algorithmNames[a]; ok {
		return n
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Title is the human readable menu label.
func (a Algorithm) Title() string {
	if t, ok := algorithmTitles[a]; ok {
		return t
	}
	return a.String()
}

// ParseAlgorithm accepts a menu number (1-4) or a name such as "dp",
// "greedy", "bruteforce", "ilp".
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		a := Algorithm(n)
		if !a.Valid() {
			return 0, fmt.Errorf("unknown algorithm number %d (allowed: 1-%d)", n, len(Algorithms))
		}
		return a, nil
	}
	if a, ok := algorithmAliases[s]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q (allowed: bruteforce, dp, greedy, external)", s)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", a.String())
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
