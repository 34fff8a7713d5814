package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestItemRatio(t *testing.T) {
	assert.InDelta(t, 1.8, Item{ID: 2, Weight: 5, Profit: 9}.Ratio(), 1e-9)
	assert.True(t, math.IsInf(Item{ID: 1, Weight: 0, Profit: 3}.Ratio(), 1))
	assert.True(t, math.IsInf(Item{ID: 1, Weight: 0, Profit: 0}.Ratio(), 1), "0/0 must not be NaN")
}

func TestProblemInstanceValidate(t *testing.T) {
	tests := []struct {
		name string
		inst ProblemInstance
		ok   bool
	}{
		{"empty", ProblemInstance{}, true},
		{"valid", ProblemInstance{Capacity: 10, Items: []Item{{ID: 1, Weight: 5, Profit: 10}}}, true},
		{"duplicate ids allowed", ProblemInstance{Capacity: 1, Items: []Item{{ID: 1}, {ID: 1}}}, true},
		{"negative capacity", ProblemInstance{Capacity: -1}, false},
		{"zero id", ProblemInstance{Capacity: 1, Items: []Item{{ID: 0, Weight: 1}}}, false},
		{"negative weight", ProblemInstance{Capacity: 1, Items: []Item{{ID: 1, Weight: -1}}}, false},
		{"negative profit", ProblemInstance{Capacity: 1, Items: []Item{{ID: 1, Profit: -1}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inst.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidInstance), "got %v", err)
		})
	}
}

func TestSolutionElapsedMillis(t *testing.T) {
	s := Solution{Elapsed: 1234567 * time.Nanosecond}
	assert.Equal(t, 1.235, s.ElapsedMillis())
	assert.Equal(t, 0.0, Solution{}.ElapsedMillis())
}

func TestSolutionAdd(t *testing.T) {
	var s Solution
	s.Add(Item{ID: 1, Weight: 3, Profit: 4})
	s.Add(Item{ID: 2, Weight: 2, Profit: 5})
	assert.Equal(t, 5, s.TotalWeight)
	assert.Equal(t, 9, s.TotalProfit)
	assert.Len(t, s.Items, 2)
}

func TestDatasetInstanceCopiesItems(t *testing.T) {
	d := Dataset{ID: "1", Capacity: 10, Items: []Item{{ID: 1, Weight: 1, Profit: 1}}}
	inst := d.Instance(DynamicProgramming)
	inst.Items[0].Profit = 99
	assert.Equal(t, 1, d.Items[0].Profit)
	assert.Equal(t, DynamicProgramming, inst.Algorithm)
	assert.Equal(t, DatasetInfo{ID: "1", Capacity: 10, Items: 1}, d.Info())
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"1":        BruteForce,
		"2":        DynamicProgramming,
		" 3 ":      GreedyApproximation,
		"4":        ExternalOptimizer,
		"DP":       DynamicProgramming,
		"greedy":   GreedyApproximation,
		"ilp":      ExternalOptimizer,
		"bf":       BruteForce,
		"external": ExternalOptimizer,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "0", "5", "simplex"} {
		_, err := ParseAlgorithm(bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, Algorithm(0).Valid())
	assert.Equal(t, "algorithm(9)", Algorithm(9).String())
}

func TestInstanceDecoding(t *testing.T) {
	var fromJSON ProblemInstance
	require.NoError(t, json.Unmarshal([]byte(`{"capacity":10,"items":[{"id":1,"weight":6,"profit":10}],"algorithm":"dp"}`), &fromJSON))
	assert.Equal(t, DynamicProgramming, fromJSON.Algorithm)

	var fromYAML ProblemInstance
	doc := "capacity: 10\nalgorithm: greedy\nitems:\n  - {id: 1, weight: 6, profit: 10}\n  - {id: 2, weight: 5, profit: 9}\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &fromYAML))
	assert.Equal(t, GreedyApproximation, fromYAML.Algorithm)
	assert.Len(t, fromYAML.Items, 2)

	out, err := json.Marshal(ProblemInstance{Capacity: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"capacity":1,"items":null}`, string(out))
}
