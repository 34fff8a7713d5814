package opt

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palletpack/internal/model"
)

func TestBruteForceKeepsFirstOptimum(t *testing.T) {
	// {1} and {2} tie; exclude-first order reaches {2} before {1}.
	inst := model.ProblemInstance{Capacity: 5, Items: []model.Item{
		{ID: 1, Weight: 5, Profit: 4},
		{ID: 2, Weight: 5, Profit: 4},
	}}
	sol, err := BruteForce{}.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(sol.Items))
}

func TestDynamicTracebackMatchesTable(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 100; round++ {
		inst := randomInstance(rng, 1+rng.Intn(25))
		table := buildTable(inst.Items, inst.Capacity)
		picked := traceback(table, inst.Items, inst.Capacity)

		w, p := 0, 0
		for _, idx := range picked {
			w += inst.Items[idx].Weight
			p += inst.Items[idx].Profit
		}
		require.Equal(t, table[len(inst.Items)][inst.Capacity], p, "round %d", round)
		require.LessOrEqual(t, w, inst.Capacity)
		for i := 1; i < len(picked); i++ {
			assert.Greater(t, picked[i-1], picked[i], "descending index order")
		}
	}
}

func TestDynamicTieKeepsEarlierItem(t *testing.T) {
	inst := model.ProblemInstance{Capacity: 5, Items: []model.Item{
		{ID: 1, Weight: 5, Profit: 4},
		{ID: 2, Weight: 5, Profit: 4},
	}}
	sol, err := Dynamic{}.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(sol.Items))
}

func TestZeroWeightItems(t *testing.T) {
	inst := model.ProblemInstance{Capacity: 4, Items: []model.Item{
		{ID: 1, Weight: 4, Profit: 5},
		{ID: 2, Weight: 0, Profit: 3},
		{ID: 3, Weight: 0, Profit: 0},
	}}
	ctx := context.Background()

	bf, err := BruteForce{}.Solve(ctx, inst)
	require.NoError(t, err)
	dp, err := Dynamic{}.Solve(ctx, inst)
	require.NoError(t, err)
	gr, err := Greedy{}.Solve(ctx, inst)
	require.NoError(t, err)

	assert.Equal(t, 8, bf.TotalProfit)
	assert.Equal(t, 8, dp.TotalProfit)
	assert.Equal(t, 8, gr.TotalProfit)
	assert.Contains(t, ids(dp.Items), 2)
	assert.Equal(t, []int{2, 3, 1}, ids(gr.Items), "weightless items sort first")
}

func TestGreedyIsStableAndSuboptimal(t *testing.T) {
	inst := model.ProblemInstance{Capacity: 10, Items: []model.Item{
		{ID: 1, Weight: 2, Profit: 4},
		{ID: 2, Weight: 6, Profit: 12},
		{ID: 3, Weight: 10, Profit: 19},
	}}
	sol, err := Greedy{}.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(sol.Items), "equal ratios keep input order")
	assert.Equal(t, 16, sol.TotalProfit)
	assert.True(t, sol.Approximate)

	dp, err := Dynamic{}.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 19, dp.TotalProfit)
}

func TestHeavyItemNeverOverflowsCapacity(t *testing.T) {
	inst := model.ProblemInstance{Capacity: 5, Items: []model.Item{
		{ID: 1, Weight: 1, Profit: 1},
		{ID: 2, Weight: math.MaxInt, Profit: 100},
	}}
	for name, st := range map[string]Strategy{"bruteforce": BruteForce{}, "dp": Dynamic{}, "greedy": Greedy{}} {
		sol, err := st.Solve(context.Background(), inst)
		require.NoError(t, err, name)
		assert.Equal(t, []int{1}, ids(sol.Items), name)
		assert.Equal(t, 1, sol.TotalWeight, name)
		assert.Equal(t, 1, sol.TotalProfit, name)
	}
}
