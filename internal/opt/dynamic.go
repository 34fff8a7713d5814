package opt

import (
	"context"

	"palletpack/internal/model"
)

// Dynamic is the bottom-up table solution, exact in O(n*capacity) time and
// space.
//
// Traceback walks from the last item to the first, so selected items come
// out in descending index order. A row only differs from the one above it
// when its item strictly improves the profit, so among equally profitable
// selections the earlier items are kept.
type Dynamic struct{}

func (Dynamic) Solve(_ context.Context, inst model.ProblemInstance) (model.Solution, error) {
	table := buildTable(inst.Items, inst.Capacity)
	var sol model.Solution
	for _, idx := range traceback(table, inst.Items, inst.Capacity) {
		sol.Add(inst.Items[idx])
	}
	return sol, nil
}

// buildTable fills table[i][w], the best profit using the first i items
// under weight limit w. Column 0 goes through the recurrence like the rest,
// so weightless items are counted there.
func buildTable(items []model.Item, capacity int) [][]int {
	n := len(items)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, capacity+1)
	}
	for i := 1; i <= n; i++ {
		it := items[i-1]
		prev, row := table[i-1], table[i]
		for w := 0; w <= capacity; w++ {
			row[w] = prev[w]
			if it.Weight <= w {
				if v := prev[w-it.Weight] + it.Profit; v > row[w] {
					row[w] = v
				}
			}
		}
	}
	return table
}

// traceback returns the indexes of the selected items, last index first.
func traceback(table [][]int, items []model.Item, capacity int) []int {
	var picked []int
	w := capacity
	for i := len(items); i >= 1; i-- {
		if table[i][w] != table[i-1][w] {
			picked = append(picked, i-1)
			w -= items[i-1].Weight
		}
	}
	return picked
}
