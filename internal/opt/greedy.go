package opt

import (
	"context"
	"sort"

	"palletpack/internal/model"
)

// Greedy takes items by descending profit/weight ratio while they fit. It
// runs in O(n log n) and is NOT exact: results are flagged Approximate.
// Equal ratios keep input order; weightless items have an infinite ratio and
// come first.
type Greedy struct{}

func (Greedy) Solve(_ context.Context, inst model.ProblemInstance) (model.Solution, error) {
	order := make([]model.Item, len(inst.Items))
	copy(order, inst.Items)
	sort.SliceStable(order, func(a, b int) bool {
		return order[a].Ratio() > order[b].Ratio()
	})

	sol := model.Solution{Approximate: true}
	for _, it := range order {
		if it.Weight <= inst.Capacity-sol.TotalWeight {
			sol.Add(it)
		}
	}
	return sol, nil
}
