package opt

import (
	"context"

	"palletpack/internal/model"
)

// BruteForce enumerates every feasible subset by include/exclude
// backtracking in input order. It is exact and runs in O(2^n) time, so it
// only suits small instances.
//
// The exclude branch is explored first and a subset replaces the best one
// only with strictly greater profit, so among equally profitable subsets the
// first one reached wins.
type BruteForce struct{}

func (BruteForce) Solve(_ context.Context, inst model.ProblemInstance) (model.Solution, error) {
	s := &bruteForceSearch{
		items:    inst.Items,
		capacity: inst.Capacity,
		working:  make([]int, 0, len(inst.Items)),
	}
	best := s.search(0, 0, 0)

	var sol model.Solution
	for _, idx := range best.picked {
		sol.Items = append(sol.Items, inst.Items[idx])
	}
	sol.TotalWeight = best.weight
	sol.TotalProfit = best.profit
	return sol, nil
}

type subset struct {
	profit int
	weight int
	picked []int
}

type bruteForceSearch struct {
	items    []model.Item
	capacity int
	working  []int
}

// search returns the best subset reachable from item i given the weight and
// profit already committed.
func (s *bruteForceSearch) search(i, weight, profit int) subset {
	if i == len(s.items) {
		return subset{profit: profit, weight: weight, picked: append([]int(nil), s.working...)}
	}
	best := s.search(i+1, weight, profit)

	it := s.items[i]
	if it.Weight <= s.capacity-weight {
		s.working = append(s.working, i)
		with := s.search(i+1, weight+it.Weight, profit+it.Profit)
		s.working = s.working[:len(s.working)-1]
		if with.profit > best.profit {
			best = with
		}
	}
	return best
}
