// Command refsolver is a stand-in external optimizer. It reads the bridge
// input file, solves it exactly with dynamic programming and writes the
// output file, so the external algorithm can be exercised end to end:
//
//	optimizer:
//	  command: refsolver
//	  args: ["-in", "{input}", "-out", "{output}"]
package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"palletpack/internal/integrations/extopt"
	"palletpack/internal/model"
	"palletpack/internal/opt"
)

func main() {
	in := flag.String("in", "ILP_SOLVER/input.txt", "input file written by palletpack")
	out := flag.String("out", "ILP_SOLVER/output.txt", "output file read back by palletpack")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		fmt.Fprintln(os.Stderr, "refsolver:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	inst, err := extopt.ReadInput(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	inst.Algorithm = model.DynamicProgramming

	sol, err := opt.NewSolver(nil, nil).Solve(context.Background(), inst)
	if err != nil {
		return err
	}
	// the bridge resolves output ids by position, so report 1-based indexes
	chosen := make([]model.Item, 0, len(sol.Items))
	used := make([]bool, len(inst.Items))
	for _, it := range sol.Items {
		for i, cand := range inst.Items {
			if !used[i] && cand == it {
				used[i] = true
				chosen = append(chosen, model.Item{ID: i + 1, Weight: it.Weight, Profit: it.Profit})
				break
			}
		}
	}

	o, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := extopt.WriteOutput(o, chosen); err != nil {
		_ = o.Close()
		return err
	}
	fmt.Printf("solved: profit %d, weight %d, %d pallets\n", sol.TotalProfit, sol.TotalWeight, len(chosen))
	return o.Close()
}
