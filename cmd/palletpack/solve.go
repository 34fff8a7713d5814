package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"palletpack/internal/console"
	"palletpack/internal/model"
	"palletpack/internal/opt"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		datasetID    string
		instancePath string
		algorithm    string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one dataset or instance file and print the selected pallets",
		Example: `  palletpack solve --dataset 1 --algorithm dp
  palletpack solve --instance truck.yaml --algorithm greedy --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (datasetID == "") == (instancePath == "") {
				return errors.New("exactly one of --dataset or --instance is required")
			}
			st, solver, closeFn, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var inst model.ProblemInstance
			if datasetID != "" {
				ds, err := st.GetDataset(cmd.Context(), datasetID)
				if err != nil {
					return err
				}
				datasetID = ds.ID
				inst = ds.Instance(0)
			} else if inst, err = readInstance(instancePath); err != nil {
				return err
			}
			if algorithm != "" {
				if inst.Algorithm, err = model.ParseAlgorithm(algorithm); err != nil {
					return err
				}
			}
			if inst.Algorithm == 0 {
				return errors.New("--algorithm is required")
			}

			sol, err := solver.Solve(cmd.Context(), inst)
			var exitErr *opt.ExitError
			if err != nil && !errors.As(err, &exitErr) {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				resp := model.SolveResponse{
					RunID:     uuid.New().String(),
					DatasetID: datasetID,
					Algorithm: inst.Algorithm,
					Solution:  model.NewSolutionOut(sol),
				}
				if err != nil {
					resp.Warning = err.Error()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(resp); encErr != nil {
					return encErr
				}
			} else {
				console.WriteResults(out, sol, err)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&datasetID, "dataset", "d", "", "dataset id or number")
	f.StringVarP(&instancePath, "instance", "i", "", "YAML instance file (capacity, items, algorithm)")
	f.StringVarP(&algorithm, "algorithm", "a", "", "1-4 or bruteforce, dp, greedy, external")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func readInstance(path string) (model.ProblemInstance, error) {
	var inst model.ProblemInstance
	f, err := os.Open(path)
	if err != nil {
		return inst, err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&inst); err != nil {
		return inst, fmt.Errorf("read instance %s: %w", path, err)
	}
	return inst, nil
}
