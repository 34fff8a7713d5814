// Package console is the interactive terminal front end: it asks for a
// dataset and an algorithm, solves, prints the result and starts over.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"palletpack/internal/model"
	"palletpack/internal/opt"
	"palletpack/internal/store"
)

// ErrNoDatasets is returned by Run when the store holds nothing to solve.
var ErrNoDatasets = errors.New("no datasets available")

// Selection is one round of user choices.
type Selection struct {
	Dataset   model.DatasetInfo
	Algorithm model.Algorithm
}

type Session struct {
	in     *bufio.Scanner
	out    io.Writer
	store  store.Store
	solver *opt.Solver
	log    *zap.Logger
}

func New(in io.Reader, out io.Writer, st store.Store, solver *opt.Solver, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	return &Session{in: sc, out: out, store: st, solver: solver, log: log}
}

// Run repeats gather, solve, show until the input ends. Load and solve
// failures are printed and the loop goes on.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sel, err := s.GatherInfo(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}
		ds, err := s.store.GetDataset(ctx, sel.Dataset.ID)
		if err != nil {
			s.log.Warn("load dataset", zap.String("id", sel.Dataset.ID), zap.Error(err))
			fmt.Fprintf(s.out, "Could not load dataset %s: %v\n\n", sel.Dataset.ID, err)
			continue
		}
		sol, err := s.solver.Solve(ctx, ds.Instance(sel.Algorithm))
		s.ShowResults(sol, err)
	}
}

// GatherInfo asks for the dataset and the algorithm. It returns io.EOF when
// the input ends before both answers are given.
func (s *Session) GatherInfo(ctx context.Context) (Selection, error) {
	var sel Selection
	datasets, err := s.store.ListDatasets(ctx)
	if err != nil {
		return sel, fmt.Errorf("list datasets: %w", err)
	}
	if len(datasets) == 0 {
		return sel, ErrNoDatasets
	}
	fmt.Fprintln(s.out, "Answer the questions below only with the suggested options.")

	n := len(datasets)
	fmt.Fprintf(s.out, "Which dataset do you want to use (1-%d)? ", n)
	d, err := s.readChoice(n)
	if err != nil {
		return sel, err
	}
	sel.Dataset = datasets[d-1]

	fmt.Fprintln(s.out, "Which algorithm do you want to use?")
	for _, a := range model.Algorithms {
		fmt.Fprintf(s.out, "%d. %s;\n", int(a), a.Title())
	}
	fmt.Fprintf(s.out, "Which one do you choose (1-%d)? ", len(model.Algorithms))
	a, err := s.readChoice(len(model.Algorithms))
	if err != nil {
		return sel, err
	}
	sel.Algorithm = model.Algorithm(a)
	return sel, nil
}

// readChoice reads tokens until one is an integer in [1,max].
func (s *Session) readChoice(max int) (int, error) {
	for {
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		fmt.Fprintln(s.out)
		v, err := strconv.Atoi(s.in.Text())
		if err == nil && v >= 1 && v <= max {
			return v, nil
		}
		fmt.Fprintf(s.out, "Choose an option from the following (1-%d). ", max)
	}
}

// ShowResults prints the outcome of one solve.
func (s *Session) ShowResults(sol model.Solution, err error) { WriteResults(s.out, sol, err) }

// WriteResults prints the totals, the elapsed time in milliseconds and one
// line per loaded pallet. A solve error other than *opt.ExitError is printed
// on its own.
func WriteResults(w io.Writer, sol model.Solution, err error) {
	var exitErr *opt.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		fmt.Fprintf(w, "\nWarning: %v. The results below are unverified.\n", exitErr)
	default:
		fmt.Fprintf(w, "\nSolve failed: %v\n\n", err)
		return
	}
	fmt.Fprint(w, "\nHere are your results!\n\n")
	fmt.Fprintf(w, "Final weight: %d\n", sol.TotalWeight)
	fmt.Fprintf(w, "Final profit: %d\n", sol.TotalProfit)
	fmt.Fprintf(w, "Execution time: %.3fms\n", sol.ElapsedMillis())
	for _, it := range sol.Items {
		fmt.Fprintf(w, "Pallet id: %d, Pallet value: %d, Pallet weight: %d\n", it.ID, it.Profit, it.Weight)
	}
	fmt.Fprintln(w)
}
