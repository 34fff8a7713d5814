package extopt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"palletpack/internal/model"
)

var (
	// ErrNoOutput means the optimizer left no output file behind.
	ErrNoOutput = errors.New("external optimizer produced no output")
	// ErrMalformedOutput means an output line could not be parsed or
	// referenced an unknown item.
	ErrMalformedOutput = errors.New("malformed external optimizer output")
	// ErrMalformedInput is returned by ReadInput.
	ErrMalformedInput = errors.New("malformed external optimizer input")
)

// WriteInput writes the capacity on the first line followed by one
// "<id> <profit> <weight>" line per item, in instance order.
func WriteInput(w io.Writer, inst model.ProblemInstance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", inst.Capacity)
	for _, it := range inst.Items {
		fmt.Fprintf(bw, "%d %d %d\n", it.ID, it.Profit, it.Weight)
	}
	return bw.Flush()
}

// ReadInput is the optimizer side of WriteInput.
func ReadInput(r io.Reader) (model.ProblemInstance, error) {
	var inst model.ProblemInstance
	sc := bufio.NewScanner(r)
	line := 0
	seenCapacity := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if !seenCapacity {
			c, err := strconv.Atoi(text)
			if err != nil {
				return inst, fmt.Errorf("%w: line %d: capacity %q", ErrMalformedInput, line, text)
			}
			inst.Capacity = c
			seenCapacity = true
			continue
		}
		vals, err := parseTriple(text)
		if err != nil {
			return inst, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
		}
		inst.Items = append(inst.Items, model.Item{ID: vals[0], Profit: vals[1], Weight: vals[2]})
	}
	if err := sc.Err(); err != nil {
		return inst, err
	}
	if !seenCapacity {
		return inst, fmt.Errorf("%w: missing capacity line", ErrMalformedInput)
	}
	return inst, nil
}

// WriteOutput writes one "<id> <profit> <weight>" line per chosen item.
func WriteOutput(w io.Writer, chosen []model.Item) error {
	bw := bufio.NewWriter(w)
	for _, it := range chosen {
		fmt.Fprintf(bw, "%d %d %d\n", it.ID, it.Profit, it.Weight)
	}
	return bw.Flush()
}

// ReadOutput parses the optimizer's answer. Identifier k resolves to
// inst.Items[k-1]; totals are summed from the reported per-line figures,
// not from the resolved items.
func ReadOutput(r io.Reader, inst model.ProblemInstance) (model.Solution, error) {
	var sol model.Solution
	seen := make(map[int]bool)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		vals, err := parseTriple(text)
		if err != nil {
			return sol, fmt.Errorf("%w: line %d: %v", ErrMalformedOutput, line, err)
		}
		id, profit, weight := vals[0], vals[1], vals[2]
		if id < 1 || id > len(inst.Items) {
			return sol, fmt.Errorf("%w: line %d: id %d out of range [1,%d]", ErrMalformedOutput, line, id, len(inst.Items))
		}
		if seen[id] {
			return sol, fmt.Errorf("%w: line %d: id %d listed twice", ErrMalformedOutput, line, id)
		}
		seen[id] = true
		sol.Items = append(sol.Items, inst.Items[id-1])
		sol.TotalProfit += profit
		sol.TotalWeight += weight
	}
	if err := sc.Err(); err != nil {
		return sol, err
	}
	return sol, nil
}

func parseTriple(s string) ([3]int, error) {
	var out [3]int
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return out, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return out, fmt.Errorf("field %d: %q is not an integer", i+1, f)
		}
		out[i] = v
	}
	return out, nil
}
