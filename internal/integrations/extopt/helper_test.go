package extopt

import (
	"fmt"
	"os"
	"testing"

	"palletpack/internal/model"
)

// TestHelperProcess stands in for an external optimizer when re-executed by
// the bridge specs. It does nothing during a normal test run.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("PALLETPACK_HELPER") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: helper -- <input> <output>")
		os.Exit(2)
	}
	os.Exit(runHelper(os.Getenv("PALLETPACK_HELPER_MODE"), args[0], args[1]))
}

func runHelper(mode, inPath, outPath string) int {
	in, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	inst, err := ReadInput(in)
	_ = in.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	switch mode {
	case "silent":
		return 0
	case "garbage":
		return writeFile(outPath, "1 2\n", 0)
	case "fail":
		if len(inst.Items) == 0 {
			return 3
		}
		it := inst.Items[0]
		return writeFile(outPath, fmt.Sprintf("%d %d %d\n", it.ID, it.Profit, it.Weight), 3)
	default:
		// first fit in input order
		var chosen []model.Item
		left := inst.Capacity
		for _, it := range inst.Items {
			if it.Weight <= left {
				chosen = append(chosen, it)
				left -= it.Weight
			}
		}
		out, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer func() { _ = out.Close() }()
		if err := WriteOutput(out, chosen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Println("solved")
		return 0
	}
}

func writeFile(path, body string, code int) int {
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return code
}
