// Package extopt talks to an out-of-process optimizer through an input file,
// a synchronous process run and an output file.
//
// The bridge does no optimization of its own. Input and output paths are
// shared by every invocation, so concurrent runs against one bridge must be
// serialized by the caller.
package extopt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"palletpack/internal/config"
	"palletpack/internal/integrations"
	"palletpack/internal/model"
)

// Placeholders substituted in Args before the command is started.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

type Config struct {
	Command    string
	Args       []string
	WorkDir    string
	InputFile  string
	OutputFile string
	// Env is appended to the current environment.
	Env []string
}

// FileBridge implements integrations.ExternalOptimizer.
type FileBridge struct {
	cfg Config
	log *zap.Logger
}

var _ integrations.ExternalOptimizer = (*FileBridge)(nil)

func New(cfg Config, log *zap.Logger) (*FileBridge, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("external optimizer command is empty")
	}
	if cfg.InputFile == "" || cfg.OutputFile == "" {
		return nil, errors.New("external optimizer input and output files are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileBridge{cfg: cfg, log: log}, nil
}

func (b *FileBridge) Name() string { return filepath.Base(b.cfg.Command) }

func (b *FileBridge) PrepareInput(inst model.ProblemInstance) error {
	if err := os.MkdirAll(filepath.Dir(b.cfg.InputFile), 0o755); err != nil {
		return fmt.Errorf("prepare input: %w", err)
	}
	f, err := os.Create(b.cfg.InputFile)
	if err != nil {
		return fmt.Errorf("prepare input: %w", err)
	}
	if err := WriteInput(f, inst); err != nil {
		_ = f.Close()
		return fmt.Errorf("prepare input: %w", err)
	}
	return f.Close()
}

// Invoke removes any output left by a previous run, then runs the command
// and waits for it. A non-zero exit is reported through exitCode, not err.
// There is no timeout unless ctx carries one.
func (b *FileBridge) Invoke(ctx context.Context) (int, error) {
	if err := os.Remove(b.cfg.OutputFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return -1, fmt.Errorf("remove stale output: %w", err)
	}
	cmd := exec.CommandContext(ctx, b.cfg.Command, b.args()...)
	cmd.Dir = b.cfg.WorkDir
	if len(b.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), b.cfg.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var ee *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return -1, fmt.Errorf("run %s: %w", b.Name(), ctx.Err())
	case errors.As(err, &ee):
		code = ee.ExitCode()
	default:
		return -1, fmt.Errorf("run %s: %w", b.Name(), err)
	}
	b.log.Debug("external optimizer finished",
		zap.String("command", b.cfg.Command),
		zap.Int("exitCode", code),
		zap.String("stdout", tail(stdout.String())),
		zap.String("stderr", tail(stderr.String())))
	return code, nil
}

func (b *FileBridge) ParseOutput(inst model.ProblemInstance) (model.Solution, error) {
	f, err := os.Open(b.cfg.OutputFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Solution{}, fmt.Errorf("%w: %s", ErrNoOutput, b.cfg.OutputFile)
		}
		return model.Solution{}, err
	}
	defer func() { _ = f.Close() }()
	return ReadOutput(f, inst)
}

func (b *FileBridge) args() []string {
	in, out := absPath(b.cfg.InputFile), absPath(b.cfg.OutputFile)
	args := make([]string, len(b.cfg.Args))
	for i, a := range b.cfg.Args {
		a = strings.ReplaceAll(a, InputPlaceholder, in)
		args[i] = strings.ReplaceAll(a, OutputPlaceholder, out)
	}
	return args
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}

func tail(s string) string {
	const max = 2048
	s = strings.TrimSpace(s)
	if len(s) > max {
		return "..." + s[len(s)-max:]
	}
	return s
}

// FromConfig builds a bridge from the optimizer settings. It returns a nil
// optimizer when no command is configured.
func FromConfig(cfg config.OptimizerConfig, log *zap.Logger) (integrations.ExternalOptimizer, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, nil
	}
	b, err := New(Config{
		Command:    cfg.Command,
		Args:       cfg.Args,
		WorkDir:    cfg.WorkDir,
		InputFile:  cfg.InputFile,
		OutputFile: cfg.OutputFile,
	}, log)
	if err != nil {
		return nil, err
	}
	return b, nil
}
