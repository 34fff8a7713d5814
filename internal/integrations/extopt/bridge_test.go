package extopt

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"palletpack/internal/config"
	"palletpack/internal/model"
)

var _ = Describe("FileBridge", func() {
	var (
		dir string
		cfg Config
	)

	newBridge := func(mode string) *FileBridge {
		cfg.Env = []string{"PALLETPACK_HELPER=1", "PALLETPACK_HELPER_MODE=" + mode}
		b, err := New(cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	run := func(b *FileBridge, inst model.ProblemInstance) (int, error) {
		Expect(b.PrepareInput(inst)).To(Succeed())
		return b.Invoke(context.Background())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg = Config{
			Command:    os.Args[0],
			Args:       []string{"-test.run=TestHelperProcess", "--", InputPlaceholder, OutputPlaceholder},
			WorkDir:    dir,
			InputFile:  filepath.Join(dir, "io", "input.txt"),
			OutputFile: filepath.Join(dir, "io", "output.txt"),
		}
	})

	It("requires a command and both file paths", func() {
		_, err := New(Config{InputFile: "a", OutputFile: "b"}, nil)
		Expect(err).To(HaveOccurred())
		_, err = New(Config{Command: "x"}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("writes the input file in the exchange format", func() {
		b := newBridge("fit")
		Expect(b.PrepareInput(sample)).To(Succeed())
		data, err := os.ReadFile(cfg.InputFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("10\n1 10 6\n2 9 5\n3 9 5\n"))
	})

	It("runs the optimizer and parses its answer", func() {
		b := newBridge("fit")
		code, err := run(b, sample)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(0))

		sol, err := b.ParseOutput(sample)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Items).To(Equal([]model.Item{sample.Items[0]}))
		Expect(sol.TotalProfit).To(Equal(10))
		Expect(sol.TotalWeight).To(Equal(6))
	})

	It("reports a non-zero exit through the exit code", func() {
		b := newBridge("fail")
		code, err := run(b, sample)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(3))

		sol, err := b.ParseOutput(sample)
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Items).To(HaveLen(1))
	})

	It("removes output left over from a previous run", func() {
		Expect(os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755)).To(Succeed())
		Expect(os.WriteFile(cfg.OutputFile, []byte("1 10 6\n"), 0o644)).To(Succeed())

		b := newBridge("silent")
		code, err := run(b, sample)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(0))

		_, err = b.ParseOutput(sample)
		Expect(err).To(MatchError(ErrNoOutput))
	})

	It("surfaces malformed output", func() {
		b := newBridge("garbage")
		_, err := run(b, sample)
		Expect(err).NotTo(HaveOccurred())
		_, err = b.ParseOutput(sample)
		Expect(err).To(MatchError(ErrMalformedOutput))
	})

	It("fails when the command cannot be started", func() {
		cfg.Command = filepath.Join(dir, "does-not-exist")
		b := newBridge("fit")
		code, err := run(b, sample)
		Expect(err).To(HaveOccurred())
		Expect(code).To(Equal(-1))
	})

	It("stops when the context is cancelled", func() {
		b := newBridge("fit")
		Expect(b.PrepareInput(sample)).To(Succeed())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		code, err := b.Invoke(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(code).To(Equal(-1))
	})
})

var _ = Describe("FromConfig", func() {
	It("returns no optimizer without a command", func() {
		ext, err := FromConfig(config.OptimizerConfig{}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ext).To(BeNil())
	})

	It("builds a FileBridge named after the command", func() {
		ext, err := FromConfig(config.OptimizerConfig{Command: "/opt/bin/refsolver", InputFile: "in.txt", OutputFile: "out.txt"}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ext).To(BeAssignableToTypeOf(&FileBridge{}))
		Expect(ext.Name()).To(Equal("refsolver"))
	})
})
