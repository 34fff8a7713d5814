package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Datasets.Backend)
	assert.Equal(t, "datasets", cfg.Datasets.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 25, cfg.Limits.BruteForceMaxItems)
	assert.Equal(t, "none", cfg.Auth.Mode)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pp.yaml")
	body := `
log:
  level: debug
datasets:
  backend: memory
optimizer:
  command: /usr/bin/refsolver
  args: ["-in", "{input}", "-out", "{output}"]
server:
  port: 9000
  readHeaderTimeout: 2s
webhooks:
  subscriptions:
    - url: http://hooks.local/solve
      secret: s3cret
      events: [solve.completed]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("PORT", "9100")
	t.Setenv("PALLETPACK_LIMITS_BRUTEFORCEMAXITEMS", "12")
	t.Setenv("WEBHOOK_MAX_ATTEMPTS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Datasets.Backend)
	assert.Equal(t, []string{"-in", "{input}", "-out", "{output}"}, cfg.Optimizer.Args)
	assert.Equal(t, 9100, cfg.Server.Port, "bare PORT overrides the file")
	assert.Equal(t, 2*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, 12, cfg.Limits.BruteForceMaxItems)
	assert.Equal(t, 3, cfg.Webhooks.MaxAttempts)
	require.Len(t, cfg.Webhooks.Subscriptions, 1)
	assert.Equal(t, []string{"solve.completed"}, cfg.Webhooks.Subscriptions[0].Events)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"unknown backend":   func(c *Config) { c.Datasets.Backend = "s3" },
		"postgres no url":   func(c *Config) { c.Datasets.Backend = "postgres" },
		"bad port":          func(c *Config) { c.Server.Port = 70000 },
		"negative rate":     func(c *Config) { c.Server.RateRPS = -1 },
		"hmac no secret":    func(c *Config) { c.Auth.Mode = "hmac" },
		"unknown auth":      func(c *Config) { c.Auth.Mode = "jwks" },
		"zero attempts":     func(c *Config) { c.Webhooks.MaxAttempts = 0 },
		"subscription url":  func(c *Config) { c.Webhooks.Subscriptions = []Subscription{{}} },
		"optimizer io":      func(c *Config) { c.Optimizer.Command = "x"; c.Optimizer.InputFile = "" },
		"negative dp limit": func(c *Config) { c.Limits.DPMaxCells = -1 },
	}
	for name, mutate := range cases {
		c := *base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
