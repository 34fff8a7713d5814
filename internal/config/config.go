// Package config loads palletpack settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
//
// Environment variables use the PALLETPACK_ prefix with dots replaced by
// underscores (PALLETPACK_SERVER_PORT). A few settings also accept the bare
// names used by deployment tooling: PORT, DATABASE_URL, DB_MIGRATE,
// REDIS_URL, AUTH_MODE, AUTH_HMAC_SECRET, RATE_RPS, RATE_BURST and
// WEBHOOK_MAX_ATTEMPTS.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is searched for in the working directory when no path is given.
const FileName = "palletpack"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Datasets  DatasetsConfig  `mapstructure:"datasets"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Server    ServerConfig    `mapstructure:"server"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DatasetsConfig selects the dataset backend: csv, memory or postgres.
type DatasetsConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	Migrate bool   `mapstructure:"migrate"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// OptimizerConfig describes the external optimizer process. An empty
// Command disables the external algorithm.
type OptimizerConfig struct {
	Command    string   `mapstructure:"command"`
	Args       []string `mapstructure:"args"`
	WorkDir    string   `mapstructure:"workDir"`
	InputFile  string   `mapstructure:"inputFile"`
	OutputFile string   `mapstructure:"outputFile"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	RateRPS           float64       `mapstructure:"rateRPS"`
	RateBurst         int           `mapstructure:"rateBurst"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
}

// LimitsConfig caps request sizes for the HTTP API. Zero means unlimited.
type LimitsConfig struct {
	BruteForceMaxItems int   `mapstructure:"bruteForceMaxItems"`
	DPMaxCells         int64 `mapstructure:"dpMaxCells"`
}

type AuthConfig struct {
	Mode       string `mapstructure:"mode"`
	HMACSecret string `mapstructure:"hmacSecret"`
}

type WebhooksConfig struct {
	MaxAttempts   int            `mapstructure:"maxAttempts"`
	Subscriptions []Subscription `mapstructure:"subscriptions"`
}

type Subscription struct {
	URL    string   `mapstructure:"url"`
	Secret string   `mapstructure:"secret"`
	Events []string `mapstructure:"events"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("datasets.backend", "csv")
	v.SetDefault("datasets.dir", "datasets")
	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("optimizer.command", "")
	v.SetDefault("optimizer.args", []string{})
	v.SetDefault("optimizer.workDir", "")
	v.SetDefault("optimizer.inputFile", "ILP_SOLVER/input.txt")
	v.SetDefault("optimizer.outputFile", "ILP_SOLVER/output.txt")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rateRPS", 0)
	v.SetDefault("server.rateBurst", 20)
	v.SetDefault("server.readHeaderTimeout", 5*time.Second)
	v.SetDefault("limits.bruteForceMaxItems", 25)
	v.SetDefault("limits.dpMaxCells", int64(50_000_000))
	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.hmacSecret", "")
	v.SetDefault("webhooks.maxAttempts", 8)
}

// bare environment names kept for compatibility with existing deployments
var envAliases = map[string]string{
	"server.port":          "PORT",
	"database.url":         "DATABASE_URL",
	"database.migrate":     "DB_MIGRATE",
	"redis.url":            "REDIS_URL",
	"auth.mode":            "AUTH_MODE",
	"auth.hmacSecret":      "AUTH_HMAC_SECRET",
	"server.rateRPS":       "RATE_RPS",
	"server.rateBurst":     "RATE_BURST",
	"webhooks.maxAttempts": "WEBHOOK_MAX_ATTEMPTS",
}

// Load reads configuration. path may be empty, in which case palletpack.yaml
// is used if present in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("PALLETPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "PALLETPACK_"+envKey(key), env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Datasets.Backend {
	case "csv", "memory":
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("datasets.backend=postgres requires database.url")
		}
	default:
		return fmt.Errorf("datasets.backend must be csv, memory or postgres, got %q", c.Datasets.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateRPS < 0 {
		return fmt.Errorf("server.rateRPS must be >= 0, got %g", c.Server.RateRPS)
	}
	if c.Server.RateRPS > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rateBurst must be >= 1 when rate limiting, got %d", c.Server.RateBurst)
	}
	if c.Limits.BruteForceMaxItems < 0 || c.Limits.DPMaxCells < 0 {
		return errors.New("limits must be >= 0")
	}
	switch c.Auth.Mode {
	case "none", "dev":
	case "hmac":
		if c.Auth.HMACSecret == "" {
			return errors.New("auth.mode=hmac requires auth.hmacSecret")
		}
	default:
		return fmt.Errorf("auth.mode must be none, dev or hmac, got %q", c.Auth.Mode)
	}
	if c.Webhooks.MaxAttempts < 1 {
		return fmt.Errorf("webhooks.maxAttempts must be >= 1, got %d", c.Webhooks.MaxAttempts)
	}
	for i, s := range c.Webhooks.Subscriptions {
		if s.URL == "" {
			return fmt.Errorf("webhooks.subscriptions[%d].url is required", i)
		}
	}
	if c.Optimizer.Command != "" && (c.Optimizer.InputFile == "" || c.Optimizer.OutputFile == "") {
		return errors.New("optimizer.inputFile and optimizer.outputFile are required with optimizer.command")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
