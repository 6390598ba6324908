// Package config assembles tutor's configuration from defaults, an optional
// YAML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tutor/internal/linkcheck"
	"github.com/alexanderramin/tutor/internal/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding the YAML config path.
const EnvConfigFile = "TUTOR_CONFIG"

// Config is the complete tutor configuration.
type Config struct {
	LLM    llm.LLMConfig    `yaml:"llm"`
	Links  linkcheck.Config `yaml:"links"`
	DB     DBConfig         `yaml:"db"`
	Server ServerConfig     `yaml:"server"`
	Log    LogConfig        `yaml:"log"`
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig selects the process log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// SlogLevel parses Level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		LLM:   llm.DefaultConfig(),
		Links: linkcheck.DefaultConfig(),
		DB:    DBConfig{Path: defaultDBPath()},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8000,
			CORSOrigins:    []string{"*"},
			RequestTimeout: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tutor.db"
	}
	return filepath.Join(home, ".tutor", "tutor.db")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LLM.Endpoint == "" {
		return errors.New("llm.endpoint is required")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.DB.Path == "" {
		return errors.New("db.path is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Links.MaxConcurrency < 0 {
		return fmt.Errorf("links.max_concurrency must not be negative, got %d", c.Links.MaxConcurrency)
	}
	return nil
}

// LoadFromFile reads a YAML file on top of Default().
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: .env is loaded into the process
// environment (if present), then the YAML file named by TUTOR_CONFIG, then
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	llm.ApplyEnv(&cfg.LLM)

	if v := firstEnv("TUTOR_DB", "DATABASE_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("TUTOR_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getEnvAsInt("TUTOR_PORT"); v > 0 {
		cfg.Server.Port = v
	}
	if v := firstEnv("TUTOR_CORS_ORIGINS", "CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := getEnvAsDuration("TUTOR_REQUEST_TIMEOUT"); v > 0 {
		cfg.Server.RequestTimeout = v
	}
	if v := getEnvAsDuration("TUTOR_LINK_TIMEOUT"); v > 0 {
		cfg.Links.Timeout = v
	}
	if v := getEnvAsInt("TUTOR_LINK_CONCURRENCY"); v > 0 {
		cfg.Links.MaxConcurrency = v
	}
	if v := os.Getenv("TUTOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TUTOR_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func getEnvAsDuration(key string) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return 0
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
