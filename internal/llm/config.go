package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskPlan  TaskType = "plan"
	TaskCoach TaskType = "coach"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	NumCtx      int     `yaml:"num_ctx"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	LogCalls  bool                    `yaml:"log_calls"`
	Endpoint  string                  `yaml:"endpoint"`
	Model     string                  `yaml:"model"`
	KeepAlive string                  `yaml:"keep_alive"`
	TimeoutMs int                     `yaml:"timeout_ms"`
	Tasks     map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults for a local
// Ollama instance.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		LogCalls:  true,
		Endpoint:  "http://127.0.0.1:11434",
		Model:     "llama3.2",
		KeepAlive: "10m",
		TimeoutMs: 120000,
		Tasks: map[TaskType]TaskConfig{
			TaskPlan:  {Temperature: 0.2, NumCtx: 2048},
			TaskCoach: {Temperature: 0.2, NumCtx: 2048},
		},
	}
}

// ApplyEnv overlays environment variables onto cfg. OLLAMA_HOST and
// GEN_MODEL are honored alongside the TUTOR_LLM_* names.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("TUTOR_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	if v := firstEnv("TUTOR_LLM_ENDPOINT", "OLLAMA_HOST"); v != "" {
		cfg.Endpoint = v
	}
	if v := firstEnv("TUTOR_LLM_MODEL", "GEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TUTOR_LLM_KEEP_ALIVE"); v != "" {
		cfg.KeepAlive = v
	}
	if v := os.Getenv("TUTOR_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}

	applyTaskTimeoutEnv(cfg, TaskPlan, "TUTOR_LLM_PLAN_TIMEOUT_MS")
	applyTaskTimeoutEnv(cfg, TaskCoach, "TUTOR_LLM_COACH_TIMEOUT_MS")
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
