// Package config loads the process configuration.
//
// Sources are layered: built-in defaults, then an optional YAML file, then environment
// variables. The result is established once at start-up and treated as read-only.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Port int `yaml:"port" mapstructure:"port"`

	Gemini  GeminiConfig  `yaml:"gemini" mapstructure:"gemini"`
	Newton  NewtonConfig  `yaml:"newton" mapstructure:"newton"`
	Solver  SolverConfig  `yaml:"solver" mapstructure:"solver"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// GeminiConfig configures the completion provider.
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
}

// NewtonConfig configures the symbolic math service.
type NewtonConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SolverConfig configures the orchestrator.
type SolverConfig struct {
	CallTimeout    time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
	MaxProblemSize int           `yaml:"max_problem_size" mapstructure:"max_problem_size"`
	// Optional replacements for the embedded operation catalog.
	CatalogFile  string `yaml:"catalog_file" mapstructure:"catalog_file"`
	ExamplesFile string `yaml:"examples_file" mapstructure:"examples_file"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port: 3000,
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.2,
		},
		Newton: NewtonConfig{
			Enabled: false,
			BaseURL: "https://newton.now.sh",
		},
		Solver: SolverConfig{
			CallTimeout:    8 * time.Second,
			MaxProblemSize: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envBindings maps environment variables to dotted config keys. Earlier entries win
// when two variables bind the same key.
var envBindings = []struct {
	env string
	key string
}{
	{"PORT", "port"},
	{"GEMINI_API_KEY", "gemini.api_key"},
	{"GOOGLE_API_KEY", "gemini.api_key"},
	{"MATHSOLVER_MODEL", "gemini.model"},
	{"MATHSOLVER_TEMPERATURE", "gemini.temperature"},
	{"MATHSOLVER_GEMINI_URL", "gemini.base_url"},
	{"MATHSOLVER_SYMBOLIC", "newton.enabled"},
	{"MATHSOLVER_NEWTON_URL", "newton.base_url"},
	{"MATHSOLVER_CALL_TIMEOUT", "solver.call_timeout"},
	{"MATHSOLVER_MAX_PROBLEM_SIZE", "solver.max_problem_size"},
	{"MATHSOLVER_CATALOG", "solver.catalog_file"},
	{"MATHSOLVER_EXAMPLES", "solver.examples_file"},
	{"MATHSOLVER_LOG_LEVEL", "logging.level"},
	{"MATHSOLVER_LOG_FORMAT", "logging.format"},
}

// Load builds the configuration from defaults, the YAML file at path (if non-empty and
// present) and the process environment.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			return Config{}, fmt.Errorf("config file not found: %s", path)
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	overrides := map[string]any{}
	for _, b := range envBindings {
		val, ok := lookup(b.env)
		if !ok || val == "" {
			continue
		}
		setPath(overrides, b.key, val)
	}
	if err := decode(overrides, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// decode merges string overrides into cfg, converting types as needed.
func decode(overrides map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			boolHook,
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}
	return nil
}

// boolHook accepts yes/no/on/off in addition to what strconv.ParseBool takes.
func boolHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean %q", data)
}

func setPath(m map[string]any, dotted, val string) {
	parts := strings.Split(dotted, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	last := parts[len(parts)-1]
	if _, exists := m[last]; !exists {
		m[last] = val
	}
}

// Validate checks ranges that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Solver.CallTimeout <= 0 {
		return fmt.Errorf("solver.call_timeout must be positive")
	}
	if c.Solver.MaxProblemSize <= 0 {
		return fmt.Errorf("solver.max_problem_size must be positive")
	}
	return nil
}

// HasCompletionCredential reports whether a completion API key is configured.
func (c Config) HasCompletionCredential() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}
