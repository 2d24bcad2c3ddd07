// Package config loads and validates the cardforge YAML configuration.
// Resolution order is defaults, then the config file, then environment
// variables, then CLI flags (applied by the cli package).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config schema version written by `config init`.
const CurrentVersion = "1.0"

// supportedVersions is the semver constraint for config files this binary
// can read.
const supportedVersions = "^1.0"

// Environment variable overrides.
const (
	EnvLogLevel = "CARDFORGE_LOG_LEVEL"
	EnvModel    = "CARDFORGE_MODEL"
)

// Config errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrConfigExists       = errors.New("configuration file already exists")
)

// Duration wraps time.Duration with YAML string encoding ("1s", "500ms").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ModelConfig selects the LLM backend.
type ModelConfig struct {
	// Name is the model identifier passed to the provider.
	Name string `yaml:"name"`

	// APIKeyEnv names the environment variable holding the API key. The
	// key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`
}

// RunConfig carries the executor defaults for enhancement runs.
type RunConfig struct {
	BatchSize       int      `yaml:"batch_size"`
	MaxConcurrency  int      `yaml:"max_concurrency"`
	MaxRetries      int      `yaml:"max_retries"`
	BackoffBase     Duration `yaml:"backoff_base"`
	InterBatchDelay Duration `yaml:"inter_batch_delay"`
	RatePerSecond   float64  `yaml:"rate_per_second"`
}

// LoggingConfig mirrors logging.Config in YAML form.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// OutputConfig controls where enhanced decks are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the full cardforge configuration.
type Config struct {
	Version string        `yaml:"version"`
	Model   ModelConfig   `yaml:"model"`
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		Model: ModelConfig{
			Name:      "gpt-4o",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Run: RunConfig{
			BatchSize:   10,
			MaxRetries:  3,
			BackoffBase: Duration(time.Second),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Dir: filepath.Join("output", "enhanced"),
		},
	}
}

// DefaultPath returns the global config file location,
// ~/.cardforge/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".cardforge", "config.yaml"), nil
}

// Load reads the config at path onto the defaults and applies environment
// overrides. A missing file is not an error: defaults plus environment
// apply.
func Load(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if err := cfg.checkVersion(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv(getenv func(string) string) {
	if level := getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if model := getenv(EnvModel); model != "" {
		c.Model.Name = model
	}
}

// checkVersion validates the config schema version against the supported
// range.
func (c *Config) checkVersion() error {
	if c.Version == "" {
		// Pre-versioning config files are treated as current.
		return nil
	}

	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("%w: cannot parse %q: %w", ErrUnsupportedVersion, c.Version, err)
	}

	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported version constraint: %w", err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("%w: %s is outside %s", ErrUnsupportedVersion, c.Version, supportedVersions)
	}
	return nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate re-reads a config file and reports whether it parses and has a
// supported version. Used by `config validate`.
func Validate(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg.checkVersion()
}
