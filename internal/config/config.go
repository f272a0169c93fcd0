package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/sosacrazy126/gptme/pkg/log"
)

const configFileName = "config.toml"

// MemoryConfig tunes the conversational memory subsystem.
type MemoryConfig struct {
	Enabled             bool    `toml:"enabled"`
	StorageType         string  `toml:"storage_type"` // "json", "in_memory" or "sqlite"
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MaxContextWindow    int     `toml:"max_context_window"`
	DecayRate           float64 `toml:"decay_rate"`
}

// Config is the full session configuration. It is built once by Load and
// passed explicitly to every component; there is no global instance.
type Config struct {
	OpenAIAPIKey    string  `toml:"openai_api_key"`
	AnthropicAPIKey string  `toml:"anthropic_api_key"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	MaxTokens       int     `toml:"max_tokens"`

	Memory MemoryConfig `toml:"memory"`

	DataDir string `toml:"-"`
}

// envOverrides are the keys that may be supplied via environment. They beat
// file values but lose to explicit options.
type envOverrides struct {
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	Model           string `env:"GPTME_MODEL"`
	DataDir         string `env:"GPTME_DATA_DIR"`
}

type Option func(*Config)

func WithOpenAIAPIKey(key string) Option    { return func(c *Config) { c.OpenAIAPIKey = key } }
func WithAnthropicAPIKey(key string) Option { return func(c *Config) { c.AnthropicAPIKey = key } }
func WithModel(model string) Option         { return func(c *Config) { c.Model = model } }
func WithTemperature(t float64) Option      { return func(c *Config) { c.Temperature = t } }
func WithMaxTokens(n int) Option            { return func(c *Config) { c.MaxTokens = n } }
func WithDataDir(dir string) Option         { return func(c *Config) { c.DataDir = dir } }

func WithMemoryEnabled(enabled bool) Option {
	return func(c *Config) { c.Memory.Enabled = enabled }
}

func WithMemoryStorageType(kind string) Option {
	return func(c *Config) { c.Memory.StorageType = kind }
}

func WithMemorySimilarityThreshold(threshold float64) Option {
	return func(c *Config) { c.Memory.SimilarityThreshold = threshold }
}

func WithMemoryMaxContextWindow(n int) Option {
	return func(c *Config) { c.Memory.MaxContextWindow = n }
}

func WithMemoryDecayRate(rate float64) Option {
	return func(c *Config) { c.Memory.DecayRate = rate }
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   2000,
		Memory: MemoryConfig{
			Enabled:             true,
			StorageType:         "json",
			SimilarityThreshold: 40,
			MaxContextWindow:    5,
			DecayRate:           0.0001,
		},
		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gptme"
	}
	return filepath.Join(home, ".gptme")
}

// Load resolves configuration with the precedence
// options > environment > config file > built-in defaults.
// A missing config file is normal; a malformed one is logged and ignored.
func Load(ctx context.Context, opts ...Option) *Config {
	logger := log.FromCtx(ctx)

	// The data dir decides where the config file lives, so resolve it before
	// reading the file: env first, then options.
	c := Default()
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		logger.Warn().Err(err).Msg("failed to parse environment overrides")
		ov = envOverrides{}
	}
	if ov.DataDir != "" {
		c.DataDir = ov.DataDir
	}
	for _, opt := range opts {
		opt(c)
	}
	dataDir := c.DataDir

	// Rebuild in precedence order on top of the resolved data dir.
	c = Default()
	c.DataDir = dataDir

	if data, err := os.ReadFile(c.Path()); err == nil {
		if err := toml.Unmarshal(data, c); err != nil {
			logger.Warn().Err(err).Str("path", c.Path()).Msg("malformed config file, using defaults")
			c = Default()
			c.DataDir = dataDir
		}
	} else if !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", c.Path()).Msg("failed to read config file, using defaults")
	}

	if ov.OpenAIAPIKey != "" {
		c.OpenAIAPIKey = ov.OpenAIAPIKey
	}
	if ov.AnthropicAPIKey != "" {
		c.AnthropicAPIKey = ov.AnthropicAPIKey
	}
	if ov.Model != "" {
		c.Model = ov.Model
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Save persists the current values back to the config file.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(c.Path(), data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) Path() string {
	return filepath.Join(c.DataDir, configFileName)
}

func (c *Config) MemoryDir() string {
	return filepath.Join(c.DataDir, "memory")
}

// HistoryFile is the JSON interaction store location.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.MemoryDir(), "interaction_history.json")
}

// DatabasePath is the sqlite interaction store location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.MemoryDir(), "interactions.db")
}
