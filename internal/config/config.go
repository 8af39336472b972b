// Package config loads and validates the parley configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for parley.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Providers ProvidersConfig `yaml:"providers" json:"providers"`
	Tools     ToolsConfig     `yaml:"tools" json:"tools"`
	Agents    AgentsConfig    `yaml:"agents" json:"agents"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
}

type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	Format    string `yaml:"format" json:"format"`
	AddSource bool   `yaml:"add_source" json:"add_source"`
}

type ServerConfig struct {
	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint in serve mode. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

type ProvidersConfig struct {
	// Default selects the completion provider: "openai" or "anthropic".
	Default   string          `yaml:"default" json:"default"`
	OpenAI    OpenAIConfig    `yaml:"openai" json:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic" json:"anthropic"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" json:"api_key"`
	Model   string `yaml:"model" json:"model"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	Model     string `yaml:"model" json:"model"`
	MaxTokens int64  `yaml:"max_tokens" json:"max_tokens"`
}

type ToolsConfig struct {
	GitHub GitHubConfig `yaml:"github" json:"github"`
	Slack  SlackConfig  `yaml:"slack" json:"slack"`
}

type GitHubConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Token   string `yaml:"token" json:"token"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Owner   string `yaml:"owner" json:"owner"`
	Repo    string `yaml:"repo" json:"repo"`
}

type SlackConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	BotToken       string `yaml:"bot_token" json:"bot_token"`
	DefaultChannel string `yaml:"default_channel" json:"default_channel"`
}

type AgentsConfig struct {
	// ToolTimeout bounds each tool action execution.
	ToolTimeout time.Duration `yaml:"tool_timeout" json:"tool_timeout"`

	// ModelTimeout bounds each model-completion call.
	ModelTimeout time.Duration `yaml:"model_timeout" json:"model_timeout"`
}

type StorageConfig struct {
	// Path is the SQLite file for the query history store. Empty
	// disables history. ":memory:" keeps it in process memory.
	Path string `yaml:"path" json:"path"`
}

// Load reads the configuration file, expands environment variables, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses raw configuration bytes. Environment variables referenced as
// $VAR or ${VAR} are expanded before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	if err := validateRaw(expanded); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Providers.Default == "" {
		c.Providers.Default = "openai"
	}
	if c.Agents.ToolTimeout == 0 {
		c.Agents.ToolTimeout = 30 * time.Second
	}
	if c.Agents.ModelTimeout == 0 {
		c.Agents.ModelTimeout = 60 * time.Second
	}
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	switch c.Providers.Default {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown default provider %q", c.Providers.Default)
	}
	if c.Tools.GitHub.Enabled && c.Tools.GitHub.Token == "" {
		return fmt.Errorf("config: tools.github.token is required when the github tool is enabled")
	}
	if c.Tools.Slack.Enabled && c.Tools.Slack.BotToken == "" {
		return fmt.Errorf("config: tools.slack.bot_token is required when the slack tool is enabled")
	}
	return nil
}
