// Package config loads the host's configuration file: LLM provider
// credentials, plugin directories, and the safety and logging knobs the
// pipeline consults at startup.
package config

import (
	"fmt"
	"time"

	"github.com/omni-glass/host/internal/mcp"
)

// Config is the root configuration document.
type Config struct {
	Version int `yaml:"version"`

	LLM     LLMConfig     `yaml:"llm"`
	Plugins PluginsConfig `yaml:"plugins"`
	Safety  SafetyConfig  `yaml:"safety"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMProviderConfig configures a single named LLM provider. APIKey, when
// set, takes priority over looking APIKeyEnv up in the process
// environment; it is how save_api_key persists a credential the user
// entered through the UI rather than exported into their shell.
type LLMProviderConfig struct {
	APIKeyEnv    string `yaml:"api_key_env,omitempty"`
	APIKey       string `yaml:"api_key,omitempty"`
	DefaultModel string `yaml:"default_model"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Remote       bool   `yaml:"remote"`
}

// LLMConfig selects the active provider and holds every configured
// provider's connection details.
type LLMConfig struct {
	ActiveProvider string                       `yaml:"active_provider"`
	Providers      map[string]LLMProviderConfig `yaml:"providers"`
	MaxTokens      int                          `yaml:"max_tokens"`
}

// PluginsConfig locates plugin directories and bounds how long the host
// waits on any single MCP call.
type PluginsConfig struct {
	Directories []string   `yaml:"directories"`
	CallTimeout string     `yaml:"call_timeout"`
	MCP         mcp.Config `yaml:"mcp"`
	ReauditCron string     `yaml:"reaudit_cron"`
}

// SafetyConfig toggles the redaction and blocklist layers. Both default
// to enabled; the fields exist for development/testing, not for
// plugins or users to disable in production.
type SafetyConfig struct {
	RedactionEnabled bool `yaml:"redaction_enabled"`
	BlocklistEnabled bool `yaml:"blocklist_enabled"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CallTimeoutOrDefault parses Plugins.CallTimeout, falling back to 30s
// on an empty or unparseable value.
func (p PluginsConfig) CallTimeoutOrDefault() time.Duration {
	if p.CallTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(p.CallTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate applies defaults and checks required fields.
func (c *Config) Validate() error {
	if err := ValidateVersion(c.Version); err != nil {
		return err
	}
	if c.LLM.ActiveProvider == "" {
		return fmt.Errorf("llm.active_provider is required")
	}
	if _, ok := c.LLM.Providers[c.LLM.ActiveProvider]; !ok {
		return fmt.Errorf("llm.active_provider %q has no matching entry under llm.providers", c.LLM.ActiveProvider)
	}
	return nil
}

// Load reads and decodes the configuration file at path, resolving
// $include directives and environment variable references first.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4096
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if !cfg.Safety.RedactionEnabled && !cfg.Safety.BlocklistEnabled {
		cfg.Safety.RedactionEnabled = true
		cfg.Safety.BlocklistEnabled = true
	}
}
