// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider identifies a generation backend implementation.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`

	// File rotation. Empty LogFile disables the file sink.
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// AgentConfig configures the planner and its generation backend.
type AgentConfig struct {
	Provider    Provider `mapstructure:"provider" yaml:"provider"`
	Model       string   `mapstructure:"model" yaml:"model"`
	Endpoint    string   `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey      string   `mapstructure:"api_key" yaml:"api_key"`
	MaxAttempts int      `mapstructure:"max_attempts" yaml:"max_attempts"`
	Temperature float32  `mapstructure:"temperature" yaml:"temperature"`
}

// BrowserConfig configures the chromedp adapter.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// RuntimeConfig configures execution-side behavior.
type RuntimeConfig struct {
	// Mode selects ui, direct, or auto (probe the page bridge first).
	Mode       string `mapstructure:"mode" yaml:"mode"`
	TraceDir   string `mapstructure:"trace_dir" yaml:"trace_dir"`
	KeepTraces int    `mapstructure:"keep_traces" yaml:"keep_traces"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "semact")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("agent.provider", string(ProviderOllama))
	v.SetDefault("agent.model", "llama3.1")
	v.SetDefault("agent.max_attempts", 3)
	v.SetDefault("agent.temperature", 0.2)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)

	v.SetDefault("runtime.mode", "auto")
	v.SetDefault("runtime.trace_dir", "data/traces")
	v.SetDefault("runtime.keep_traces", 50)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the runtime cannot operate with.
func (c *Config) Validate() error {
	switch c.Agent.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("agent.provider must be one of ollama, openai, gemini; got %q", c.Agent.Provider)
	}
	if c.Agent.Model == "" {
		return fmt.Errorf("agent.model is required")
	}
	if c.Agent.MaxAttempts < 1 {
		return fmt.Errorf("agent.max_attempts must be at least 1; got %d", c.Agent.MaxAttempts)
	}

	switch strings.ToLower(c.Runtime.Mode) {
	case "auto", "ui", "direct":
	default:
		return fmt.Errorf("runtime.mode must be one of auto, ui, direct; got %q", c.Runtime.Mode)
	}

	switch c.Logger.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json; got %q", c.Logger.Format)
	}
	return nil
}
