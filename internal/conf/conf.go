package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/infra/llm"
)

// Config represents application configuration
type Config struct {
	Slack    SlackConfig    `mapstructure:"slack"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Reminder ReminderConfig `mapstructure:"reminder"`

	PromptsPath string `mapstructure:"prompts_path"`

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig `mapstructure:"-"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// SlackConfig contains Slack app credentials
type SlackConfig struct {
	BotToken      string `mapstructure:"bot_token"`
	SigningSecret string `mapstructure:"signing_secret"` // empty disables request verification
	APIURL        string `mapstructure:"api_url"`        // override for tests and proxies
}

// LLMConfig contains the OpenAI-compatible model endpoint
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StoreConfig contains local state settings
type StoreConfig struct {
	PrefsFile       string `mapstructure:"prefs_file"`
	StateDBPath     string `mapstructure:"state_db_path"` // empty keeps markers in memory
	MarkerCacheSize int    `mapstructure:"marker_cache_size"`

	MarkerRetention time.Duration `mapstructure:"marker_retention"`
}

// ReminderConfig contains urgent message reminder settings
type ReminderConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// envBindings maps config keys to environment variables, first match wins
var envBindings = map[string][]string{
	"slack.bot_token":         {"SLACK_BOT_TOKEN"},
	"slack.signing_secret":    {"SLACK_SIGNING_SECRET"},
	"slack.api_url":           {"SLACK_API_URL"},
	"llm.api_key":             {"LLM_API_KEY", "GEMINI_API_KEY"},
	"llm.base_url":            {"LLM_BASE_URL"},
	"llm.model":               {"LLM_MODEL"},
	"server.port":             {"PORT"},
	"store.prefs_file":        {"PREFS_FILE"},
	"store.state_db_path":     {"STATE_DB_PATH"},
	"store.marker_cache_size": {"MARKER_CACHE_SIZE"},
	"store.marker_retention":  {"MARKER_RETENTION"},
	"reminder.delay":          {"REMINDER_DELAY"},
	"prompts_path":            {"PROMPTS_CONFIG_PATH"},
	"debug":                   {"DEBUG"},
}

// New returns a viper instance with defaults and environment bindings applied
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("slack.api_url", "")
	v.SetDefault("llm.base_url", llm.DefaultBaseURL)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.prefs_file", "user_prefs.json")
	v.SetDefault("store.state_db_path", "")
	v.SetDefault("store.marker_cache_size", 10000)
	v.SetDefault("store.marker_retention", 7*24*time.Hour)
	v.SetDefault("reminder.delay", 10*time.Second)
	v.SetDefault("prompts_path", "")
	v.SetDefault("debug", false)

	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	return v
}

// Load reads configuration from the environment (and any flags bound to v)
// and loads the prompt templates.
func Load(v *viper.Viper, logger *zap.Logger) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	prompts, err := LoadPromptsConfig(cfg.PromptsPath, logger)
	if err != nil {
		return nil, err
	}
	cfg.Prompts = prompts

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return &ConfigError{Field: "SLACK_BOT_TOKEN", Message: "required"}
	}
	if c.LLM.APIKey == "" {
		return &ConfigError{Field: "LLM_API_KEY/GEMINI_API_KEY", Message: "required"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "PORT", Message: fmt.Sprintf("out of range: %d", c.Server.Port)}
	}
	if c.Store.PrefsFile == "" {
		return &ConfigError{Field: "PREFS_FILE", Message: "required"}
	}
	if c.Store.MarkerCacheSize <= 0 {
		return &ConfigError{Field: "MARKER_CACHE_SIZE", Message: "must be positive"}
	}
	if c.Reminder.Delay <= 0 {
		return &ConfigError{Field: "REMINDER_DELAY", Message: "must be positive"}
	}
	return nil
}

// ValidateLLM validates only what the model-facing tools need
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return &ConfigError{Field: "LLM_API_KEY/GEMINI_API_KEY", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
