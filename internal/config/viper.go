package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported AI providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.0-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

var providerKeyEnv = map[string]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// LogConfig selects the log level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AIConfig configures the AI categorization tier.
type AIConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider          string `mapstructure:"provider" yaml:"provider"`
	Model             string `mapstructure:"model" yaml:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxAttempts       int    `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelayMs       int    `mapstructure:"base_delay_ms" yaml:"base_delay_ms"`
	FallbackCategory  string `mapstructure:"fallback_category" yaml:"fallback_category"`
	APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// ModelName returns the configured model or the provider default.
func (c AIConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Timeout returns the per-request timeout.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BaseDelay returns the first retry delay.
func (c AIConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// StoreConfig selects the ledger backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
	DSN    string `mapstructure:"dsn" yaml:"-"`
}

// Config represents the complete application configuration
type Config struct {
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
	AI    AIConfig    `mapstructure:"ai" yaml:"ai"`
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Rules struct {
		SeedFile string `mapstructure:"seed_file" yaml:"seed_file"`
	} `mapstructure:"rules" yaml:"rules"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile loads configuration, reading configFile instead of
// searching the default locations when it is not empty.
func InitializeConfigFromFile(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-ledger")
		v.AddConfigPath(".statement-ledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.AI.Provider = strings.ToLower(config.AI.Provider)

	// Provider keys are read unprefixed so existing .env files keep working.
	if config.AI.APIKey == "" {
		if env, ok := providerKeyEnv[config.AI.Provider]; ok {
			config.AI.APIKey = os.Getenv(env)
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.base_delay_ms", 1000)
	v.SetDefault("ai.fallback_category", models.CategoryOther)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "finance.db")
	v.SetDefault("store.dsn", "")

	v.SetDefault("data.directory", "data")
	v.SetDefault("rules.seed_file", "")
	v.SetDefault("server.addr", ":8000")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if !models.IsAllowedCategory(config.AI.FallbackCategory) {
		return fmt.Errorf("ai.fallback_category %q is not an allowed category", config.AI.FallbackCategory)
	}
	if config.AI.Enabled {
		env, ok := providerKeyEnv[config.AI.Provider]
		if !ok {
			return fmt.Errorf("unknown ai.provider: %s (must be 'gemini' or 'anthropic')", config.AI.Provider)
		}
		if config.AI.APIKey == "" {
			return fmt.Errorf("%s required when AI is enabled", env)
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
		if config.AI.MaxAttempts < 1 || config.AI.MaxAttempts > 10 {
			return fmt.Errorf("ai.max_attempts must be between 1 and 10, got: %d", config.AI.MaxAttempts)
		}
		if config.AI.BaseDelayMs < 0 {
			return fmt.Errorf("ai.base_delay_ms must not be negative, got: %d", config.AI.BaseDelayMs)
		}
	}

	switch config.Store.Driver {
	case "sqlite":
		if config.Store.Path == "" {
			return errors.New("store.path required for the sqlite driver")
		}
	case "postgres":
		if config.Store.DSN == "" {
			return errors.New("store.dsn required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'sqlite', 'postgres' or 'memory')", config.Store.Driver)
	}

	if config.Data.Directory == "" {
		return errors.New("data.directory must not be empty")
	}
	return nil
}

// NewLogger builds the application logger from the log section.
func NewLogger(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
