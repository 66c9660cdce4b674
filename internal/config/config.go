// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (AEO_SERVER_PORT, AEO_LLM_PROVIDER, ...).
const EnvPrefix = "AEO"

// Config is the merged configuration from defaults, an optional config file and the environment.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	LLM             LLMConfig             `mapstructure:"llm"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Logging         LoggingConfig         `mapstructure:"logging"`
	Identify        IdentifyConfig        `mapstructure:"identify"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
	Tracing         TracingConfig         `mapstructure:"tracing"`
	RateLimit       RateLimitConfig       `mapstructure:"ratelimit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig configures the PostgreSQL store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LLMConfig selects the generative provider and optional per-tier model overrides.
type LLMConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"apiKey"`
	LiteModel     string `mapstructure:"liteModel"`
	StandardModel string `mapstructure:"standardModel"`
	AdvancedModel string `mapstructure:"advancedModel"`
}

// RedisConfig configures the optional score cache. An empty Addr disables it.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttlMinutes"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// IdentifyConfig holds defaults for identify-opportunities runs.
type IdentifyConfig struct {
	LookbackDays int `mapstructure:"lookbackDays"`
}

// RecommendationsConfig holds defaults for convert-to-recommendations runs.
type RecommendationsConfig struct {
	TopQueries int `mapstructure:"topQueries"`
}

// TracingConfig toggles OpenTelemetry span export.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"serviceName"`
}

// RateLimitConfig configures the token bucket guarding the generative endpoint.
type RateLimitConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	RecommendationsLimit int  `mapstructure:"recommendationsLimit"`
	WindowSeconds        int  `mapstructure:"windowSeconds"`
}

// Load reads configuration. path may be empty, in which case config.yaml is looked up
// in the working directory and ./config; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional unprefixed names are honoured too.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("llm.apiKey", EnvPrefix+"_LLM_APIKEY", "GEMINI_API_KEY", "OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.url", "")

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.liteModel", "")
	v.SetDefault("llm.standardModel", "")
	v.SetDefault("llm.advancedModel", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlMinutes", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("identify.lookbackDays", 14)
	v.SetDefault("recommendations.topQueries", 10)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "aeo-insights")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.recommendationsLimit", 10)
	v.SetDefault("ratelimit.windowSeconds", 3600)
}

// Validate checks that the configuration has valid values.
// Required secrets (database URL, API key) are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 1 and 65535")
	}

	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("config error: unsupported 'llm.provider' %q", c.LLM.Provider)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config error: 'logging.format' must be json or console")
	}

	if c.Identify.LookbackDays < 1 {
		return fmt.Errorf("config error: 'identify.lookbackDays' must be positive")
	}
	if c.Recommendations.TopQueries < 1 {
		return fmt.Errorf("config error: 'recommendations.topQueries' must be positive")
	}
	if c.Redis.TTLMinutes < 0 {
		return fmt.Errorf("config error: 'redis.ttlMinutes' must be non-negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RecommendationsLimit < 1 || c.RateLimit.WindowSeconds < 1) {
		return fmt.Errorf("config error: rate limit values must be positive when enabled")
	}

	return nil
}
