package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amidelab/enumerator/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Input     InputConfig
	Reaction  ReactionConfig
	Log       LogConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// InputConfig names the two reagent files
type InputConfig struct {
	Acid  string `mapstructure:"acid"`
	Amine string `mapstructure:"amine"`
}

// ReactionConfig holds the transform applied to every pair
type ReactionConfig struct {
	Pattern string `mapstructure:"pattern"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // console or json
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxPairs       int      `mapstructure:"max_pairs"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// CacheConfig holds parsed-structure cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"acid":       "input.acid",
	"amine":      "input.amine",
	"reaction":   "reaction.pattern",
	"log-level":  "log.level",
	"log-format": "log.format",
	"port":       "server.port",
}

// Load loads configuration from flags, environment variables and config
// files, in that order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("enumerate")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/enumerate/")

	// Environment variable settings
	v.SetEnvPrefix("ENUMERATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	// Read config file (optional - env vars and defaults still apply)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: error reading config file: %w", domain.ErrConfig, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %w", domain.ErrConfig, err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration: %w", domain.ErrConfig, err)
	}

	return &config, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("%w: bind flag --%s: %w", domain.ErrConfig, name, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Input has no usable default; the keys must exist for env lookup
	v.SetDefault("input.acid", "")
	v.SetDefault("input.amine", "")

	// Reaction defaults
	v.SetDefault("reaction.pattern", domain.AmideCouplingPattern)

	// Log defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.max_pairs", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.burst", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
}

// validate validates the configuration
func validate(config *Config) error {
	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got: %s", config.Log.Level)
	}

	if config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	if strings.TrimSpace(config.Reaction.Pattern) == "" {
		return fmt.Errorf("reaction pattern must not be empty")
	}

	if config.Server.MaxPairs <= 0 {
		return fmt.Errorf("server max_pairs must be positive, got: %d", config.Server.MaxPairs)
	}

	if config.RateLimit.PerIP <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit per_ip and burst must be positive")
	}

	if config.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got: %s", config.Cache.TTL)
	}

	return nil
}

// ValidateEnumerate checks the settings only the command-line enumeration
// needs
func (c Config) ValidateEnumerate() error {
	if c.Input.Acid == "" {
		return fmt.Errorf("%w: acid reagent file is required (--acid or ENUMERATE_INPUT_ACID)", domain.ErrConfig)
	}
	if c.Input.Amine == "" {
		return fmt.Errorf("%w: amine reagent file is required (--amine or ENUMERATE_INPUT_AMINE)", domain.ErrConfig)
	}
	return nil
}
