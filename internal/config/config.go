package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	AutoMigrate bool

	LogLevel  string
	LogFormat string
	LogFile   string
	GinMode   string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SignatureIndexTTL time.Duration

	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("signature_index_ttl", time.Duration(0))
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FromEnv reads configuration from the process environment only. Negative
// numbers and durations fall back to their defaults. An unknown LOG_FORMAT
// or GIN_MODE is an error.
func FromEnv() (Config, error) {
	return validated(fromViper(newViper()))
}

// Load reads an optional config file (yaml, json or toml) beneath the
// environment. Environment variables win over file values.
func Load(path string) (Config, error) {
	if path == "" {
		return FromEnv()
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return validated(fromViper(v))
}

func validated(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		HTTPAddr:          stringDefault(v, "http_addr", ":8080"),
		PostgresDSN:       strings.TrimSpace(v.GetString("postgres_dsn")),
		AutoMigrate:       v.GetBool("auto_migrate"),
		LogLevel:          stringDefault(v, "log_level", "info"),
		LogFormat:         strings.ToLower(stringDefault(v, "log_format", "json")),
		LogFile:           strings.TrimSpace(v.GetString("log_file")),
		GinMode:           stringDefault(v, "gin_mode", "release"),
		RedisAddr:         strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           nonNegativeInt(v, "redis_db"),
		SignatureIndexTTL: nonNegativeDuration(v, "signature_index_ttl"),
		ShutdownTimeout:   positiveDuration(v, "shutdown_timeout", 10*time.Second),
	}
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE %q", c.GinMode)
	}
	return nil
}

// Mode names the persistence backend for health reporting.
func (c Config) Mode() string {
	if c.PostgresDSN == "" {
		return "memory"
	}
	return "postgres"
}

func stringDefault(v *viper.Viper, key, def string) string {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return def
	}
	return s
}

func nonNegativeInt(v *viper.Viper, key string) int {
	n := v.GetInt(key)
	if n < 0 {
		return 0
	}
	return n
}

func nonNegativeDuration(v *viper.Viper, key string) time.Duration {
	d := v.GetDuration(key)
	if d < 0 {
		return 0
	}
	return d
}

func positiveDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d := v.GetDuration(key)
	if d <= 0 {
		return def
	}
	return d
}
