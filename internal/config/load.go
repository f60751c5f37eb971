package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrIncompleteAdmin is returned when a seed admin username is set without
// an email and password.
var ErrIncompleteAdmin = errors.New("seed admin requires username, email and password")

// EnvPrefix is prepended to every environment variable, e.g.
// ACADEMY_DATABASE_URL for database.url.
const EnvPrefix = "ACADEMY"

var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.slow_request_threshold_ms":    1000,
	"server.rate_limit_rps":               20.0,
	"server.rate_limit_burst":             40,
	"database.url":                        "",
	"database.max_open_conns":             10,
	"database.max_idle_conns":             5,
	"auth.jwt_secret":                     "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
	"seed.enabled":                        true,
	"seed.admin_username":                 "",
	"seed.admin_email":                    "",
	"seed.admin_password":                 "",
	"scheduler.enabled":                   true,
	"scheduler.sweep_interval_minutes":    60,
	"scheduler.overdue_grace_hours":       24,
	"scheduler.stale_progress_days":       30,
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	cfg, _, err := load()
	return cfg, err
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load() (*Config, *viper.Viper, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Seed.HasAdmin() && (cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "") {
		return nil, fmt.Errorf("config validation failed: %w", ErrIncompleteAdmin)
	}
	return &cfg, nil
}
