package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// SlowRequestThresholdMS is the request duration above which a warning is logged.
	SlowRequestThresholdMS int `mapstructure:"slow_request_threshold_ms" validate:"gt=0"`

	// RateLimitRPS and RateLimitBurst configure the per-client token bucket.
	// A zero rate disables limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

// SlowRequestThreshold returns SlowRequestThresholdMS as a duration.
func (c ServerConfig) SlowRequestThreshold() time.Duration {
	return time.Duration(c.SlowRequestThresholdMS) * time.Millisecond
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// SeedConfig controls the startup content seeder.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Admin account created on first seed. Left empty, no admin is created.
	AdminUsername string `mapstructure:"admin_username" validate:"omitempty,min=3,max=50"`
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"omitempty,min=12,max=72"`
}

// HasAdmin reports whether an admin account is configured.
func (c SeedConfig) HasAdmin() bool {
	return c.AdminUsername != ""
}

// SchedulerConfig controls the periodic review sweep.
type SchedulerConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	SweepIntervalMinutes int  `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
	OverdueGraceHours    int  `mapstructure:"overdue_grace_hours" validate:"gt=0"`
	StaleProgressDays    int  `mapstructure:"stale_progress_days" validate:"gt=0"`
}

// SweepInterval returns SweepIntervalMinutes as a duration.
func (c SchedulerConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// OverdueGrace returns OverdueGraceHours as a duration.
func (c SchedulerConfig) OverdueGrace() time.Duration {
	return time.Duration(c.OverdueGraceHours) * time.Hour
}

// StaleProgressAge returns StaleProgressDays as a duration.
func (c SchedulerConfig) StaleProgressAge() time.Duration {
	return time.Duration(c.StaleProgressDays) * 24 * time.Hour
}
