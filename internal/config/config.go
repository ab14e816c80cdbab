// Package config loads and validates application configuration from the
// environment and optional config files.
package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to verify bearer tokens issued by the
	// identity provider. Verification only; this service never signs tokens.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// VerifyTimeout bounds a single token verification plus profile lookup.
	VerifyTimeout time.Duration `mapstructure:"verify_timeout" validate:"required"`

	// ProfileCacheTTL controls how long verified identity profiles are
	// served from the in-process cache before being re-read.
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl" validate:"required"`
}
