package models

import "time"

// Config represents the application configuration
type Config struct {
	Api      ApiConfig
	Session  SessionConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Wallet   WalletConfig
	Auth     AuthConfig
	LogLevel string
}

// ApiConfig holds REST API client settings
type ApiConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

// SessionConfig selects where the bearer token is persisted
type SessionConfig struct {
	TokenStore string // "sqlite", "redis" or "memory"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// RedisConfig holds the redis token store settings
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration
}

// WalletConfig holds wallet listener and paging settings
type WalletConfig struct {
	PollingInterval time.Duration
	PageLimit       int
}

// AuthConfig holds phone verification settings
type AuthConfig struct {
	OtpResendInterval time.Duration
	CountriesFile     string
}
