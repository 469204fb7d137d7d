/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"social-wallet-client-go/internal/models"
)

// Token store kinds accepted by TOKEN_STORE
const (
	TokenStoreSqlite = "sqlite"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

func Load() (*models.Config, error) {
	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	redisDialTimeout, err := getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	pollingInterval, err := getEnvDuration("WALLET_POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	otpResendInterval, err := getEnvDuration("OTP_RESEND_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &models.Config{
		Api: models.ApiConfig{
			BaseURL:        strings.TrimSuffix(getEnvString("API_BASE_URL", "http://localhost:5013/api"), "/"),
			RequestTimeout: requestTimeout,
			RateLimit:      getEnvFloat("API_RATE_LIMIT", 5),
			RateBurst:      getEnvInt("API_RATE_BURST", 10),
		},
		Session: models.SessionConfig{
			TokenStore: strings.ToLower(getEnvString("TOKEN_STORE", TokenStoreSqlite)),
		},
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "session.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: connMaxLifetime,
			PingTimeout:     pingTimeout,
		},
		Redis: models.RedisConfig{
			Addr:        getEnvString("REDIS_ADDR", "localhost:6379"),
			Password:    getEnvString("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			KeyPrefix:   getEnvString("REDIS_KEY_PREFIX", "social-wallet:"),
			DialTimeout: redisDialTimeout,
		},
		Wallet: models.WalletConfig{
			PollingInterval: pollingInterval,
			PageLimit:       getEnvInt("WALLET_PAGE_LIMIT", 20),
		},
		Auth: models.AuthConfig{
			OtpResendInterval: otpResendInterval,
			CountriesFile:     getEnvString("COUNTRIES_FILE", ""),
		},
		LogLevel: strings.ToLower(getEnvString("LOG_LEVEL", "info")),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with
func Validate(cfg *models.Config) error {
	u, err := url.Parse(cfg.Api.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL: %q", cfg.Api.BaseURL)
	}
	if cfg.Api.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", cfg.Api.RequestTimeout)
	}
	if cfg.Api.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive, got %v", cfg.Api.RateLimit)
	}
	if cfg.Api.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive, got %d", cfg.Api.RateBurst)
	}

	switch cfg.Session.TokenStore {
	case TokenStoreSqlite, TokenStoreRedis, TokenStoreMemory:
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q (want sqlite, redis or memory)", cfg.Session.TokenStore)
	}

	if cfg.Wallet.PollingInterval <= 0 {
		return fmt.Errorf("wallet polling interval must be positive, got %v", cfg.Wallet.PollingInterval)
	}
	if cfg.Wallet.PageLimit <= 0 || cfg.Wallet.PageLimit > 100 {
		return fmt.Errorf("wallet page limit must be between 1 and 100, got %d", cfg.Wallet.PageLimit)
	}
	if cfg.Auth.OtpResendInterval < time.Second {
		return fmt.Errorf("otp resend interval must be at least 1s, got %v", cfg.Auth.OtpResendInterval)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
