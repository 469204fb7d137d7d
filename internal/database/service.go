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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.TokenStore.
var _ store.TokenStore = (*Service)(nil)

// Service persists session state in a local SQLite file.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite session database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service, err := newServiceFromDB(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.L().Info("Session database initialized successfully")
	return service, nil
}

func newServiceFromDB(ctx context.Context, db *sql.DB) (*Service, error) {
	if _, err := db.ExecContext(ctx, querySchema); err != nil {
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}
	return &Service{db: db}, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, queryGetValue, store.TokenKey).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrTokenNotFound
		}
		zap.L().Error("Failed to load persisted token", zap.Error(err))
		return "", fmt.Errorf("unable to load token: %w", err)
	}
	return token, nil
}

func (s *Service) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("refusing to persist an empty token")
	}
	if _, err := s.db.ExecContext(ctx, queryUpsertValue, store.TokenKey, token); err != nil {
		zap.L().Error("Failed to persist token", zap.Error(err))
		return fmt.Errorf("unable to save token: %w", err)
	}
	zap.L().Debug("Persisted session token")
	return nil
}

func (s *Service) DeleteToken(ctx context.Context) error {
	result, err := s.db.ExecContext(ctx, queryDeleteValue, store.TokenKey)
	if err != nil {
		zap.L().Error("Failed to delete persisted token", zap.Error(err))
		return fmt.Errorf("unable to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	zap.L().Debug("Removed persisted session token", zap.Int64("rows_affected", rowsAffected))
	return nil
}
