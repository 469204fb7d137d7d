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


// Package redisstore persists the session token in Redis so several client
// processes (for example the listener and the interactive tools on one host)
// share one login.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check: *Store must satisfy store.TokenStore.
var _ store.TokenStore = (*Store)(nil)

type Store struct {
	client *redis.Client
	key    string
}

func NewStore(ctx context.Context, cfg models.RedisConfig) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		PoolSize:    2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.L().Info("Connected to redis token store", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return newStore(client, cfg.KeyPrefix), nil
}

func newStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, key: tokenKey(prefix)}
}

func tokenKey(prefix string) string {
	return prefix + store.TokenKey
}

func (s *Store) LoadToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", store.ErrTokenNotFound
		}
		return "", fmt.Errorf("unable to load token: %w", err)
	}
	return token, nil
}

// SaveToken stores the token without expiry; the API decides when it dies.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("refusing to persist an empty token")
	}
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("unable to delete token: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if err := s.client.Close(); err != nil {
		zap.L().Warn("Failed to close redis client", zap.Error(err))
	}
}
