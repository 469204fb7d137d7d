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

package state

import (
	"context"
	"errors"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppConfig struct {
	Client *api.Client
	Tokens store.TokenStore
	// Logger defaults to zap.L().
	Logger *zap.Logger
	// PageLimit is the wallet page size used by Refresh.
	PageLimit int
}

// App is the application-state container handed to front-ends. Build one
// per process with NewApp.
type App struct {
	Hub       *Hub
	Auth      *AuthStore
	Profile   *ProfileStore
	Wallet    *WalletStore
	Community *CommunityStore

	logger    *zap.Logger
	pageLimit int
}

// Snapshot is a point-in-time copy of every slice.
type Snapshot struct {
	Session   Session
	Profile   ProfileView
	Self      SelfView
	Wallet    WalletState
	Community CommunityState
}

func NewApp(ctx context.Context, cfg AppConfig) (*App, error) {
	if cfg.Client == nil {
		return nil, errors.New("api client is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("token store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = api.DefaultLimit
	}

	hub := NewHub()
	auth := NewAuthStore(cfg.Client, cfg.Tokens, hub, logger)
	app := &App{
		Hub:       hub,
		Auth:      auth,
		Profile:   NewProfileStore(cfg.Client, auth, hub, logger),
		Wallet:    NewWalletStore(cfg.Client, auth, hub, logger),
		Community: NewCommunityStore(cfg.Client, auth, hub, logger),
		logger:    logger,
		pageLimit: pageLimit,
	}

	if err := auth.Rehydrate(ctx); err != nil {
		logger.Warn("Starting without a persisted session", zap.Error(err))
	}
	return app, nil
}

// Close cancels every in-flight request of every store.
func (a *App) Close() {
	a.Auth.Cancel()
	a.Profile.Cancel()
	a.Wallet.Cancel()
	a.Community.Cancel()
}

func (a *App) Snapshot() Snapshot {
	return Snapshot{
		Session:   a.Auth.Snapshot(),
		Profile:   a.Profile.Snapshot(),
		Self:      a.Profile.SelfSnapshot(),
		Wallet:    a.Wallet.Snapshot(),
		Community: a.Community.Snapshot(),
	}
}

// Refresh reloads the session user, the first wallet page and the
// caller's communities in parallel. The first failure cancels the rest.
func (a *App) Refresh(ctx context.Context) error {
	if a.Auth.Token() == "" {
		return ErrNotAuthenticated
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Auth.FetchMe(gctx)
	})
	g.Go(func() error {
		return a.Wallet.FetchWalletAndHistory(gctx, models.PageRequest{Page: 1, Limit: a.pageLimit})
	})
	g.Go(func() error {
		return a.Community.FetchUserCommunities(gctx)
	})

	if err := g.Wait(); err != nil {
		a.logger.Warn("Refresh incomplete", zap.Error(err))
		return err
	}
	return nil
}
