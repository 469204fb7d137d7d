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

package main

import (
	"context"
	"flag"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "Username to look up (default: your own profile)")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.RequireSession(); err != nil {
		zap.L().Fatal("Not signed in", zap.Error(err))
	}

	profiles := services.App.Profile

	if *username == "" {
		if err := profiles.FetchSelf(ctx); err != nil {
			zap.L().Fatal("Failed to load your profile", zap.Error(err))
		}
		common.PrintProfile(profiles.SelfSnapshot().Data)
		return
	}

	if err := profiles.FetchProfile(ctx, *username); err != nil {
		zap.L().Fatal("Failed to load profile",
			zap.String("username", *username),
			zap.Error(err))
	}
	common.PrintProfile(profiles.Snapshot().Data)
}
