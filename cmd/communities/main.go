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
	"fmt"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"

	"go.uber.org/zap"
)

type options struct {
	id            string
	follow        bool
	becomeCreator bool
	create        bool
	name          string
	bio           string
	cost          string
	photo         string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.id, "id", "", "Community id to show or act on")
	flag.BoolVar(&o.follow, "follow", false, "Toggle following the community given by -id")
	flag.BoolVar(&o.becomeCreator, "become-creator", false, "Become a creator of the community given by -id")
	flag.BoolVar(&o.create, "create", false, "Found a new community (-name required)")
	flag.StringVar(&o.name, "name", "", "Name of the new community")
	flag.StringVar(&o.bio, "bio", "", "Bio of the new community")
	flag.StringVar(&o.cost, "cost", "", "Joining cost of the new community")
	flag.StringVar(&o.photo, "photo", "", "Path to the new community's profile photo")
	flag.Parse()
	return o
}

// reportAction prints and clears the shared action status.
func reportAction(communities *state.CommunityStore, err error) {
	action := communities.Snapshot().Action
	defer communities.ClearActionStatus()

	if err != nil {
		fmt.Printf("❌ %s\n", action.Error)
		zap.L().Fatal("Community action failed", zap.Error(err))
	}
	if action.Message != "" {
		fmt.Printf("✅ %s\n", action.Message)
	} else {
		fmt.Println("✅ Done")
	}
}

func create(ctx context.Context, communities *state.CommunityStore, o options) {
	form := models.NewCommunity{
		Name: o.name,
		Bio:  o.bio,
		Cost: o.cost,
	}
	if o.photo != "" {
		upload, err := common.LoadUpload(o.photo)
		if err != nil {
			zap.L().Fatal("Invalid community photo", zap.Error(err))
		}
		form.ProfilePhoto = upload
	}
	reportAction(communities, communities.CreateCommunity(ctx, form))
	common.PrintUserCommunities(communities.Snapshot().UserCommunities)
}

func main() {
	o := parseFlags()

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

	communities := services.App.Community

	if o.create {
		create(ctx, communities, o)
		return
	}

	if o.id == "" {
		if o.follow || o.becomeCreator {
			zap.L().Fatal("-follow and -become-creator need -id")
		}
		if err := communities.FetchUserCommunities(ctx); err != nil {
			zap.L().Fatal("Failed to load communities", zap.Error(err))
		}
		common.PrintUserCommunities(communities.Snapshot().UserCommunities)
		return
	}

	if err := communities.FetchCommunityByID(ctx, o.id); err != nil {
		zap.L().Fatal("Failed to load community", zap.String("community_id", o.id), zap.Error(err))
	}

	switch {
	case o.follow:
		reportAction(communities, communities.ToggleFollowCommunity(ctx, o.id))
	case o.becomeCreator:
		reportAction(communities, communities.BecomeCreator(ctx, o.id))
	}

	common.PrintCommunity(communities.Snapshot().Current.Data)
}
