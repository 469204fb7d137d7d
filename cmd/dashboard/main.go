package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/state"

	"go.uber.org/zap"
)

func main() {
	verbose := flag.Bool("events", false, "Print store events as they happen")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall refresh timeout")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.RequireSession(); err != nil {
		zap.L().Fatal("Not signed in", zap.Error(err))
	}

	app := services.App
	if *verbose {
		unsubscribe := app.Hub.Subscribe(func(ev state.Event) {
			fmt.Printf("· %-10s %-24s %s %s\n", ev.Slice, ev.Action, ev.Phase, ev.Error)
		})
		defer unsubscribe()
	}

	start := time.Now()
	if err := app.Refresh(ctx); err != nil {
		zap.L().Fatal("Failed to refresh dashboard", zap.Error(err))
	}
	zap.L().Debug("Dashboard refreshed", zap.Duration("elapsed", time.Since(start)))

	snap := app.Snapshot()
	common.PrintHeader("DASHBOARD", common.WideWidth)
	if u := snap.Session.User; u != nil {
		fmt.Printf("Signed in as %s (@%s)\n", u.Name, u.Username)
	}
	fmt.Printf("Balance:     %s\n", common.FormatAmount(snap.Wallet.Balance))
	stats := snap.Community.UserCommunities.Statistics
	fmt.Printf("Communities: %d founded, %d creator, %d following\n",
		stats.FoundedCount, stats.CreatorCount, stats.FollowingCount)
	common.PrintBoxSeparator(common.WideWidth - 1)
	fmt.Println("Recent transactions")
	recent := snap.Wallet.History
	if len(recent) > 5 {
		recent = recent[:5]
	}
	common.PrintTransactions(recent)
	common.PrintSeparator("=", common.WideWidth)
}
