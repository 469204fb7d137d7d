package main

import (
	"context"
	"flag"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	page := flag.Int("page", 1, "History page")
	limit := flag.Int("limit", 0, "Transactions per page (default: WALLET_PAGE_LIMIT)")
	txDirection := flag.String("type", models.FilterAll, "Filter by direction: payin, payout or all")
	txType := flag.String("txtype", models.FilterAll, "Filter by category: recharge, reward, refund, withdrawal, other or all")
	status := flag.String("status", models.FilterAll, "Filter by status: pending, completed, failed or all")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}
	if *limit <= 0 {
		*limit = cfg.Wallet.PageLimit
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

	wallet := services.App.Wallet
	if err := wallet.FetchWalletAndHistory(ctx, models.PageRequest{Page: *page, Limit: *limit}); err != nil {
		zap.L().Fatal("Failed to load wallet", zap.Error(err))
	}

	wallet.SetFilters(models.TransactionFilters{
		Type:            *txDirection,
		TransactionType: *txType,
		Status:          *status,
	})

	common.PrintWallet(wallet.Snapshot(), wallet.FilteredHistory())
}
