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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/listener"

	"go.uber.org/zap"
)

func printEvent(ev listener.TransactionEvent) {
	if ev.New() {
		fmt.Printf("🆕 %s\n", common.TransactionLine(ev.Transaction))
		return
	}
	fmt.Printf("🔄 %s (was %s)\n", common.TransactionLine(ev.Transaction), ev.PreviousStatus)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting wallet listener")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.RequireSession(); err != nil {
		zap.L().Fatal("Not signed in", zap.Error(err))
	}

	l := listener.NewWalletListener(listener.WalletListenerConfig{
		Wallet:          services.App.Wallet,
		PageLimit:       cfg.Wallet.PageLimit,
		PollingInterval: cfg.Wallet.PollingInterval,
		OnTransaction:   printEvent,
	})

	if err := l.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start wallet listener", zap.Error(err))
	}

	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping listener...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Listener stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
