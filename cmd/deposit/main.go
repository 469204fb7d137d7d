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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	amountFlag := flag.String("amount", "", "Amount to add (required)")
	typeFlag := flag.String("type", models.TransactionRecharge, "Transaction type recorded for the deposit")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *amountFlag == "" {
		zap.L().Fatal("Missing required flag: --amount")
	}
	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		zap.L().Fatal("Invalid amount format", zap.String("amount", *amountFlag), zap.Error(err))
	}

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

	wallet := services.App.Wallet
	err = wallet.AddMoney(ctx, models.DepositRequest{
		Amount:          amount,
		TransactionType: *typeFlag,
	})
	if err != nil {
		common.PrintHeader("DEPOSIT FAILED", common.DefaultWidth)
		fmt.Printf("Error: %s\n", wallet.Snapshot().Error)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Deposit failed", zap.Error(err))
	}

	snap := wallet.Snapshot()
	common.PrintHeader("DEPOSIT COMPLETE", common.DefaultWidth)
	fmt.Printf("Amount:       %s\n", common.FormatAmount(amount))
	fmt.Printf("New Balance:  %s\n", common.FormatAmount(snap.Balance))
	if len(snap.History) > 0 {
		fmt.Printf("Transaction:  %s\n", common.TransactionLine(snap.History[0]))
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
