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
	"strings"

	"social-wallet-client-go/internal/common"
	"social-wallet-client-go/internal/config"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type withdrawalRequest struct {
	amount decimal.Decimal
	bank   models.BankDetails
}

func parseAndValidateFlags() (*withdrawalRequest, error) {
	amountFlag := flag.String("amount", "", "Amount to withdraw (required)")
	accountFlag := flag.String("account", "", "Bank account number (required)")
	ifscFlag := flag.String("ifsc", "", "IFSC code of the bank branch (required)")
	holderFlag := flag.String("holder", "", "Account holder name (required)")
	flag.Parse()

	if *amountFlag == "" {
		return nil, fmt.Errorf("missing required flag: --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	return &withdrawalRequest{
		amount: amount,
		bank: models.BankDetails{
			AccountNumber:     strings.TrimSpace(*accountFlag),
			IfscCode:          strings.ToUpper(strings.TrimSpace(*ifscFlag)),
			AccountHolderName: strings.TrimSpace(*holderFlag),
		},
	}, nil
}

// maskAccount keeps the last four digits of an account number.
func maskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	return strings.Repeat("*", len(account)-4) + account[len(account)-4:]
}

func printWithdrawalSummary(req *withdrawalRequest, currentBalance decimal.Decimal) {
	common.PrintHeader("WITHDRAWAL REQUEST", common.DefaultWidth)
	fmt.Printf("Account Holder:    %s\n", req.bank.AccountHolderName)
	fmt.Printf("Account:           %s (%s)\n", maskAccount(req.bank.AccountNumber), req.bank.IfscCode)
	fmt.Printf("Current Balance:   %s\n", common.FormatAmount(currentBalance))
	fmt.Printf("Withdrawal Amount: %s\n", common.FormatAmount(req.amount))
	common.PrintSeparator("=", common.DefaultWidth)
}

func printFailure(req *withdrawalRequest, wallet state.WalletState) {
	common.PrintHeader("WITHDRAWAL FAILED", common.DefaultWidth)
	fmt.Printf("Balance:           %s\n", common.FormatAmount(wallet.Balance))
	fmt.Printf("Requested Amount:  %s\n", common.FormatAmount(req.amount))
	fmt.Printf("Error:             %s\n", wallet.Error)
	common.PrintSeparator("=", common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse and validate command line flags
	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	zap.L().Info("Starting withdrawal process",
		zap.String("amount", req.amount.String()),
		zap.String("account", maskAccount(req.bank.AccountNumber)),
		zap.String("ifsc", req.bank.IfscCode))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.RequireSession(); err != nil {
		zap.L().Fatal("Not signed in", zap.Error(err))
	}

	wallet := services.App.Wallet

	// The balance check runs against the server's latest figure
	if err := wallet.FetchWalletAndHistory(ctx, models.PageRequest{Page: 1, Limit: cfg.Wallet.PageLimit}); err != nil {
		zap.L().Fatal("Failed to load wallet", zap.Error(err))
	}

	printWithdrawalSummary(req, wallet.Snapshot().Balance)

	fmt.Println("🔄 Submitting withdrawal...")
	err = wallet.WithdrawMoney(ctx, models.WithdrawalRequest{
		Amount:      req.amount,
		BankDetails: req.bank,
	})
	if err != nil {
		printFailure(req, wallet.Snapshot())
		zap.L().Fatal("Withdrawal failed", zap.Error(err))
	}

	snap := wallet.Snapshot()
	fmt.Printf("✅ Withdrawal submitted successfully!\n")
	if len(snap.History) > 0 {
		tx := snap.History[0]
		fmt.Printf("   Transaction ID:    %s\n", tx.Id)
		fmt.Printf("   Status:            %s\n", tx.Status)
	}
	fmt.Printf("   Remaining Balance: %s\n\n", common.FormatAmount(snap.Balance))

	zap.L().Info("Withdrawal completed successfully",
		zap.String("amount", req.amount.String()),
		zap.String("remaining_balance", snap.Balance.String()))
}
