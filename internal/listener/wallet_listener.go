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

package listener

import (
	"context"
	"fmt"
	"time"

	"social-wallet-client-go/internal/models"

	"go.uber.org/zap"
)

// Start records the current first page as already seen and begins polling.
func (l *WalletListener) Start(ctx context.Context) error {
	zap.L().Info("Starting wallet listener")

	if err := l.baseline(ctx); err != nil {
		return fmt.Errorf("initial wallet fetch failed: %w", err)
	}

	go l.pollLoop(ctx)
	go l.cleanupLoop(ctx)

	zap.L().Info("Wallet listener started successfully",
		zap.Duration("polling_interval", l.pollingInterval),
		zap.Int("known_transactions", l.seenCount()))

	return nil
}

// Stop gracefully stops the wallet listener
func (l *WalletListener) Stop() {
	l.stopOnce.Do(func() {
		zap.L().Info("Stopping wallet listener")
		close(l.stopChan)
	})
	<-l.doneChan
	zap.L().Info("Wallet listener stopped")
}

func (l *WalletListener) baseline(ctx context.Context) error {
	history, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, tx := range history {
		l.observe(tx, now)
	}
	return nil
}

// pollLoop runs the main polling loop
func (l *WalletListener) pollLoop(ctx context.Context) {
	defer close(l.doneChan)

	ticker := time.NewTicker(l.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := l.poll(ctx); err != nil {
				zap.L().Error("Failed to poll wallet", zap.Error(err))
			}
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *WalletListener) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := l.cleanupSeen(time.Now()); removed > 0 {
				zap.L().Debug("Forgot old transactions", zap.Int("removed", removed))
			}
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// poll refreshes the wallet once and reports unseen transactions oldest
// first.
func (l *WalletListener) poll(ctx context.Context) ([]TransactionEvent, error) {
	history, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var events []TransactionEvent
	for i := len(history) - 1; i >= 0; i-- {
		if ev, ok := l.observe(history[i], now); ok {
			events = append(events, ev)
		}
	}

	for _, ev := range events {
		zap.L().Info("Wallet transaction observed",
			zap.String("transaction_id", ev.Transaction.Id),
			zap.String("type", ev.Transaction.Type),
			zap.String("status", ev.Transaction.Status),
			zap.String("previous_status", ev.PreviousStatus),
			zap.String("amount", ev.Transaction.Amount.String()))
		if l.onTransaction != nil {
			l.onTransaction(ev)
		}
	}

	if len(events) == 0 {
		zap.L().Debug("No new wallet transactions", zap.Int("total", len(history)))
	}
	return events, nil
}

func (l *WalletListener) fetch(ctx context.Context) ([]models.Transaction, error) {
	err := l.wallet.FetchWalletAndHistory(ctx, models.PageRequest{Page: 1, Limit: l.pageLimit})
	if err != nil {
		return nil, err
	}
	return l.wallet.Snapshot().History, nil
}
