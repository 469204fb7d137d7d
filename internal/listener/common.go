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
	"sync"
	"time"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/state"
)

// WalletListenerConfig contains configuration for WalletListener
type WalletListenerConfig struct {
	Wallet          *state.WalletStore
	PageLimit       int
	PollingInterval time.Duration
	// Retention bounds how long a transaction id is remembered after it was
	// last seen on the first page.
	Retention       time.Duration
	CleanupInterval time.Duration
	OnTransaction   func(TransactionEvent)
}

// TransactionEvent reports a transaction that is new, or whose status
// changed since the previous poll.
type TransactionEvent struct {
	Transaction    models.Transaction
	PreviousStatus string
}

func (e TransactionEvent) New() bool {
	return e.PreviousStatus == ""
}

type seenTransaction struct {
	status   string
	lastSeen time.Time
}

// WalletListener refreshes the wallet on an interval and reports
// transactions it has not seen before.
type WalletListener struct {
	wallet        *state.WalletStore
	pageLimit     int
	onTransaction func(TransactionEvent)

	// State management for seen transactions
	seen            map[string]seenTransaction
	mutex           sync.RWMutex
	pollingInterval time.Duration
	retention       time.Duration
	cleanupInterval time.Duration

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewWalletListener creates a new wallet listener
func NewWalletListener(cfg WalletListenerConfig) *WalletListener {
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = 30 * time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 20
	}
	return &WalletListener{
		wallet:          cfg.Wallet,
		pageLimit:       cfg.PageLimit,
		onTransaction:   cfg.OnTransaction,
		seen:            make(map[string]seenTransaction),
		pollingInterval: cfg.PollingInterval,
		retention:       cfg.Retention,
		cleanupInterval: cfg.CleanupInterval,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// observe records tx and returns the event to report, if any.
func (l *WalletListener) observe(tx models.Transaction, now time.Time) (TransactionEvent, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	prev, ok := l.seen[tx.Id]
	l.seen[tx.Id] = seenTransaction{status: tx.Status, lastSeen: now}

	switch {
	case !ok:
		return TransactionEvent{Transaction: tx}, true
	case prev.status != tx.Status:
		return TransactionEvent{Transaction: tx, PreviousStatus: prev.status}, true
	default:
		return TransactionEvent{}, false
	}
}

func (l *WalletListener) cleanupSeen(now time.Time) int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	removed := 0
	for id, s := range l.seen {
		if now.Sub(s.lastSeen) > l.retention {
			delete(l.seen, id)
			removed++
		}
	}
	return removed
}

func (l *WalletListener) seenCount() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.seen)
}
