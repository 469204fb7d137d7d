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

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	keyWalletFetch = "fetch"
	keyWalletMove  = "move:"
)

// WalletState is the WalletStore slice. Balance only ever holds a value
// returned by the server.
type WalletState struct {
	Balance    decimal.Decimal
	History    []models.Transaction
	Pagination models.Pagination
	Filters    models.TransactionFilters
	Loading    bool
	Error      string
}

type WalletStore struct {
	base
	client *api.Client
	auth   TokenSource
	wallet WalletState
}

func NewWalletStore(client *api.Client, auth TokenSource, hub *Hub, logger *zap.Logger) *WalletStore {
	s := &WalletStore{
		client: client,
		auth:   auth,
		wallet: WalletState{
			Balance:    decimal.Zero,
			Pagination: models.Pagination{Page: api.DefaultPage, Limit: api.DefaultLimit},
			Filters:    models.DefaultFilters(),
		},
	}
	s.init(SliceWallet, hub, logger)
	return s
}

func (s *WalletStore) Snapshot() WalletState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *WalletStore) snapshotLocked() WalletState {
	snap := s.wallet
	snap.History = append([]models.Transaction(nil), s.wallet.History...)
	snap.Loading = s.inFlightLocked("")
	return snap
}

// FilteredHistory applies the current filters to the current history.
func (s *WalletStore) FilteredHistory() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterHistory(s.wallet.History, s.wallet.Filters)
}

// FetchWalletAndHistory replaces balance, history and pagination with one
// page from the server. Zero page fields default to 1 and 20.
func (s *WalletStore) FetchWalletAndHistory(ctx context.Context, page models.PageRequest) error {
	const action = "fetchWalletAndHistory"

	token := s.auth.Token()
	if token == "" {
		s.mu.Lock()
		s.wallet.Error = ErrNotAuthenticated.Error()
		s.mu.Unlock()
		return s.rejectLocal(action, ErrNotAuthenticated)
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keyWalletFetch, action)
	s.wallet.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.GetWallet(t.ctx, token, page)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.wallet.Balance = resp.Wallet.Balance
		s.wallet.History = append([]models.Transaction(nil), resp.History...)
		s.wallet.Pagination = resp.Pagination
	case PhaseRejected:
		s.wallet.Error = errorMessage(err)
	}
	s.mu.Unlock()

	return s.report(t, phase, err)
}

// AddMoney credits the wallet. The server's balance replaces the local one
// and the returned record is prepended; pagination is left as is.
func (s *WalletStore) AddMoney(ctx context.Context, req models.DepositRequest) error {
	const action = "addMoney"

	if err := validation.Amount(req.Amount); err != nil {
		s.mu.Lock()
		s.wallet.Error = errorMessage(err)
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}
	if req.TransactionType == "" {
		req.TransactionType = models.TransactionRecharge
	}

	s.mu.Lock()
	t := s.beginLocked(ctx, keyWalletMove+uuid.NewString(), action)
	s.wallet.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.AddMoney(t.ctx, s.auth.Token(), req)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.wallet.Balance = resp.Wallet.Balance
		s.wallet.History = prepend(s.wallet.History, resp.History)
	case PhaseRejected:
		s.wallet.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if phase == PhaseFulfilled {
		s.logger.Info("Money added",
			zap.String("amount", req.Amount.String()),
			zap.String("transaction_type", req.TransactionType),
			zap.String("balance", resp.Wallet.Balance.String()))
	}
	return s.report(t, phase, err)
}

// WithdrawMoney checks amount, balance and bank details locally before any
// request is made.
func (s *WalletStore) WithdrawMoney(ctx context.Context, req models.WithdrawalRequest) error {
	const action = "withdrawMoney"

	s.mu.Lock()
	err := validation.Amount(req.Amount)
	if err == nil && req.Amount.GreaterThan(s.wallet.Balance) {
		err = &validation.ValidationError{Field: "amount", Message: "Insufficient balance"}
	}
	if err == nil {
		err = validation.BankDetails(req.BankDetails)
	}
	if err != nil {
		s.wallet.Error = errorMessage(err)
		s.mu.Unlock()
		return s.rejectLocal(action, err)
	}

	t := s.beginLocked(ctx, keyWalletMove+uuid.NewString(), action)
	s.wallet.Error = ""
	s.mu.Unlock()
	s.publish(action, PhasePending, "")

	resp, err := s.client.Withdraw(t.ctx, s.auth.Token(), req)

	s.mu.Lock()
	phase := s.settleLocked(t, err)
	switch phase {
	case PhaseFulfilled:
		s.wallet.Balance = resp.RemainingBalance
		s.wallet.History = prepend(s.wallet.History, resp.Withdrawal)
	case PhaseRejected:
		s.wallet.Error = errorMessage(err)
	}
	s.mu.Unlock()

	if phase == PhaseFulfilled {
		s.logger.Info("Withdrawal requested",
			zap.String("amount", req.Amount.String()),
			zap.String("transaction_id", resp.Withdrawal.Id),
			zap.String("remaining_balance", resp.RemainingBalance.String()))
	}
	return s.report(t, phase, err)
}

// SetFilters merges the non-empty fields of partial into the filters.
func (s *WalletStore) SetFilters(partial models.TransactionFilters) {
	s.mu.Lock()
	if partial.Type != "" {
		s.wallet.Filters.Type = partial.Type
	}
	if partial.TransactionType != "" {
		s.wallet.Filters.TransactionType = partial.TransactionType
	}
	if partial.Status != "" {
		s.wallet.Filters.Status = partial.Status
	}
	s.mu.Unlock()
	s.publish("setFilters", PhaseLocal, "")
}

func (s *WalletStore) ClearFilters() {
	s.mu.Lock()
	s.wallet.Filters = models.DefaultFilters()
	s.mu.Unlock()
	s.publish("clearFilters", PhaseLocal, "")
}

func prepend(history []models.Transaction, tx models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(history)+1)
	out = append(out, tx)
	return append(out, history...)
}
