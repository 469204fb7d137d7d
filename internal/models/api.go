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

package models

import "github.com/shopspring/decimal"

// MessageResponse is returned by endpoints that only acknowledge an action
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyOtpResponse tells whether the verified phone already has an account
type VerifyOtpResponse struct {
	IsRegistered bool   `json:"isRegistered"`
	Token        string `json:"token,omitempty"`
	Message      string `json:"message,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token string `json:"token"`
	Data  struct {
		User UserSummary `json:"user"`
	} `json:"data"`
}

// ProfileResponse wraps a single user profile
type ProfileResponse struct {
	Data struct {
		User ProfileDetail `json:"user"`
	} `json:"data"`
}

// WalletBalance is the server's authoritative wallet balance
type WalletBalance struct {
	Balance decimal.Decimal `json:"balance"`
}

// WalletPage is the payload of GET /wallet
type WalletPage struct {
	Wallet     WalletBalance `json:"wallet"`
	History    []Transaction `json:"history"`
	Pagination Pagination    `json:"pagination"`
}

// DepositResult is the payload of POST /wallet/add
type DepositResult struct {
	Wallet  WalletBalance `json:"wallet"`
	History Transaction   `json:"history"`
}

// WithdrawalResult is the payload of POST /wallet/withdraw
type WithdrawalResult struct {
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Withdrawal       Transaction     `json:"withdrawal"`
}

// UserCommunitiesPayload is the payload of GET /communities/mine
type UserCommunitiesPayload struct {
	Statistics CommunityStatistics `json:"statistics"`
	Founded    []Community         `json:"founded"`
	Creator    []Community         `json:"creator"`
	Following  []Community         `json:"following"`
}

// DataEnvelope wraps most API payloads as {"data": ...}
type DataEnvelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}
