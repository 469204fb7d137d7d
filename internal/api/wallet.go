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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"social-wallet-client-go/internal/models"
)

// Default wallet history page
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

func (c *Client) GetWallet(ctx context.Context, token string, page models.PageRequest) (*models.WalletPage, error) {
	if page.Page <= 0 {
		page.Page = DefaultPage
	}
	if page.Limit <= 0 {
		page.Limit = DefaultLimit
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("limit", strconv.Itoa(page.Limit))

	cl := call{
		op:       "get_wallet",
		method:   http.MethodGet,
		path:     "/wallet?" + query.Encode(),
		token:    token,
		fallback: "Failed to fetch wallet",
	}
	var resp models.WalletPage
	if err := c.doJSON(ctx, cl, &resp, "data"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Amounts go over the wire as JSON numbers.
type depositBody struct {
	Amount          json.Number `json:"amount"`
	TransactionType string      `json:"transactionType"`
}

type withdrawalBody struct {
	Amount      json.Number        `json:"amount"`
	BankDetails models.BankDetails `json:"bankDetails"`
}

func (c *Client) AddMoney(ctx context.Context, token string, req models.DepositRequest) (*models.DepositResult, error) {
	if req.TransactionType == "" {
		req.TransactionType = models.TransactionRecharge
	}
	payload := depositBody{
		Amount:          json.Number(req.Amount.String()),
		TransactionType: req.TransactionType,
	}
	cl, err := c.jsonCall("add_money", http.MethodPost, "/wallet/add", token, payload, "Failed to add money")
	if err != nil {
		return nil, err
	}
	var resp models.DepositResult
	if err := c.doJSON(ctx, cl, &resp, "data"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Withdraw(ctx context.Context, token string, req models.WithdrawalRequest) (*models.WithdrawalResult, error) {
	payload := withdrawalBody{
		Amount:      json.Number(req.Amount.String()),
		BankDetails: req.BankDetails,
	}
	cl, err := c.jsonCall("withdraw", http.MethodPost, "/wallet/withdraw", token, payload, "Failed to withdraw money")
	if err != nil {
		return nil, err
	}
	var resp models.WithdrawalResult
	if err := c.doJSON(ctx, cl, &resp, "data"); err != nil {
		return nil, err
	}
	return &resp, nil
}
