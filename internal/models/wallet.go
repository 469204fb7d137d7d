package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction directions
const (
	TypePayin  = "payin"
	TypePayout = "payout"
)

// Transaction categories
const (
	TransactionRecharge   = "recharge"
	TransactionReward     = "reward"
	TransactionRefund     = "refund"
	TransactionWithdrawal = "withdrawal"
	TransactionOther      = "other"
)

// Transaction statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// FilterAll disables a transaction filter
const FilterAll = "all"

// Transaction is an immutable wallet history record; status changes only
// server-side and shows up on the next fetch.
type Transaction struct {
	Id              string          `json:"id"`
	Type            string          `json:"type"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	mongoId, err := decodeWithId(data, (*plain)(t))
	if err != nil {
		return err
	}
	if t.Id == "" {
		t.Id = mongoId
	}
	return nil
}

// Pagination mirrors the server's paging metadata for wallet history
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TransactionFilters are client-side display filters over wallet history
type TransactionFilters struct {
	Type            string `json:"type"`
	TransactionType string `json:"transactionType"`
	Status          string `json:"status"`
}

// DefaultFilters returns filters that match every transaction
func DefaultFilters() TransactionFilters {
	return TransactionFilters{
		Type:            FilterAll,
		TransactionType: FilterAll,
		Status:          FilterAll,
	}
}

// PageRequest selects a page of wallet history
type PageRequest struct {
	Page  int
	Limit int
}

// DepositRequest adds credit to the wallet
type DepositRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
}

// BankDetails identifies the payout account of a withdrawal
type BankDetails struct {
	AccountNumber     string `json:"accountNumber" validate:"required,accountnumber"`
	IfscCode          string `json:"ifscCode" validate:"required,ifsc"`
	AccountHolderName string `json:"accountHolderName" validate:"required"`
}

// WithdrawalRequest moves wallet funds to a bank account
type WithdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankDetails BankDetails     `json:"bankDetails"`
}
