// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryType distinguishes income categories from expense categories.
type CategoryType int

const (
	Income CategoryType = iota
	Expense
)

func (t CategoryType) String() string {
	if t == Income {
		return "income"
	}
	return "expense"
}

// Predefined category identifiers seeded into every new ledger. They back
// the paired transactions produced by a transfer between two accounts and
// are never removable.
const (
	TransferIncomeCategoryID  ID = 1
	TransferOutcomeCategoryID ID = 2
)

// Names of the predefined transfer categories and the descriptions of the
// paired transactions a transfer produces.
const (
	TransferIncomeCategoryName  = "Transfer (income)"
	TransferOutcomeCategoryName = "Transfer (outcome)"
	TransferIncomeDescription   = "--> Transfer (income)"
	TransferOutcomeDescription  = "Transfer (outcome) -->"
)

// Account is the plaintext form of a money account. Balance is a derived
// aggregate cached for display; it is carried through sync but is never
// merge-authoritative on its own.
type Account struct {
	ID      ID              `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Category is the plaintext form of a transaction category.
type Category struct {
	ID   ID           `json:"id"`
	Name string       `json:"name"`
	Type CategoryType `json:"type"`
}

// Transaction is the plaintext form of a single ledger movement.
type Transaction struct {
	ID          ID              `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	AccountID   ID              `json:"account_id"`
	CategoryID  ID              `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// Plan is the plaintext form of a monthly budget plan for one category.
type Plan struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	CategoryID   ID              `json:"category_id"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
}
