// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

func newTestLedgerSvc(local *fakeLocalStore) ClientLedgerService {
	svc := NewClientLedgerService(local, crypto.NewKeychain(), nil)
	svc.SetEncryptionKey(testEncryptionKey)
	return svc
}

// seedTransferCategories installs the predefined categories every ledger
// starts with.
func seedTransferCategories(t *testing.T, local *fakeLocalStore) {
	t.Helper()
	kc := crypto.NewKeychain()
	for id, def := range map[models.ID]struct {
		name string
		typ  models.CategoryType
	}{
		models.TransferIncomeCategoryID:  {models.TransferIncomeCategoryName, models.Income},
		models.TransferOutcomeCategoryID: {models.TransferOutcomeCategoryName, models.Expense},
	} {
		name, err := kc.EncryptString(testEncryptionKey, def.name)
		require.NoError(t, err)
		local.categories[id] = models.EncryptedCategory{ID: id, Name: name, Type: def.typ}
	}
}

func TestLedgerService_RequiresKey(t *testing.T) {
	svc := NewClientLedgerService(newFakeLocalStore(), crypto.NewKeychain(), nil)

	_, err := svc.AddAccount(context.Background(), "cash", decimal.Zero)
	assert.ErrorIs(t, err, ErrNoEncryptionKey)

	_, err = svc.Accounts(context.Background())
	assert.ErrorIs(t, err, ErrNoEncryptionKey)
}

func TestLedgerService_AddAccountEncryptsAndAllocatesLocalID(t *testing.T) {
	local := newFakeLocalStore()
	svc := newTestLedgerSvc(local)

	account, err := svc.AddAccount(context.Background(), "cash", decimal.RequireFromString("150.25"))
	require.NoError(t, err)

	assert.True(t, account.ID.IsLocal())
	assert.Equal(t, "cash", account.Name)

	stored := local.accounts[account.ID]
	assert.NotContains(t, string(stored.Name), "cash", "name must not be stored in the clear")
	assert.NotContains(t, string(stored.Balance), "150.25")

	// The facade round-trips through decryption.
	listed, err := svc.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "cash", listed[0].Name)
	assert.True(t, listed[0].Balance.Equal(decimal.RequireFromString("150.25")))
}

func TestLedgerService_AddAccountRejectsEmptyName(t *testing.T) {
	svc := newTestLedgerSvc(newFakeLocalStore())

	_, err := svc.AddAccount(context.Background(), "", decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestLedgerService_LocalIDsDecrement(t *testing.T) {
	local := newFakeLocalStore()
	svc := newTestLedgerSvc(local)

	a1, err := svc.AddAccount(context.Background(), "one", decimal.Zero)
	require.NoError(t, err)
	a2, err := svc.AddAccount(context.Background(), "two", decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, models.ID(-1), a1.ID)
	assert.Equal(t, models.ID(-2), a2.ID)
}

func TestLedgerService_UpdateUnknownAccount(t *testing.T) {
	svc := newTestLedgerSvc(newFakeLocalStore())

	err := svc.UpdateAccount(context.Background(), models.Account{ID: 42, Name: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLedgerService_AddTransactionValidatesReferences(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	account, err := svc.AddAccount(context.Background(), "cash", decimal.Zero)
	require.NoError(t, err)
	category, err := svc.AddCategory(context.Background(), "food", models.Expense)
	require.NoError(t, err)

	_, err = svc.AddTransaction(context.Background(), models.Transaction{
		AccountID:  99,
		CategoryID: category.ID,
		Amount:     decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.AddTransaction(context.Background(), models.Transaction{
		AccountID:  account.ID,
		CategoryID: 99,
		Amount:     decimal.NewFromInt(-10),
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	transaction, err := svc.AddTransaction(context.Background(), models.Transaction{
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Description: "groceries",
		Amount:      decimal.RequireFromString("-42.50"),
	})
	require.NoError(t, err)
	assert.True(t, transaction.ID.IsLocal())
	assert.False(t, transaction.Timestamp.IsZero(), "timestamp defaults to now")
}

func TestLedgerService_RemoveAccountWithDependents(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	account, err := svc.AddAccount(context.Background(), "cash", decimal.Zero)
	require.NoError(t, err)
	category, err := svc.AddCategory(context.Background(), "food", models.Expense)
	require.NoError(t, err)
	_, err = svc.AddTransaction(context.Background(), models.Transaction{
		AccountID: account.ID, CategoryID: category.ID, Amount: decimal.NewFromInt(-5),
	})
	require.NoError(t, err)

	err = svc.RemoveAccount(context.Background(), account.ID, false)
	assert.ErrorIs(t, err, store.ErrEntityInUse)

	require.NoError(t, svc.RemoveAccount(context.Background(), account.ID, true))
}

func TestLedgerService_RemovePredefinedCategory(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	err := svc.RemoveCategory(context.Background(), models.TransferIncomeCategoryID, true)
	assert.ErrorIs(t, err, store.ErrProtectedCategory)
}

func TestLedgerService_AddPlan(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	category, err := svc.AddCategory(context.Background(), "food", models.Expense)
	require.NoError(t, err)

	plan, err := svc.AddPlan(context.Background(), models.Plan{
		Name:         "Groceries budget",
		CategoryID:   category.ID,
		MonthlyLimit: decimal.NewFromInt(400),
	})
	require.NoError(t, err)
	assert.True(t, plan.ID.IsLocal())

	plans, err := svc.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Groceries budget", plans[0].Name)
}

// ── transfers ────────────────────────────────────────────────────────────────

func TestLedgerService_AddTransferProducesBothLegs(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	from, err := svc.AddAccount(context.Background(), "checking", decimal.NewFromInt(1000))
	require.NoError(t, err)
	to, err := svc.AddAccount(context.Background(), "savings", decimal.Zero)
	require.NoError(t, err)

	when := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("250.00")

	outcome, income, err := svc.AddTransfer(context.Background(), from.ID, to.ID, amount, when)
	require.NoError(t, err)

	assert.Equal(t, from.ID, outcome.AccountID)
	assert.Equal(t, models.TransferOutcomeCategoryID, outcome.CategoryID)
	assert.True(t, outcome.Amount.Equal(amount.Neg()))
	assert.Equal(t, models.TransferOutcomeDescription, outcome.Description)

	assert.Equal(t, to.ID, income.AccountID)
	assert.Equal(t, models.TransferIncomeCategoryID, income.CategoryID)
	assert.True(t, income.Amount.Equal(amount))

	assert.True(t, outcome.Timestamp.Equal(when))
	assert.True(t, income.Timestamp.Equal(when))
	assert.Len(t, local.transactions, 2)
}

func TestLedgerService_AddTransferSameAccount(t *testing.T) {
	svc := newTestLedgerSvc(newFakeLocalStore())

	_, _, err := svc.AddTransfer(context.Background(), 1, 1, decimal.NewFromInt(10), time.Time{})
	assert.ErrorIs(t, err, ErrSameAccount)
}

func TestLedgerService_AddTransferCompensatesFailedIncomeLeg(t *testing.T) {
	local := newFakeLocalStore()
	seedTransferCategories(t, local)
	svc := newTestLedgerSvc(local)

	from, err := svc.AddAccount(context.Background(), "checking", decimal.Zero)
	require.NoError(t, err)

	// Destination account does not exist: the income leg fails validation
	// and the already-recorded outcome leg must be rolled back.
	_, _, err = svc.AddTransfer(context.Background(), from.ID, 999, decimal.NewFromInt(50), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, local.transactions, "no half-recorded transfer may remain")
}
