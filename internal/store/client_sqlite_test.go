// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkeeper/go-ledger-sync/models"
)

func newLocalStore(t *testing.T) LocalStore {
	t.Helper()
	local, err := NewLocalStore("")
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	return local
}

func encAccount(id models.ID, name string) models.EncryptedAccount {
	return models.EncryptedAccount{
		ID:        id,
		Name:      []byte(name),
		Balance:   []byte("balance:" + name),
		ChangedAt: time.Now().UTC(),
	}
}

func encCategory(id models.ID, name string, typ models.CategoryType) models.EncryptedCategory {
	return models.EncryptedCategory{
		ID:        id,
		Name:      []byte(name),
		Type:      typ,
		ChangedAt: time.Now().UTC(),
	}
}

func encTransaction(id, accountID, categoryID models.ID) models.EncryptedTransaction {
	return models.EncryptedTransaction{
		ID:          id,
		Timestamp:   time.Now().UTC(),
		Description: []byte("groceries"),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      []byte("amount"),
		ChangedAt:   time.Now().UTC(),
	}
}

func encPlan(id, categoryID models.ID) models.EncryptedPlan {
	return models.EncryptedPlan{
		ID:           id,
		Name:         []byte("food budget"),
		CategoryID:   categoryID,
		MonthlyLimit: []byte("limit"),
		ChangedAt:    time.Now().UTC(),
	}
}

// ── metadata and counters ────────────────────────────────────────────────

func TestLocalStore_MetaBeforeInit(t *testing.T) {
	local := newLocalStore(t)

	_, _, _, err := local.Meta(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLocalStore_InitLedgerAndMeta(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	salt := []byte("0123456789abcdef")
	require.NoError(t, local.InitLedger(ctx, "family-ledger", "client-1", salt))

	ledgerID, clientID, gotSalt, err := local.Meta(ctx)
	require.NoError(t, err)

	assert.Equal(t, "family-ledger", ledgerID)
	assert.Equal(t, "client-1", clientID)
	assert.Equal(t, salt, gotSalt)
}

func TestLocalStore_NextLocalIDDecrements(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	for _, want := range []models.ID{-1, -2, -3} {
		got, err := local.NextLocalID(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLocalStore_FreshMarkerIsZeroRound(t *testing.T) {
	local := newLocalStore(t)

	marker, err := local.LastSyncMarker(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), marker.Round)
	assert.True(t, marker.IsZero())
}

func TestLocalStore_LoadSnapshotBeforeFirstSync(t *testing.T) {
	local := newLocalStore(t)

	snapshot, err := local.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

// ── entity CRUD ──────────────────────────────────────────────────────────

func TestLocalStore_AccountRoundTrip(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	account := encAccount(-1, "checking")
	require.NoError(t, local.AddAccount(ctx, account))

	got, err := local.Account(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, account.Name, got.Name)
	assert.Equal(t, account.Balance, got.Balance)

	list, err := local.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLocalStore_AccountNotFound(t *testing.T) {
	local := newLocalStore(t)

	_, err := local.Account(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_RemovedAccountIsInvisible(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(-1, "checking")))
	require.NoError(t, local.RemoveAccount(ctx, -1, false))

	_, err := local.Account(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := local.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLocalStore_RemoveAccountWithDependents(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(-1, "checking")))
	require.NoError(t, local.AddCategory(ctx, encCategory(2, "Expense", models.Expense)))
	require.NoError(t, local.AddTransaction(ctx, encTransaction(-2, -1, 2)))

	err := local.RemoveAccount(ctx, -1, false)
	assert.ErrorIs(t, err, ErrEntityInUse)

	// Forcing tombstones the dependents in the same transaction.
	require.NoError(t, local.RemoveAccount(ctx, -1, true))

	transactions, err := local.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestLocalStore_RemovePredefinedCategory(t *testing.T) {
	local := newLocalStore(t)

	err := local.RemoveCategory(context.Background(), models.TransferIncomeCategoryID, false)
	assert.ErrorIs(t, err, ErrProtectedCategory)
}

func TestLocalStore_RemoveCategoryCascadesPlansAndTransactions(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(-1, "checking")))
	require.NoError(t, local.AddCategory(ctx, encCategory(5, "Food", models.Expense)))
	require.NoError(t, local.AddTransaction(ctx, encTransaction(-2, -1, 5)))
	require.NoError(t, local.AddPlan(ctx, encPlan(-3, 5)))

	assert.ErrorIs(t, local.RemoveCategory(ctx, 5, false), ErrEntityInUse)
	require.NoError(t, local.RemoveCategory(ctx, 5, true))

	transactions, err := local.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	plans, err := local.Plans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

// ── state assembly ───────────────────────────────────────────────────────

func TestLocalStore_LoadStateSplitsActiveAndRemoved(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(1, "checking")))
	require.NoError(t, local.AddAccount(ctx, encAccount(2, "savings")))
	require.NoError(t, local.RemoveAccount(ctx, 2, false))
	require.NoError(t, local.AddCategory(ctx, encCategory(3, "Food", models.Expense)))
	require.NoError(t, local.AddTransaction(ctx, encTransaction(4, 1, 3)))
	require.NoError(t, local.AddPlan(ctx, encPlan(5, 3)))
	require.NoError(t, local.RemovePlan(ctx, 5))

	state, err := local.LoadState(ctx)
	require.NoError(t, err)

	assert.Contains(t, state.Accounts.Active, models.ID(1))
	assert.Contains(t, state.Accounts.Removed, models.ID(2))
	assert.Contains(t, state.Categories.Active, models.ID(3))
	assert.Contains(t, state.Transactions.Active, models.ID(4))
	assert.Contains(t, state.Plans.Removed, models.ID(5))
	assert.Empty(t, state.Plans.Active)
}

// ── sync round commit ────────────────────────────────────────────────────

func TestLocalStore_ApplyRemapsAndCommitsRound(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	// A local-only account and a transaction referencing it via the
	// placeholder identifier.
	require.NoError(t, local.AddAccount(ctx, encAccount(-1, "checking")))
	require.NoError(t, local.AddCategory(ctx, encCategory(2, "Expense", models.Expense)))
	require.NoError(t, local.AddTransaction(ctx, encTransaction(-2, -1, 2)))

	remap := models.IDRemap{}
	remap.Put(models.KindAccount, -1, 10)
	remap.Put(models.KindTransaction, -2, 11)

	merged := models.NewLedgerState()
	merged.Round = 2
	merged.Accounts.Active[10] = encAccount(10, "checking")
	merged.Categories.Active[2] = encCategory(2, "Expense", models.Expense)
	merged.Transactions.Active[11] = encTransaction(11, 10, 2)

	marker := models.SyncMarker{Round: 2, SyncedAt: time.Now().UTC()}
	require.NoError(t, local.Apply(ctx, merged, remap, marker))

	// The placeholder identifiers are gone; reference columns followed.
	_, err := local.Account(ctx, -1)
	assert.ErrorIs(t, err, ErrNotFound)

	account, err := local.Account(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("checking"), account.Name)

	transactions, err := local.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.ID(11), transactions[0].ID)
	assert.Equal(t, models.ID(10), transactions[0].AccountID)

	gotMarker, err := local.LastSyncMarker(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gotMarker.Round)

	snapshot, err := local.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(2), snapshot.Round)
	assert.Contains(t, snapshot.Accounts.Active, models.ID(10))
}

func TestLocalStore_ApplyTombstonesRemoteRemovals(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(7, "savings")))

	merged := models.NewLedgerState()
	merged.Round = 3
	merged.Accounts.Removed[7] = encAccount(7, "savings")

	marker := models.SyncMarker{Round: 3, SyncedAt: time.Now().UTC()}
	require.NoError(t, local.Apply(ctx, merged, models.IDRemap{}, marker))

	_, err := local.Account(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	state, err := local.LoadState(ctx)
	require.NoError(t, err)
	assert.Contains(t, state.Accounts.Removed, models.ID(7))
}

func TestLocalStore_ApplyLeavesUnmentionedRowsAlone(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	// Created while the round was in flight: the merge result does not
	// mention it, so it must survive to the next diff.
	require.NoError(t, local.AddAccount(ctx, encAccount(-9, "brand new")))

	merged := models.NewLedgerState()
	merged.Round = 2
	marker := models.SyncMarker{Round: 2, SyncedAt: time.Now().UTC()}
	require.NoError(t, local.Apply(ctx, merged, models.IDRemap{}, marker))

	account, err := local.Account(ctx, -9)
	require.NoError(t, err)
	assert.Equal(t, []byte("brand new"), account.Name)
}

func TestLocalStore_CleanRemovedPurgesOnlySyncedTombstones(t *testing.T) {
	local := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, local.AddAccount(ctx, encAccount(3, "old")))
	require.NoError(t, local.RemoveAccount(ctx, 3, false))

	// The retained snapshot knows about the tombstone of account 3.
	merged := models.NewLedgerState()
	merged.Round = 2
	merged.Accounts.Removed[3] = encAccount(3, "old")
	marker := models.SyncMarker{Round: 2, SyncedAt: time.Now().UTC()}
	require.NoError(t, local.Apply(ctx, merged, models.IDRemap{}, marker))

	// This tombstone happened after the round; the remote has not seen it.
	require.NoError(t, local.AddAccount(ctx, encAccount(4, "newer")))
	require.NoError(t, local.RemoveAccount(ctx, 4, false))

	require.NoError(t, local.CleanRemoved(ctx))

	state, err := local.LoadState(ctx)
	require.NoError(t, err)
	assert.NotContains(t, state.Accounts.Removed, models.ID(3))
	assert.Contains(t, state.Accounts.Removed, models.ID(4))
}

func TestLocalStore_CleanRemovedWithoutSnapshotIsNoop(t *testing.T) {
	local := newLocalStore(t)
	assert.NoError(t, local.CleanRemoved(context.Background()))
}
