// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package diff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkeeper/go-ledger-sync/models"
)

func account(id models.ID, name string) models.EncryptedAccount {
	return models.EncryptedAccount{ID: id, Name: []byte(name)}
}

// ── first sync (nil base) ────────────────────────────────────────────────────

func TestCompute_NilBaseReportsEverythingAsCreated(t *testing.T) {
	now := models.NewLedgerState()
	now.Accounts.Active[-1] = account(-1, "cash")
	now.Accounts.Active[-2] = account(-2, "card")
	now.Categories.Active[-3] = models.EncryptedCategory{ID: -3, Name: []byte("food")}

	d := Compute(now, nil)

	assert.Len(t, d.Accounts.Created, 2)
	assert.Len(t, d.Categories.Created, 1)
	assert.Empty(t, d.Accounts.Updated)
	assert.Empty(t, d.Accounts.Removed)
}

func TestCompute_NilBaseSkipsLocalTombstones(t *testing.T) {
	now := models.NewLedgerState()
	now.Accounts.Removed[-1] = account(-1, "never synced")
	now.Accounts.Removed[7] = account(7, "imported then removed")

	d := Compute(now, nil)

	// The remote has never seen a local-only item; only the durable
	// tombstone is worth reporting.
	require.Len(t, d.Accounts.Removed, 1)
	assert.Equal(t, models.ID(7), d.Accounts.Removed[0])
}

// ── set difference against the snapshot ──────────────────────────────────────

func TestCompute_ClassificationMatrix(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Active[1] = account(1, "unchanged")
	base.Accounts.Active[2] = account(2, "old name")
	base.Accounts.Active[3] = account(3, "to be removed")

	now := models.NewLedgerState()
	now.Accounts.Active[1] = account(1, "unchanged")
	now.Accounts.Active[2] = account(2, "new name")
	now.Accounts.Active[-5] = account(-5, "brand new")
	now.Accounts.Tombstone(3)

	d := Compute(now, base)

	require.Len(t, d.Accounts.Created, 1)
	assert.Equal(t, models.ID(-5), d.Accounts.Created[0].ID)

	require.Len(t, d.Accounts.Updated, 1)
	assert.Equal(t, models.ID(2), d.Accounts.Updated[0].ID)

	require.Len(t, d.Accounts.Removed, 1)
	assert.Equal(t, models.ID(3), d.Accounts.Removed[0])
}

func TestCompute_NoChangesYieldsEmptyDiff(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Active[1] = account(1, "same")
	now := models.NewLedgerState()
	now.Accounts.Active[1] = account(1, "same")

	d := Compute(now, base)

	assert.True(t, d.Empty())
}

func TestCompute_TimestampDriftAloneIsNotAnUpdate(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Active[1] = models.EncryptedAccount{
		ID: 1, Name: []byte("same"), ChangedAt: time.Unix(100, 0),
	}
	now := models.NewLedgerState()
	now.Accounts.Active[1] = models.EncryptedAccount{
		ID: 1, Name: []byte("same"), ChangedAt: time.Unix(200, 0),
	}

	d := Compute(now, base)

	assert.True(t, d.Empty())
}

func TestCompute_DurableItemAbsentFromSnapshotIsCreated(t *testing.T) {
	// A durable identifier the snapshot never saw: the item was applied by
	// a merge on another device and arrived through a canonical state, or
	// the snapshot predates it.
	base := models.NewLedgerState()
	now := models.NewLedgerState()
	now.Accounts.Active[9] = account(9, "migrated")

	d := Compute(now, base)

	require.Len(t, d.Accounts.Created, 1)
	assert.Equal(t, models.ID(9), d.Accounts.Created[0].ID)
}

func TestCompute_ResurrectionAfterSyncedDeleteIsSuppressed(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Tombstone(4)

	now := models.NewLedgerState()
	now.Accounts.Active[4] = account(4, "stale copy")

	d := Compute(now, base)

	// Tombstones are permanent: the stale copy is not reported.
	assert.True(t, d.Empty())
}

func TestCompute_AlreadyReportedTombstoneIsNotRepeated(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Tombstone(4)

	now := models.NewLedgerState()
	now.Accounts.Tombstone(4)

	d := Compute(now, base)

	assert.True(t, d.Empty())
}

func TestCompute_LocalCreateThenDeleteBetweenSyncsIsInvisible(t *testing.T) {
	base := models.NewLedgerState()

	now := models.NewLedgerState()
	now.Transactions.Active[-1] = models.EncryptedTransaction{ID: -1}
	now.Transactions.Tombstone(-1)

	d := Compute(now, base)

	assert.True(t, d.Empty())
}

func TestCompute_SlicesAreSortedByID(t *testing.T) {
	base := models.NewLedgerState()
	base.Accounts.Active[3] = account(3, "old a")
	base.Accounts.Active[8] = account(8, "old b")
	base.Accounts.Active[4] = account(4, "going")
	base.Accounts.Active[9] = account(9, "also going")

	now := models.NewLedgerState()
	now.Accounts.Active[-7] = account(-7, "new")
	now.Accounts.Active[-2] = account(-2, "newer")
	now.Accounts.Active[3] = account(3, "edited a")
	now.Accounts.Active[8] = account(8, "edited b")
	now.Accounts.Tombstone(9)
	now.Accounts.Tombstone(4)

	// Map iteration order is random; the diff order must not be. Which
	// created item trades for which durable identifier in a merge depends
	// on it.
	for i := 0; i < 20; i++ {
		d := Compute(now, base)

		require.Len(t, d.Accounts.Created, 2)
		assert.Equal(t, models.ID(-7), d.Accounts.Created[0].ID)
		assert.Equal(t, models.ID(-2), d.Accounts.Created[1].ID)

		require.Len(t, d.Accounts.Updated, 2)
		assert.Equal(t, models.ID(3), d.Accounts.Updated[0].ID)
		assert.Equal(t, models.ID(8), d.Accounts.Updated[1].ID)

		assert.Equal(t, []models.ID{4, 9}, d.Accounts.Removed)
	}
}

func TestCompute_NilBaseSlicesAreSortedByID(t *testing.T) {
	now := models.NewLedgerState()
	now.Plans.Active[-3] = models.EncryptedPlan{ID: -3}
	now.Plans.Active[-1] = models.EncryptedPlan{ID: -1}
	now.Plans.Active[-2] = models.EncryptedPlan{ID: -2}
	now.Plans.Removed[6] = models.EncryptedPlan{ID: 6}
	now.Plans.Removed[2] = models.EncryptedPlan{ID: 2}

	for i := 0; i < 20; i++ {
		d := Compute(now, nil)

		require.Len(t, d.Plans.Created, 3)
		assert.Equal(t, models.ID(-3), d.Plans.Created[0].ID)
		assert.Equal(t, models.ID(-2), d.Plans.Created[1].ID)
		assert.Equal(t, models.ID(-1), d.Plans.Created[2].ID)
		assert.Equal(t, []models.ID{2, 6}, d.Plans.Removed)
	}
}

func TestCompute_CoversAllFourKinds(t *testing.T) {
	base := models.NewLedgerState()
	now := models.NewLedgerState()
	now.Accounts.Active[-1] = account(-1, "a")
	now.Categories.Active[-2] = models.EncryptedCategory{ID: -2}
	now.Transactions.Active[-3] = models.EncryptedTransaction{ID: -3}
	now.Plans.Active[-4] = models.EncryptedPlan{ID: -4}

	d := Compute(now, base)

	assert.Len(t, d.Accounts.Created, 1)
	assert.Len(t, d.Categories.Created, 1)
	assert.Len(t, d.Transactions.Created, 1)
	assert.Len(t, d.Plans.Created, 1)
}
