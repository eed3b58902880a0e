// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/models"
)

// LedgerRepository is the remote store's view of a ledger: an opaque
// encrypted canonical blob plus a round counter and the key derivation
// salt. The remote never decrypts the payload.
type LedgerRepository interface {
	// CreateLedger registers a new ledger with its salt and the initial
	// encrypted canonical state at round 1. Returns
	// [ErrLedgerAlreadyExists] on identifier collision.
	CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error)

	// GetLedger returns the registry row. Returns [ErrLedgerNotFound] when
	// the identifier is unknown.
	GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error)

	// GetCanonical returns the current encrypted canonical blob.
	GetCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error)

	// SwapCanonical atomically replaces the canonical blob if and only if
	// the stored round still equals req.BaseRound. On success the round
	// advances by one. Returns [ErrRoundConflict] when the base round is
	// stale and [ErrLedgerNotFound] for unknown ledgers.
	SwapCanonical(ctx context.Context, req models.PushRequest) (models.PushResponse, error)
}

// LeaseRepository serializes merges: at most one unexpired lease per
// ledger.
type LeaseRepository interface {
	// Acquire grants the exclusive merge lease on the ledger to holder for
	// ttl. An expired lease is taken over silently. Returns [ErrLeaseHeld]
	// while another holder's lease is still live; re-acquiring one's own
	// live lease extends it.
	Acquire(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error)

	// Holder returns the current unexpired lease holder, or "" when the
	// ledger is unleased.
	Holder(ctx context.Context, ledgerID string) (string, error)

	// Release frees the lease. Returns [ErrLeaseNotHeld] when holder does
	// not own it.
	Release(ctx context.Context, ledgerID, holder string) error
}

// LocalStore is the client's transactional storage collaborator. All
// mutating operations are all-or-nothing from the caller's view.
type LocalStore interface {
	// InitLedger binds the store to a ledger: identifiers and the key
	// derivation salt are persisted so subsequent runs can re-derive the
	// key from the password alone.
	InitLedger(ctx context.Context, ledgerID, clientID string, kdfSalt []byte) error

	// Meta returns the bound ledger identifier, this client's instance
	// identifier and the key derivation salt. Returns [ErrNotInitialized]
	// before InitLedger.
	Meta(ctx context.Context) (ledgerID, clientID string, kdfSalt []byte, err error)

	// LoadState assembles the current local state tuple from the entity
	// tables.
	LoadState(ctx context.Context) (*models.LedgerState, error)

	// Apply commits one sync round in a single transaction: identifier
	// remapping (a table update per kind, including reference columns),
	// upserts of the merged rows, tombstones, the new diff snapshot and the
	// advanced sync marker. A crash before commit leaves everything
	// untouched.
	Apply(ctx context.Context, merged *models.LedgerState, remap models.IDRemap, marker models.SyncMarker) error

	// LastSyncMarker returns the marker of the previous successful round; a
	// zero marker means never synced.
	LastSyncMarker(ctx context.Context) (models.SyncMarker, error)

	// LoadSnapshot returns the state snapshot retained at the last
	// successful sync, or nil when the client has never synced.
	LoadSnapshot(ctx context.Context) (*models.LedgerState, error)

	// NextLocalID hands out the next client-scoped placeholder identifier
	// (negative, decrementing).
	NextLocalID(ctx context.Context) (models.ID, error)

	// Entity CRUD used by the ledger facade. Removals are soft: rows move
	// to the removed set by timestamp, they are not erased.

	AddAccount(ctx context.Context, a models.EncryptedAccount) error
	UpdateAccount(ctx context.Context, a models.EncryptedAccount) error
	RemoveAccount(ctx context.Context, id models.ID, force bool) error
	Account(ctx context.Context, id models.ID) (models.EncryptedAccount, error)
	Accounts(ctx context.Context) ([]models.EncryptedAccount, error)

	AddCategory(ctx context.Context, c models.EncryptedCategory) error
	RemoveCategory(ctx context.Context, id models.ID, force bool) error
	Categories(ctx context.Context) ([]models.EncryptedCategory, error)

	AddTransaction(ctx context.Context, t models.EncryptedTransaction) error
	RemoveTransaction(ctx context.Context, id models.ID) error
	Transactions(ctx context.Context) ([]models.EncryptedTransaction, error)

	AddPlan(ctx context.Context, p models.EncryptedPlan) error
	RemovePlan(ctx context.Context, id models.ID) error
	Plans(ctx context.Context) ([]models.EncryptedPlan, error)

	// CleanRemoved physically purges tombstoned rows whose removal the
	// remote has acknowledged. The tombstones stay recorded in the sync
	// snapshot, so stale re-creation remains detectable.
	CleanRemoved(ctx context.Context) error

	// Close releases the underlying database handle.
	Close() error
}
