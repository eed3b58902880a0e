// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkeeper/go-ledger-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_services_mock.go -package=mock

// ClientSetupService binds the client to a ledger and derives the
// encryption key. Exactly one of CreateLedger, JoinLedger or Unlock must
// succeed before the ledger facade or the sync engine can operate.
type ClientSetupService interface {
	// CreateLedger registers a brand new ledger on the remote store. It
	// generates the key derivation salt, derives the key from password,
	// seeds the initial state (including the two predefined transfer
	// categories), uploads the encrypted canonical copy and mirrors it
	// locally. On success the derived key is installed into the dependent
	// services.
	CreateLedger(ctx context.Context, ledgerID, password string) error

	// JoinLedger attaches this client to an existing ledger: it fetches
	// the salt and the current canonical state from the remote, derives
	// the key, decrypts and mirrors the state locally. A wrong password
	// surfaces as a (wrapped) decryption failure.
	JoinLedger(ctx context.Context, ledgerID, password string) error

	// Unlock re-derives the key for an already bound ledger from the
	// locally stored salt. It verifies the key against locally retained
	// ciphertext when any exists.
	Unlock(ctx context.Context, password string) error
}

// ClientLedgerService is the plaintext facade over the encrypted local
// store. Every mutation encrypts sensitive fields before they touch
// storage; every read decrypts on the way out. New items receive
// client-scoped placeholder identifiers until a sync round assigns durable
// ones.
type ClientLedgerService interface {
	SetEncryptionKey(key []byte)

	AddAccount(ctx context.Context, name string, balance decimal.Decimal) (models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) error
	RemoveAccount(ctx context.Context, id models.ID, force bool) error
	Accounts(ctx context.Context) ([]models.Account, error)

	AddCategory(ctx context.Context, name string, categoryType models.CategoryType) (models.Category, error)
	RemoveCategory(ctx context.Context, id models.ID, force bool) error
	Categories(ctx context.Context) ([]models.Category, error)

	AddTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error)
	RemoveTransaction(ctx context.Context, id models.ID) error
	Transactions(ctx context.Context) ([]models.Transaction, error)

	AddPlan(ctx context.Context, plan models.Plan) (models.Plan, error)
	RemovePlan(ctx context.Context, id models.ID) error
	Plans(ctx context.Context) ([]models.Plan, error)

	// AddTransfer records a movement between two accounts as a pair of
	// transactions branded with the predefined transfer categories: an
	// outcome posting on the source account and an income posting on the
	// destination.
	AddTransfer(ctx context.Context, from, to models.ID, amount decimal.Decimal, timestamp time.Time) (outcome, income models.Transaction, err error)

	// CleanRemoved purges tombstoned rows the remote has already
	// acknowledged. Purely local housekeeping; never affects sync.
	CleanRemoved(ctx context.Context) error
}

// SyncReport summarizes one completed sync round.
type SyncReport struct {
	// Round is the canonical round the client is now committed at.
	Round int64
	// Pushed reports whether this round uploaded a merged state (false for
	// pull-only and no-op rounds).
	Pushed bool
	// Recovered reports that the round re-applied an acknowledgment left
	// over from a crashed predecessor instead of merging fresh changes.
	Recovered bool
	// Rejected lists the diff items the reconciliation refused.
	Rejected []models.Rejection
}

// ClientSyncService runs sync rounds against the remote store.
type ClientSyncService interface {
	SetEncryptionKey(key []byte)

	// SyncOnce executes a single sync round: acquire the ledger lease,
	// pull and decrypt the canonical state, reconcile the local diff,
	// push the merged result and commit it locally. At most one round
	// runs at a time; a concurrent call fails with [ErrSyncInProgress].
	SyncOnce(ctx context.Context) (SyncReport, error)

	// State returns the engine's current phase.
	State() SyncState
}

// ClientSyncJob is a background worker that runs SyncOnce on a ticker.
type ClientSyncJob interface {
	// Start launches the background sync goroutine. It syncs every
	// interval, defaulting to 5 minutes if interval is zero or negative.
	// Any previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
