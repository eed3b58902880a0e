// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

// Package adapter provides transport-layer abstractions for communicating
// with the remote ledger store.
//
// The primary abstraction is [RemoteAdapter], which decouples the sync
// engine from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrRoundConflict] for 409 on push, [ErrLeaseHeld]
// for 423 on lease acquisition).
package adapter

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines transport-agnostic communication with the remote
// ledger store. The remote is a blind blob keeper: every payload crossing
// this interface is already encrypted, and implementations only manage
// serialisation, bearer-token authentication, and mapping transport-level
// errors to the sentinel values defined in this package.
type RemoteAdapter interface {
	// CreateLedger registers a new ledger together with its key derivation
	// salt and the initial encrypted canonical state. Returns (wrapped)
	// [ErrLedgerExists] if the identifier is already taken.
	CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error)

	// GetLedger fetches the registry row for the given ledger, most notably
	// the key derivation salt a joining client needs before it can derive
	// the encryption key. Returns (wrapped) [ErrLedgerNotFound] if no such
	// ledger is registered.
	GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error)

	// FetchCanonical downloads the current encrypted canonical state and
	// its round counter. Returns (wrapped) [ErrLedgerNotFound] if no such
	// ledger is registered.
	FetchCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error)

	// Push uploads a freshly merged encrypted canonical state. The remote
	// accepts the push only while its stored round equals req.BaseRound and
	// the caller holds the ledger lease; otherwise it returns (wrapped)
	// [ErrRoundConflict] or [ErrLeaseHeld].
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// AcquireLease claims the exclusive per-ledger sync lease for the
	// requested duration. Returns (wrapped) [ErrLeaseHeld] while another
	// client holds an unexpired lease. Re-acquiring one's own lease extends
	// it.
	AcquireLease(ctx context.Context, ledgerID string, ttl time.Duration) (models.LeaseGrant, error)

	// ReleaseLease gives the lease back early. Releasing a lease that has
	// already expired or was never held is not an error worth aborting
	// over; implementations may return it for logging.
	ReleaseLease(ctx context.Context, ledgerID string) error
}
