// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

import "errors"

// Sentinel errors returned by repository methods. Callers match them with
// [errors.Is].
var (
	// ErrLedgerNotFound is returned when a ledger identifier does not exist
	// in the remote registry.
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrLedgerAlreadyExists is returned when ledger creation collides with
	// an existing ledger identifier.
	ErrLedgerAlreadyExists = errors.New("ledger already exists")

	// ErrRoundConflict is returned when a canonical swap is attempted
	// against a base round that is no longer current. The pushing client
	// must pull and merge again.
	ErrRoundConflict = errors.New("canonical round conflict")

	// ErrLeaseHeld is returned when another client holds an unexpired merge
	// lease on the ledger.
	ErrLeaseHeld = errors.New("ledger lease held by another client")

	// ErrLeaseNotHeld is returned when a push or release names a lease the
	// caller does not hold.
	ErrLeaseNotHeld = errors.New("ledger lease not held by caller")
)

// Local (client-side) store sentinels.
var (
	// ErrNotFound is returned when an entity lookup by identifier matches
	// no row.
	ErrNotFound = errors.New("entity not found")

	// ErrEntityInUse is returned when a non-forced removal targets an
	// account or category that transactions or plans still reference.
	ErrEntityInUse = errors.New("entity is referenced by other entities")

	// ErrProtectedCategory is returned when a removal targets one of the
	// predefined transfer categories.
	ErrProtectedCategory = errors.New("predefined category cannot be removed")

	// ErrNotInitialized is returned when the local store is used before a
	// ledger was initialized in it.
	ErrNotInitialized = errors.New("local ledger not initialized")
)
