package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrNoEncryptionKey is returned by every operation that needs the
	// ledger key before CreateLedger, JoinLedger or Unlock has derived it.
	ErrNoEncryptionKey = errors.New("ledger key is not set")

	// ErrSyncInProgress is returned when a sync round is requested while a
	// previous round is still running.
	ErrSyncInProgress = errors.New("sync round already in progress")

	// ErrSyncAborted wraps the cause that ended a sync round before commit.
	// The local state is untouched when it is returned.
	ErrSyncAborted = errors.New("sync round aborted")

	// ErrSameAccount rejects a transfer whose source and destination are
	// the same account.
	ErrSameAccount = errors.New("transfer source and destination are the same account")

	// ErrLeaseRequired rejects a push from a client that does not hold the
	// ledger lease.
	ErrLeaseRequired = errors.New("push requires the ledger lease")

	// ErrTokenIsExpired signals a bearer token past its expiry claim.
	ErrTokenIsExpired = errors.New("token is expired")

	// ErrVersionIsNotSpecified rejects server startup without a configured
	// application version.
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
