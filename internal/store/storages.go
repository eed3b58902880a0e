package store

import "github.com/finkeeper/go-ledger-sync/internal/logger"

// Storages bundles the remote store's repositories for injection into the
// service layer.
type Storages struct {
	LedgerRepository LedgerRepository
	LeaseRepository  LeaseRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		LedgerRepository: NewLedgerRepository(db, log),
		LeaseRepository:  NewLeaseRepository(db, log),
	}
}
