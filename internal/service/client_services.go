package service

import (
	"sync"

	"github.com/finkeeper/go-ledger-sync/internal/adapter"
	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/store"
)

type ClientServices struct {
	SetupService  ClientSetupService
	LedgerService ClientLedgerService
	SyncService   ClientSyncService
	SyncJob       ClientSyncJob
}

// NewClientServices wires the client service layer. clientID is the device
// identity shared with the remote adapter's bearer tokens.
func NewClientServices(local store.LocalStore, remote adapter.RemoteAdapter, clientID string, cfg config.ClientConfig, log *logger.Logger) *ClientServices {
	keychain := crypto.NewKeychain()

	// One write gate per local store: ledger mutations hold it shared,
	// a sync round holds it exclusively while it diffs and commits.
	gate := new(sync.RWMutex)

	ledgerSvc := NewClientLedgerService(local, keychain, gate)
	syncSvc := NewClientSyncService(local, remote, keychain, gate, cfg.Sync.LeaseTTL, log)
	setupSvc := NewClientSetupService(local, remote, keychain, clientID, log, ledgerSvc, syncSvc)

	return &ClientServices{
		SetupService:  setupSvc,
		LedgerService: ledgerSvc,
		SyncService:   syncSvc,
		SyncJob:       NewClientSyncJob(syncSvc, log),
	}
}
