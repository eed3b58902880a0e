// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/adapter"
	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

// keyReceiver is any service that operates under the derived ledger key.
type keyReceiver interface {
	SetEncryptionKey(key []byte)
}

type clientSetupService struct {
	local    store.LocalStore
	remote   adapter.RemoteAdapter
	keychain crypto.Keychain
	clientID string
	log      *logger.Logger

	// keyed receives the derived key after a successful setup operation.
	keyed []keyReceiver
}

// NewClientSetupService builds the setup service. clientID is the device
// identity this installation authenticates and acknowledges rounds under;
// it must match the identity the remote adapter signs its tokens with.
func NewClientSetupService(local store.LocalStore, remote adapter.RemoteAdapter, keychain crypto.Keychain, clientID string, log *logger.Logger, keyed ...keyReceiver) ClientSetupService {
	return &clientSetupService{
		local:    local,
		remote:   remote,
		keychain: keychain,
		clientID: clientID,
		log:      log,
		keyed:    keyed,
	}
}

func (s *clientSetupService) CreateLedger(ctx context.Context, ledgerID, password string) error {
	if ledgerID == "" || password == "" {
		return fmt.Errorf("%w: ledger id and password are required", ErrInvalidDataProvided)
	}

	salt, err := s.keychain.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	key := s.keychain.DeriveKey(password, salt)

	initial, err := s.seedInitialState(key)
	if err != nil {
		return err
	}

	payload, err := s.keychain.EncryptPayload(key, initial)
	if err != nil {
		return fmt.Errorf("encrypt initial state: %w", err)
	}

	ledger, err := s.remote.CreateLedger(ctx, models.CreateLedgerRequest{
		LedgerID: ledgerID,
		KDFSalt:  salt,
		Payload:  payload,
	})
	if err != nil {
		return fmt.Errorf("create ledger on remote: %w", err)
	}

	if err = s.local.InitLedger(ctx, ledgerID, s.clientID, salt); err != nil {
		return fmt.Errorf("bind local store to ledger: %w", err)
	}
	if err = s.local.Apply(ctx, initial, models.IDRemap{}, models.SyncMarker{Round: ledger.Round, SyncedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("mirror initial state locally: %w", err)
	}

	s.distributeKey(key)
	s.log.Info().Str("ledger_id", ledgerID).Str("client_id", s.clientID).Msg("ledger created")

	return nil
}

func (s *clientSetupService) JoinLedger(ctx context.Context, ledgerID, password string) error {
	if ledgerID == "" || password == "" {
		return fmt.Errorf("%w: ledger id and password are required", ErrInvalidDataProvided)
	}

	ledger, err := s.remote.GetLedger(ctx, ledgerID)
	if err != nil {
		return fmt.Errorf("get ledger from remote: %w", err)
	}
	key := s.keychain.DeriveKey(password, ledger.KDFSalt)

	blob, err := s.remote.FetchCanonical(ctx, ledgerID)
	if err != nil {
		return fmt.Errorf("fetch canonical state: %w", err)
	}

	state := new(models.LedgerState)
	if err = s.keychain.DecryptPayload(key, blob.Payload, state); err != nil {
		return fmt.Errorf("decrypt canonical state: %w", err)
	}
	state.Normalize()

	if err = s.local.InitLedger(ctx, ledgerID, s.clientID, ledger.KDFSalt); err != nil {
		return fmt.Errorf("bind local store to ledger: %w", err)
	}
	if err = s.local.Apply(ctx, state, models.IDRemap{}, models.SyncMarker{Round: blob.Round, SyncedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("mirror canonical state locally: %w", err)
	}

	s.distributeKey(key)
	s.log.Info().Str("ledger_id", ledgerID).Str("client_id", s.clientID).Int64("round", blob.Round).Msg("ledger joined")

	return nil
}

func (s *clientSetupService) Unlock(ctx context.Context, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidDataProvided)
	}

	ledgerID, _, salt, err := s.local.Meta(ctx)
	if err != nil {
		return fmt.Errorf("read ledger meta: %w", err)
	}
	key := s.keychain.DeriveKey(password, salt)

	if err = s.verifyKey(ctx, key); err != nil {
		return err
	}

	s.distributeKey(key)
	s.log.Info().Str("ledger_id", ledgerID).Msg("ledger unlocked")

	return nil
}

// verifyKey proves the derived key against locally retained ciphertext. A
// freshly initialized store has nothing to check against and the key is
// accepted provisionally; the first sync round authenticates it for real.
func (s *clientSetupService) verifyKey(ctx context.Context, key []byte) error {
	snapshot, err := s.local.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot for key check: %w", err)
	}
	if snapshot == nil {
		return nil
	}

	for _, c := range snapshot.Categories.Active {
		if _, err = s.keychain.DecryptString(key, c.Name); err != nil {
			return fmt.Errorf("key check: %w", err)
		}
		return nil
	}

	return nil
}

// seedInitialState builds the state every new ledger starts from: the two
// predefined transfer categories under their fixed identifiers, with the
// category counter positioned after them.
func (s *clientSetupService) seedInitialState(key []byte) (*models.LedgerState, error) {
	now := time.Now().UTC()

	incomeName, err := s.keychain.EncryptString(key, models.TransferIncomeCategoryName)
	if err != nil {
		return nil, fmt.Errorf("encrypt transfer category name: %w", err)
	}
	outcomeName, err := s.keychain.EncryptString(key, models.TransferOutcomeCategoryName)
	if err != nil {
		return nil, fmt.Errorf("encrypt transfer category name: %w", err)
	}

	state := models.NewLedgerState()
	state.Round = 1
	state.Categories.Active[models.TransferIncomeCategoryID] = models.EncryptedCategory{
		ID:        models.TransferIncomeCategoryID,
		Name:      incomeName,
		Type:      models.Income,
		ChangedAt: now,
	}
	state.Categories.Active[models.TransferOutcomeCategoryID] = models.EncryptedCategory{
		ID:        models.TransferOutcomeCategoryID,
		Name:      outcomeName,
		Type:      models.Expense,
		ChangedAt: now,
	}
	state.NextIDs[models.KindCategory] = models.TransferOutcomeCategoryID + 1

	return state, nil
}

func (s *clientSetupService) distributeKey(key []byte) {
	for _, receiver := range s.keyed {
		receiver.SetEncryptionKey(key)
	}
}
