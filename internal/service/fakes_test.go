// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/ledger"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

// Hand-written fakes instead of generated mocks: the sync round drives its
// collaborators through long interfaces, and a functional in-memory store
// keeps the scenario tests readable.

// testEncryptionKey is a fixed 256-bit key; deriving one through Argon2id
// per test would dominate the suite's runtime.
var testEncryptionKey = bytes.Repeat([]byte{0x11}, 32)

func testLogger() *logger.Logger {
	return logger.Nop()
}

type appliedRound struct {
	state  *models.LedgerState
	remap  models.IDRemap
	marker models.SyncMarker
}

// fakeLocalStore is an in-memory LocalStore. The sync tests preload state,
// snapshot and marker; the ledger facade tests exercise the entity CRUD.
type fakeLocalStore struct {
	ledgerID string
	clientID string
	salt     []byte
	metaErr  error

	marker   models.SyncMarker
	snapshot *models.LedgerState
	state    *models.LedgerState

	nextLocal models.ID

	accounts     map[models.ID]models.EncryptedAccount
	categories   map[models.ID]models.EncryptedCategory
	transactions map[models.ID]models.EncryptedTransaction
	plans        map[models.ID]models.EncryptedPlan

	applied  []appliedRound
	applyErr error
}

func newFakeLocalStore() *fakeLocalStore {
	return &fakeLocalStore{
		ledgerID:     "family-ledger",
		clientID:     "client-1",
		salt:         bytes.Repeat([]byte{0xAB}, 16),
		state:        models.NewLedgerState(),
		accounts:     make(map[models.ID]models.EncryptedAccount),
		categories:   make(map[models.ID]models.EncryptedCategory),
		transactions: make(map[models.ID]models.EncryptedTransaction),
		plans:        make(map[models.ID]models.EncryptedPlan),
	}
}

func (f *fakeLocalStore) InitLedger(_ context.Context, ledgerID, clientID string, kdfSalt []byte) error {
	f.ledgerID, f.clientID, f.salt = ledgerID, clientID, kdfSalt
	return nil
}

func (f *fakeLocalStore) Meta(_ context.Context) (string, string, []byte, error) {
	if f.metaErr != nil {
		return "", "", nil, f.metaErr
	}
	return f.ledgerID, f.clientID, f.salt, nil
}

func (f *fakeLocalStore) LoadState(_ context.Context) (*models.LedgerState, error) {
	return f.state, nil
}

func (f *fakeLocalStore) Apply(_ context.Context, merged *models.LedgerState, remap models.IDRemap, marker models.SyncMarker) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, appliedRound{state: merged, remap: remap, marker: marker})
	f.marker = marker
	return nil
}

func (f *fakeLocalStore) LastSyncMarker(_ context.Context) (models.SyncMarker, error) {
	return f.marker, nil
}

func (f *fakeLocalStore) LoadSnapshot(_ context.Context) (*models.LedgerState, error) {
	return f.snapshot, nil
}

func (f *fakeLocalStore) NextLocalID(_ context.Context) (models.ID, error) {
	f.nextLocal--
	return f.nextLocal, nil
}

func (f *fakeLocalStore) AddAccount(_ context.Context, a models.EncryptedAccount) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeLocalStore) UpdateAccount(_ context.Context, a models.EncryptedAccount) error {
	if _, ok := f.accounts[a.ID]; !ok {
		return store.ErrNotFound
	}
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeLocalStore) RemoveAccount(_ context.Context, id models.ID, force bool) error {
	if _, ok := f.accounts[id]; !ok {
		return store.ErrNotFound
	}
	if !force {
		for _, tx := range f.transactions {
			if tx.AccountID == id {
				return store.ErrEntityInUse
			}
		}
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeLocalStore) Account(_ context.Context, id models.ID) (models.EncryptedAccount, error) {
	a, ok := f.accounts[id]
	if !ok {
		return models.EncryptedAccount{}, store.ErrNotFound
	}
	return a, nil
}

func (f *fakeLocalStore) Accounts(_ context.Context) ([]models.EncryptedAccount, error) {
	out := make([]models.EncryptedAccount, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeLocalStore) AddCategory(_ context.Context, c models.EncryptedCategory) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeLocalStore) RemoveCategory(_ context.Context, id models.ID, force bool) error {
	if ledger.IsPredefinedCategory(id) {
		return store.ErrProtectedCategory
	}
	if _, ok := f.categories[id]; !ok {
		return store.ErrNotFound
	}
	if !force {
		for _, tx := range f.transactions {
			if tx.CategoryID == id {
				return store.ErrEntityInUse
			}
		}
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeLocalStore) Categories(_ context.Context) ([]models.EncryptedCategory, error) {
	out := make([]models.EncryptedCategory, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeLocalStore) AddTransaction(_ context.Context, t models.EncryptedTransaction) error {
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeLocalStore) RemoveTransaction(_ context.Context, id models.ID) error {
	if _, ok := f.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeLocalStore) Transactions(_ context.Context) ([]models.EncryptedTransaction, error) {
	out := make([]models.EncryptedTransaction, 0, len(f.transactions))
	for _, t := range f.transactions {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeLocalStore) AddPlan(_ context.Context, p models.EncryptedPlan) error {
	f.plans[p.ID] = p
	return nil
}

func (f *fakeLocalStore) RemovePlan(_ context.Context, id models.ID) error {
	if _, ok := f.plans[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

func (f *fakeLocalStore) Plans(_ context.Context) ([]models.EncryptedPlan, error) {
	out := make([]models.EncryptedPlan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeLocalStore) CleanRemoved(_ context.Context) error { return nil }

func (f *fakeLocalStore) Close() error { return nil }

// fakeRemoteAdapter delegates to optional function fields and counts calls.
type fakeRemoteAdapter struct {
	createLedgerFn   func(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error)
	getLedgerFn      func(ctx context.Context, ledgerID string) (models.Ledger, error)
	fetchCanonicalFn func(ctx context.Context, ledgerID string) (models.CanonicalBlob, error)
	pushFn           func(ctx context.Context, req models.PushRequest) (models.PushResponse, error)
	acquireLeaseFn   func(ctx context.Context, ledgerID string, ttl time.Duration) (models.LeaseGrant, error)
	releaseLeaseFn   func(ctx context.Context, ledgerID string) error

	acquireCalls int
	releaseCalls int
	fetchCalls   int
	pushCalls    int
}

func (f *fakeRemoteAdapter) CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error) {
	if f.createLedgerFn == nil {
		return models.Ledger{ID: req.LedgerID, KDFSalt: req.KDFSalt, Round: 1}, nil
	}
	return f.createLedgerFn(ctx, req)
}

func (f *fakeRemoteAdapter) GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error) {
	if f.getLedgerFn == nil {
		return models.Ledger{ID: ledgerID}, nil
	}
	return f.getLedgerFn(ctx, ledgerID)
}

func (f *fakeRemoteAdapter) FetchCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	f.fetchCalls++
	if f.fetchCanonicalFn == nil {
		return models.CanonicalBlob{}, nil
	}
	return f.fetchCanonicalFn(ctx, ledgerID)
}

func (f *fakeRemoteAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	f.pushCalls++
	if f.pushFn == nil {
		return models.PushResponse{Round: req.BaseRound + 1}, nil
	}
	return f.pushFn(ctx, req)
}

func (f *fakeRemoteAdapter) AcquireLease(ctx context.Context, ledgerID string, ttl time.Duration) (models.LeaseGrant, error) {
	f.acquireCalls++
	if f.acquireLeaseFn == nil {
		return models.LeaseGrant{LedgerID: ledgerID, Holder: "client-1", ExpiresAt: time.Now().Add(ttl)}, nil
	}
	return f.acquireLeaseFn(ctx, ledgerID, ttl)
}

func (f *fakeRemoteAdapter) ReleaseLease(ctx context.Context, ledgerID string) error {
	f.releaseCalls++
	if f.releaseLeaseFn == nil {
		return nil
	}
	return f.releaseLeaseFn(ctx, ledgerID)
}

// encryptState seals a ledger state the way the remote would store it.
func encryptState(t *testing.T, state *models.LedgerState) string {
	t.Helper()
	payload, err := crypto.NewKeychain().EncryptPayload(testEncryptionKey, state)
	require.NoError(t, err)
	return payload
}

// decryptState opens a pushed payload for assertions.
func decryptState(t *testing.T, payload string) *models.LedgerState {
	t.Helper()
	state := new(models.LedgerState)
	require.NoError(t, crypto.NewKeychain().DecryptPayload(testEncryptionKey, payload, state))
	state.Normalize()
	return state
}
