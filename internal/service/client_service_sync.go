// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/adapter"
	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/diff"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/merge"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

const defaultLeaseTTL = 30 * time.Second

// clientSyncService drives the sync round state machine. One round:
// acquire the ledger lease, pull the canonical state, reconcile the local
// diff against it, push the merged result under the same lease, commit
// locally, release. Every remote payload crossing this service is
// encrypted; the reconciliation itself runs on decrypted state in client
// memory only.
type clientSyncService struct {
	local    store.LocalStore
	remote   adapter.RemoteAdapter
	keychain crypto.Keychain
	log      *logger.Logger
	leaseTTL time.Duration

	// gate is shared with the ledger service. The round holds it
	// exclusively from the diff base read to the local commit; user
	// mutations hold it shared, so they land either before the snapshot
	// (and ride this round's diff) or after the commit (and ride the
	// next one). Apply never reverts a write it did not see.
	gate *sync.RWMutex

	roundMu sync.Mutex

	mu    sync.RWMutex
	key   []byte
	state SyncState
}

func NewClientSyncService(local store.LocalStore, remote adapter.RemoteAdapter, keychain crypto.Keychain, gate *sync.RWMutex, leaseTTL time.Duration, log *logger.Logger) ClientSyncService {
	if leaseTTL <= 0 {
		leaseTTL = defaultLeaseTTL
	}
	if gate == nil {
		gate = new(sync.RWMutex)
	}

	return &clientSyncService{
		local:    local,
		remote:   remote,
		keychain: keychain,
		log:      log,
		leaseTTL: leaseTTL,
		gate:     gate,
		state:    SyncIdle,
	}
}

func (s *clientSyncService) SetEncryptionKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

func (s *clientSyncService) State() SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *clientSyncService) setState(state SyncState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *clientSyncService) encryptionKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.key) == 0 {
		return nil, ErrNoEncryptionKey
	}
	return s.key, nil
}

// SyncOnce implements [ClientSyncService]. A failed round leaves the local
// state exactly as it was: the only local mutation is the final Apply, and
// it is transactional.
func (s *clientSyncService) SyncOnce(ctx context.Context) (SyncReport, error) {
	if !s.roundMu.TryLock() {
		return SyncReport{}, ErrSyncInProgress
	}
	defer s.roundMu.Unlock()

	key, err := s.encryptionKey()
	if err != nil {
		return SyncReport{}, err
	}

	report, err := s.runRound(ctx, key)
	if err != nil {
		s.setState(SyncAborted)
		return SyncReport{}, fmt.Errorf("%w: %w", ErrSyncAborted, err)
	}

	s.setState(SyncIdle)
	return report, nil
}

func (s *clientSyncService) runRound(ctx context.Context, key []byte) (SyncReport, error) {
	ledgerID, clientID, _, err := s.local.Meta(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("read ledger meta: %w", err)
	}

	s.setState(SyncPulling)

	if err = s.acquireLease(ctx, ledgerID); err != nil {
		return SyncReport{}, err
	}
	defer s.releaseLease(ledgerID)

	blob, err := s.pullCanonical(ctx, ledgerID)
	if err != nil {
		return SyncReport{}, err
	}

	canonical := new(models.LedgerState)
	if err = s.keychain.DecryptPayload(key, blob.Payload, canonical); err != nil {
		return SyncReport{}, fmt.Errorf("decrypt canonical state: %w", err)
	}
	canonical.Normalize()

	marker, err := s.local.LastSyncMarker(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("load sync marker: %w", err)
	}

	// A previous round may have pushed successfully and crashed before the
	// local commit. The canonical state then already carries this client's
	// acknowledgment: re-apply it instead of re-merging the same diff.
	if ack, ok := canonical.ClientRounds[clientID]; ok && ack.Round > marker.Round {
		s.setState(SyncCommitting)
		newMarker := models.SyncMarker{Round: blob.Round, SyncedAt: time.Now().UTC()}
		s.gate.Lock()
		err = s.local.Apply(ctx, canonical, ack.Remap, newMarker)
		s.gate.Unlock()
		if err != nil {
			return SyncReport{}, fmt.Errorf("commit recovered round: %w", err)
		}

		s.log.Info().
			Str("ledger_id", ledgerID).
			Int64("round", blob.Round).
			Int64("recovered_round", ack.Round).
			Msg("recovered crashed sync round")

		return SyncReport{Round: blob.Round, Recovered: true, Rejected: ack.Rejected}, nil
	}

	s.setState(SyncMerging)

	// The round is the only local writer from here until it commits. A
	// user mutation slipping in after LoadState would be overwritten by
	// Apply and, with the snapshot matching, never appear in a later
	// diff; behind the gate it parks until the commit is done.
	s.gate.Lock()
	defer s.gate.Unlock()

	snapshot, err := s.local.LoadSnapshot(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	current, err := s.local.LoadState(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("load local state: %w", err)
	}

	outgoing := diff.Compute(current, snapshot)
	if outgoing.Empty() {
		if blob.Round == marker.Round {
			// Nothing changed on either side.
			return SyncReport{Round: marker.Round}, nil
		}

		// Pull-only round: the remote advanced, this client did not.
		s.setState(SyncCommitting)
		newMarker := models.SyncMarker{Round: blob.Round, SyncedAt: time.Now().UTC()}
		if err = s.local.Apply(ctx, canonical, models.IDRemap{}, newMarker); err != nil {
			return SyncReport{}, fmt.Errorf("commit pulled round: %w", err)
		}
		return SyncReport{Round: blob.Round}, nil
	}

	result, err := merge.Merge(canonical, outgoing)
	if err != nil {
		return SyncReport{}, fmt.Errorf("reconcile diff: %w", err)
	}

	merged := result.State
	merged.Round = blob.Round + 1
	merged.ClientRounds[clientID] = models.ClientRound{
		Round:    merged.Round,
		Remap:    result.Remap,
		Rejected: result.Rejected,
		MergedAt: time.Now().UTC(),
	}

	s.setState(SyncPushing)

	payload, err := s.keychain.EncryptPayload(key, merged)
	if err != nil {
		return SyncReport{}, fmt.Errorf("encrypt merged state: %w", err)
	}

	pushed, err := s.push(ctx, models.PushRequest{
		LedgerID:  ledgerID,
		ClientID:  clientID,
		BaseRound: blob.Round,
		Payload:   payload,
	})
	if err != nil {
		return SyncReport{}, err
	}

	s.setState(SyncCommitting)

	newMarker := models.SyncMarker{Round: pushed.Round, SyncedAt: time.Now().UTC()}
	if err = s.local.Apply(ctx, merged, result.Remap, newMarker); err != nil {
		return SyncReport{}, fmt.Errorf("commit merged round: %w", err)
	}

	s.log.Info().
		Str("ledger_id", ledgerID).
		Int64("round", pushed.Round).
		Int("rejected", len(result.Rejected)).
		Msg("sync round committed")

	return SyncReport{Round: pushed.Round, Pushed: true, Rejected: result.Rejected}, nil
}

// acquireLease claims the per-ledger lease, retrying with bounded
// exponential backoff while another client holds it or the remote is
// briefly unreachable.
func (s *clientSyncService) acquireLease(ctx context.Context, ledgerID string) error {
	retryable := func(err error) bool {
		return errors.Is(err, adapter.ErrLeaseHeld) ||
			errors.Is(err, adapter.ErrRemoteUnreachable) ||
			errors.Is(err, adapter.ErrInternalServerError)
	}

	err := withRetry(ctx, s.log, "acquire lease", retryable, func() error {
		_, err := s.remote.AcquireLease(ctx, ledgerID, s.leaseTTL)
		return err
	})
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	return nil
}

func (s *clientSyncService) releaseLease(ledgerID string) {
	// The round's context may already be cancelled; releasing is best
	// effort against a short deadline, the lease expires on its own
	// otherwise.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.remote.ReleaseLease(ctx, ledgerID); err != nil {
		s.log.Warn().Str("ledger_id", ledgerID).Err(err).Msg("lease release failed, waiting for expiry")
	}
}

func (s *clientSyncService) pullCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	retryable := func(err error) bool {
		return errors.Is(err, adapter.ErrRemoteUnreachable) ||
			errors.Is(err, adapter.ErrInternalServerError)
	}

	var blob models.CanonicalBlob
	err := withRetry(ctx, s.log, "fetch canonical", retryable, func() error {
		var err error
		blob, err = s.remote.FetchCanonical(ctx, ledgerID)
		return err
	})
	if err != nil {
		return models.CanonicalBlob{}, fmt.Errorf("fetch canonical: %w", err)
	}

	return blob, nil
}

// push uploads the merged state. A round conflict is not retried: the
// lease should have prevented it, so a conflict means the lease expired
// mid-round and the whole round must abort and restart.
func (s *clientSyncService) push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	retryable := func(err error) bool {
		return errors.Is(err, adapter.ErrRemoteUnreachable) ||
			errors.Is(err, adapter.ErrInternalServerError)
	}

	var resp models.PushResponse
	err := withRetry(ctx, s.log, "push", retryable, func() error {
		var err error
		resp, err = s.remote.Push(ctx, req)
		return err
	})
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("push merged state: %w", err)
	}

	return resp, nil
}
