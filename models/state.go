// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

import (
	"time"
)

// Entity is implemented by the four encrypted entity twins.
type Entity interface {
	EntityID() ID
}

// EntityState is the per-kind half of the state tuple: two sets keyed by
// identifier. An identifier never occurs in both sets at once. Removed keeps
// the last known row of a tombstoned item rather than a bare marker so that
// a merge replay can recognize an already-applied deletion.
type EntityState[T Entity] struct {
	Active  map[ID]T `json:"active"`
	Removed map[ID]T `json:"removed"`
}

// NewEntityState returns an empty, allocated state for one entity kind.
func NewEntityState[T Entity]() EntityState[T] {
	return EntityState[T]{
		Active:  make(map[ID]T),
		Removed: make(map[ID]T),
	}
}

// IsTombstoned reports whether id is in the removed set.
func (s EntityState[T]) IsTombstoned(id ID) bool {
	_, ok := s.Removed[id]
	return ok
}

// Tombstone moves id from the active set into the removed set. Tombstoning
// an id the state has never seen still records it, so deletions from stale
// clients keep their dominance.
func (s EntityState[T]) Tombstone(id ID) {
	if item, ok := s.Active[id]; ok {
		s.Removed[id] = item
		delete(s.Active, id)
		return
	}
	if _, ok := s.Removed[id]; !ok {
		var zero T
		s.Removed[id] = zero
	}
}

// Clone returns a deep copy of the set pair. Entity values are copied by
// value; ciphertext slices are shared because no code path mutates them in
// place.
func (s EntityState[T]) Clone() EntityState[T] {
	out := EntityState[T]{
		Active:  make(map[ID]T, len(s.Active)),
		Removed: make(map[ID]T, len(s.Removed)),
	}
	for id, item := range s.Active {
		out.Active[id] = item
	}
	for id, item := range s.Removed {
		out.Removed[id] = item
	}
	return out
}

// ClientRound is the per-client acknowledgment embedded in the canonical
// state by the merge that processed the client's diff. Echoing the remap
// through the canonical state is what makes a crashed round recoverable:
// on the next pull the client finds its round already merged and re-applies
// the recorded mapping instead of re-submitting the diff.
type ClientRound struct {
	Round    int64       `json:"round"`
	Remap    IDRemap     `json:"remap,omitempty"`
	Rejected []Rejection `json:"rejected,omitempty"`
	MergedAt time.Time   `json:"merged_at"`
}

// LedgerState is the full state tuple of one ledger: the four entity kinds
// plus the monotonic identifier counters and round bookkeeping that belong
// to the canonical copy.
type LedgerState struct {
	Accounts     EntityState[EncryptedAccount]     `json:"accounts"`
	Categories   EntityState[EncryptedCategory]    `json:"categories"`
	Transactions EntityState[EncryptedTransaction] `json:"transactions"`
	Plans        EntityState[EncryptedPlan]        `json:"plans"`

	// NextIDs holds the next durable identifier per kind. Only a merge
	// performed against the canonical state under the ledger lease may
	// advance these counters.
	NextIDs map[Kind]ID `json:"next_ids"`

	// Round is the canonical merge round counter, advanced by one on every
	// accepted push.
	Round int64 `json:"round"`

	// ClientRounds maps a client instance identifier to the acknowledgment
	// of its most recently merged diff.
	ClientRounds map[string]ClientRound `json:"client_rounds,omitempty"`
}

// NewLedgerState returns an empty state with all sets allocated and every
// identifier counter positioned at 1.
func NewLedgerState() *LedgerState {
	return &LedgerState{
		Accounts:     NewEntityState[EncryptedAccount](),
		Categories:   NewEntityState[EncryptedCategory](),
		Transactions: NewEntityState[EncryptedTransaction](),
		Plans:        NewEntityState[EncryptedPlan](),
		NextIDs: map[Kind]ID{
			KindAccount:     1,
			KindCategory:    1,
			KindTransaction: 1,
			KindPlan:        1,
		},
		ClientRounds: make(map[string]ClientRound),
	}
}

// Clone returns a deep copy of the state. The reconciliation engine merges
// into a clone so a failed round never leaves a half-merged canonical state.
func (s *LedgerState) Clone() *LedgerState {
	out := &LedgerState{
		Accounts:     s.Accounts.Clone(),
		Categories:   s.Categories.Clone(),
		Transactions: s.Transactions.Clone(),
		Plans:        s.Plans.Clone(),
		NextIDs:      make(map[Kind]ID, len(s.NextIDs)),
		Round:        s.Round,
		ClientRounds: make(map[string]ClientRound, len(s.ClientRounds)),
	}
	for kind, next := range s.NextIDs {
		out.NextIDs[kind] = next
	}
	for client, round := range s.ClientRounds {
		out.ClientRounds[client] = round
	}
	return out
}

// Normalize allocates any nil sets and counters. Called after decoding a
// state payload so the rest of the code never checks for nil maps.
func (s *LedgerState) Normalize() {
	if s.Accounts.Active == nil {
		s.Accounts = NewEntityState[EncryptedAccount]()
	}
	if s.Categories.Active == nil {
		s.Categories = NewEntityState[EncryptedCategory]()
	}
	if s.Transactions.Active == nil {
		s.Transactions = NewEntityState[EncryptedTransaction]()
	}
	if s.Plans.Active == nil {
		s.Plans = NewEntityState[EncryptedPlan]()
	}
	if s.NextIDs == nil {
		s.NextIDs = map[Kind]ID{
			KindAccount:     1,
			KindCategory:    1,
			KindTransaction: 1,
			KindPlan:        1,
		}
	}
	if s.ClientRounds == nil {
		s.ClientRounds = make(map[string]ClientRound)
	}
}

// SyncMarker records a client's last successful sync round. A zero marker
// means the client has never completed a round and its next diff covers the
// entire local state.
type SyncMarker struct {
	Round    int64     `json:"round"`
	SyncedAt time.Time `json:"synced_at"`
}

// IsZero reports whether the client has never synced.
func (m SyncMarker) IsZero() bool { return m.Round == 0 }
