// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

// SyncState is the phase of the client sync engine. A round moves through
// Pulling, Merging, Pushing and Committing and returns to Idle; any failure
// parks the engine in Aborted until the next round resets it.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncPulling
	SyncMerging
	SyncPushing
	SyncCommitting
	SyncAborted
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncPulling:
		return "pulling"
	case SyncMerging:
		return "merging"
	case SyncPushing:
		return "pushing"
	case SyncCommitting:
		return "committing"
	case SyncAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
