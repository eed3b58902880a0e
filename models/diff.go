// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

// KindDiff records the changes one client made to one entity kind since its
// last sync marker: items created (carrying local identifiers), items
// updated (carrying durable identifiers) and the identifiers newly
// tombstoned.
type KindDiff[T Entity] struct {
	Created []T  `json:"created,omitempty"`
	Updated []T  `json:"updated,omitempty"`
	Removed []ID `json:"removed,omitempty"`
}

// Empty reports whether the kind recorded no changes at all.
func (d KindDiff[T]) Empty() bool {
	return len(d.Created) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Diff is the full changelog of one client between two sync markers.
type Diff struct {
	Accounts     KindDiff[EncryptedAccount]     `json:"accounts"`
	Categories   KindDiff[EncryptedCategory]    `json:"categories"`
	Transactions KindDiff[EncryptedTransaction] `json:"transactions"`
	Plans        KindDiff[EncryptedPlan]        `json:"plans"`
}

// Empty reports whether no kind recorded any change.
func (d Diff) Empty() bool {
	return d.Accounts.Empty() && d.Categories.Empty() &&
		d.Transactions.Empty() && d.Plans.Empty()
}

// RejectReason classifies why the reconciliation engine refused or
// cascaded an item.
type RejectReason string

const (
	// ReasonDanglingReference marks a transaction or plan whose referenced
	// account or category is absent from the merged active set. The item is
	// cascaded into the removed set, not dropped silently.
	ReasonDanglingReference RejectReason = "dangling_reference"

	// ReasonUnknownTarget marks an update whose durable identifier the
	// canonical state has never seen. The update is discarded.
	ReasonUnknownTarget RejectReason = "unknown_target"
)

// Rejection reports one item the merge could not apply as submitted. It is
// informational: the merge already resolved the condition deterministically.
type Rejection struct {
	Kind   Kind         `json:"kind"`
	ID     ID           `json:"id"`
	Reason RejectReason `json:"reason"`
}
