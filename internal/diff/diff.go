// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

// Package diff computes the changelog a client produced between two sync
// markers. The computation is a set difference of the current local state
// against the snapshot retained at the previous successful sync — keeping
// that snapshot is the only way to tell "created since last sync" apart
// from "existed before and unchanged".
//
// Compute is a pure function: no clocks, no storage, no randomness. Given
// the same two states it always yields the same diff.
package diff

import (
	"sort"

	"github.com/finkeeper/go-ledger-sync/models"
)

// Compute returns the changes in now relative to base. A nil base means the
// client has never synced, and the diff covers the entire current state:
// every active item is reported as created and every durable tombstone as
// removed.
func Compute(now, base *models.LedgerState) models.Diff {
	var d models.Diff

	if base == nil {
		d.Accounts = fullKind(now.Accounts)
		d.Categories = fullKind(now.Categories)
		d.Transactions = fullKind(now.Transactions)
		d.Plans = fullKind(now.Plans)
		return d
	}

	d.Accounts = computeKind(now.Accounts, base.Accounts, models.EncryptedAccount.SameFields)
	d.Categories = computeKind(now.Categories, base.Categories, models.EncryptedCategory.SameFields)
	d.Transactions = computeKind(now.Transactions, base.Transactions, models.EncryptedTransaction.SameFields)
	d.Plans = computeKind(now.Plans, base.Plans, models.EncryptedPlan.SameFields)
	return d
}

// fullKind reports the whole of one kind as newly created and removed.
// Tombstones of local-only items are skipped: the remote never saw them, so
// there is nothing to delete.
func fullKind[T models.Entity](now models.EntityState[T]) models.KindDiff[T] {
	var kd models.KindDiff[T]
	for _, item := range now.Active {
		kd.Created = append(kd.Created, item)
	}
	for id := range now.Removed {
		if id.IsDurable() {
			kd.Removed = append(kd.Removed, id)
		}
	}
	return sortKind(kd)
}

// computeKind classifies one entity kind by set difference against the
// retained snapshot:
//
//   - active with a local identifier → created (a durable identifier can
//     only have come from a completed round, so local always means new);
//   - active, durable, absent from the snapshot → created;
//   - active in both with differing fields → updated;
//   - removed now but not removed in the snapshot → removed, unless the
//     identifier is local (created and deleted between syncs — the remote
//     never knew the item, no action).
func computeKind[T models.Entity](
	now, base models.EntityState[T],
	same func(a, b T) bool,
) models.KindDiff[T] {
	var kd models.KindDiff[T]

	for id, item := range now.Active {
		if id.IsLocal() {
			kd.Created = append(kd.Created, item)
			continue
		}

		prev, existed := base.Active[id]
		if !existed {
			if base.IsTombstoned(id) {
				// Locally resurrected after a synced deletion. Tombstones
				// are permanent; the stale copy is not reported and the
				// next merge-applied state drops it locally.
				continue
			}
			kd.Created = append(kd.Created, item)
			continue
		}

		if !same(item, prev) {
			kd.Updated = append(kd.Updated, item)
		}
	}

	for id := range now.Removed {
		if !id.IsDurable() {
			continue
		}
		if !base.IsTombstoned(id) {
			kd.Removed = append(kd.Removed, id)
		}
	}

	return sortKind(kd)
}

// sortKind orders every slice by identifier. The maps above iterate in
// random order; without the sort the same two states could yield diffs
// that trade created items for durable identifiers differently.
func sortKind[T models.Entity](kd models.KindDiff[T]) models.KindDiff[T] {
	sort.Slice(kd.Created, func(i, j int) bool { return kd.Created[i].EntityID() < kd.Created[j].EntityID() })
	sort.Slice(kd.Updated, func(i, j int) bool { return kd.Updated[i].EntityID() < kd.Updated[j].EntityID() })
	sort.Slice(kd.Removed, func(i, j int) bool { return kd.Removed[i] < kd.Removed[j] })
	return kd
}
