// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

// Package merge implements the reconciliation engine: it folds one client's
// diff into the canonical ledger state under the exclusive per-ledger
// lease. Because the lease serializes merges, a round is always a single
// diff against a single canonical state — there is no concurrent
// multi-writer case to resolve.
//
// Per entity kind, in the fixed order account, category, transaction, plan:
//
//  1. tombstone precedence — every removed identifier leaves the active set
//     no matter what else the round says about it (delete-wins);
//  2. identifier assignment — created items trade their local identifiers
//     for durable ones from the canonical counters, and every reference to
//     a traded identifier inside the same diff is rewritten;
//  3. update application — last-writer-wins overwrite of field blobs for
//     identifiers that survived step 1;
//  4. reference validation — transactions and plans whose parent is absent
//     from the merged active set are cascaded into removed and reported.
//
// Merge never mutates its inputs and is deterministic: same canonical
// state plus same diff always produces the same result.
package merge

import (
	"sort"

	"github.com/finkeeper/go-ledger-sync/internal/ledger"
	"github.com/finkeeper/go-ledger-sync/models"
)

// Result is the outcome of one merge round.
type Result struct {
	// State is the new canonical state. The input state is left untouched.
	State *models.LedgerState

	// Remap is the local-to-durable identifier table for the originating
	// client. It must reach that client before the created items count as
	// synced.
	Remap models.IDRemap

	// Rejected lists the items the merge resolved on the client's behalf:
	// cascaded dangling references and updates to unknown identifiers.
	Rejected []models.Rejection
}

// Merge folds incoming into canonical and returns the merge outcome.
func Merge(canonical *models.LedgerState, incoming models.Diff) (Result, error) {
	next := canonical.Clone()
	remap := make(models.IDRemap)
	var rejected []models.Rejection

	// Parent kinds first so that reference rewriting and validation can see
	// the merged accounts and categories.
	mergeKind(next, next.Accounts, incoming.Accounts, models.KindAccount, remap, &rejected,
		models.EncryptedAccount.WithID,
		func(a models.EncryptedAccount) models.EncryptedAccount { return a },
		nil,
	)
	mergeKind(next, next.Categories, incoming.Categories, models.KindCategory, remap, &rejected,
		models.EncryptedCategory.WithID,
		func(c models.EncryptedCategory) models.EncryptedCategory { return c },
		ledger.IsPredefinedCategory,
	)
	mergeKind(next, next.Transactions, incoming.Transactions, models.KindTransaction, remap, &rejected,
		models.EncryptedTransaction.WithID,
		func(t models.EncryptedTransaction) models.EncryptedTransaction {
			t.AccountID = remap.Lookup(models.KindAccount, t.AccountID)
			t.CategoryID = remap.Lookup(models.KindCategory, t.CategoryID)
			return t
		},
		nil,
	)
	mergeKind(next, next.Plans, incoming.Plans, models.KindPlan, remap, &rejected,
		models.EncryptedPlan.WithID,
		func(p models.EncryptedPlan) models.EncryptedPlan {
			p.CategoryID = remap.Lookup(models.KindCategory, p.CategoryID)
			return p
		},
		nil,
	)

	rejected = append(rejected, cascade(next)...)

	if err := ledger.CheckDisjoint(next); err != nil {
		return Result{}, err
	}

	return Result{State: next, Remap: remap, Rejected: rejected}, nil
}

// mergeKind runs steps 1-3 for one entity kind. st shares its maps with
// next, so mutations land in the new canonical state. rewrite resolves the
// reference fields of an item through the remap built so far; protected
// reports identifiers whose removal is refused (predefined categories).
func mergeKind[T models.Entity](
	next *models.LedgerState,
	st models.EntityState[T],
	kd models.KindDiff[T],
	kind models.Kind,
	remap models.IDRemap,
	rejected *[]models.Rejection,
	withID func(T, models.ID) T,
	rewrite func(T) T,
	protected func(models.ID) bool,
) {
	// Step 1: tombstone precedence. Deletions win over any concurrent
	// update in the same round, so they are applied first.
	for _, id := range kd.Removed {
		if protected != nil && protected(id) {
			continue
		}
		st.Tombstone(id)
	}

	// Step 2: identifier assignment and insertion of created items.
	for _, item := range kd.Created {
		item = rewrite(item)
		id := item.EntityID()

		if id.IsLocal() {
			durable := allocID(next, kind)
			remap.Put(kind, id, durable)
			st.Active[durable] = withID(item, durable)
			continue
		}

		// A created item already carrying a durable identifier comes from a
		// replayed or never-snapshotted diff. Tombstones and present items
		// make the replay detectable; only genuinely absent items land.
		if st.IsTombstoned(id) {
			continue
		}
		if _, ok := st.Active[id]; ok {
			continue
		}
		st.Active[id] = item
		bumpCounter(next, kind, id)
	}

	// Step 3: update application, last-writer-wins per item.
	for _, item := range kd.Updated {
		item = rewrite(item)
		id := item.EntityID()

		if st.IsTombstoned(id) {
			// A late edit to a deleted item is assumed unintentional;
			// reviving deleted financial records is worse than losing it.
			continue
		}
		if _, ok := st.Active[id]; !ok {
			*rejected = append(*rejected, models.Rejection{
				Kind:   kind,
				ID:     id,
				Reason: models.ReasonUnknownTarget,
			})
			continue
		}
		st.Active[id] = item
	}
}

// cascade runs step 4: any transaction or plan whose referenced parent is
// not in the merged active set moves to removed and is reported. Identifier
// order is sorted so the rejection list is deterministic.
func cascade(next *models.LedgerState) []models.Rejection {
	var rejected []models.Rejection

	var danglingTx []models.ID
	for id, tx := range next.Transactions.Active {
		if _, ok := next.Accounts.Active[tx.AccountID]; !ok {
			danglingTx = append(danglingTx, id)
			continue
		}
		if _, ok := next.Categories.Active[tx.CategoryID]; !ok {
			danglingTx = append(danglingTx, id)
		}
	}
	sortIDs(danglingTx)
	for _, id := range danglingTx {
		next.Transactions.Tombstone(id)
		rejected = append(rejected, models.Rejection{
			Kind:   models.KindTransaction,
			ID:     id,
			Reason: models.ReasonDanglingReference,
		})
	}

	var danglingPlans []models.ID
	for id, plan := range next.Plans.Active {
		if _, ok := next.Categories.Active[plan.CategoryID]; !ok {
			danglingPlans = append(danglingPlans, id)
		}
	}
	sortIDs(danglingPlans)
	for _, id := range danglingPlans {
		next.Plans.Tombstone(id)
		rejected = append(rejected, models.Rejection{
			Kind:   models.KindPlan,
			ID:     id,
			Reason: models.ReasonDanglingReference,
		})
	}

	return rejected
}

// allocID hands out the next durable identifier for kind and advances the
// canonical counter. Identifiers are assigned exactly once and never
// reused.
func allocID(next *models.LedgerState, kind models.Kind) models.ID {
	id := next.NextIDs[kind]
	next.NextIDs[kind] = id + 1
	return id
}

// bumpCounter keeps the counter strictly above every durable identifier
// that entered the state through a replayed creation.
func bumpCounter(next *models.LedgerState, kind models.Kind, id models.ID) {
	if id >= next.NextIDs[kind] {
		next.NextIDs[kind] = id + 1
	}
}

func sortIDs(ids []models.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
