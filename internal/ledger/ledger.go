// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

// Package ledger holds the pure queries over a ledger state tuple: identity
// classification, tombstone membership and cascading-delete discovery. No
// function here has side effects; the reconciliation engine and the local
// store build on these primitives.
package ledger

import (
	"fmt"

	"github.com/finkeeper/go-ledger-sync/models"
)

// IdentityKind tells whether an identifier is a client-scoped placeholder
// or a durable identifier assigned by the canonical counter.
type IdentityKind int

const (
	IdentityLocal IdentityKind = iota
	IdentityDurable
)

// Classify returns the identity kind of id. Zero identifiers are treated as
// local: they belong to items that have never completed a round-trip.
func Classify(id models.ID) IdentityKind {
	if id.IsDurable() {
		return IdentityDurable
	}
	return IdentityLocal
}

// IsTombstoned reports whether id is in the removed set of the given kind.
func IsTombstoned(s *models.LedgerState, kind models.Kind, id models.ID) bool {
	switch kind {
	case models.KindAccount:
		return s.Accounts.IsTombstoned(id)
	case models.KindCategory:
		return s.Categories.IsTombstoned(id)
	case models.KindTransaction:
		return s.Transactions.IsTombstoned(id)
	case models.KindPlan:
		return s.Plans.IsTombstoned(id)
	default:
		return false
	}
}

// CascadeSet discovers the transactions and plans that must be tombstoned
// together with the given removed accounts and categories. It returns the
// dependents still present in the active sets; already-tombstoned items are
// not reported twice.
func CascadeSet(s *models.LedgerState, removedAccounts, removedCategories []models.ID) (transactions, plans []models.ID) {
	accountGone := make(map[models.ID]struct{}, len(removedAccounts))
	for _, id := range removedAccounts {
		accountGone[id] = struct{}{}
	}
	categoryGone := make(map[models.ID]struct{}, len(removedCategories))
	for _, id := range removedCategories {
		categoryGone[id] = struct{}{}
	}

	for id, tx := range s.Transactions.Active {
		if _, ok := accountGone[tx.AccountID]; ok {
			transactions = append(transactions, id)
			continue
		}
		if _, ok := categoryGone[tx.CategoryID]; ok {
			transactions = append(transactions, id)
		}
	}

	for id, plan := range s.Plans.Active {
		if _, ok := categoryGone[plan.CategoryID]; ok {
			plans = append(plans, id)
		}
	}

	return transactions, plans
}

// IsPredefinedCategory reports whether id is one of the transfer categories
// seeded at ledger creation. Predefined categories are never removable.
func IsPredefinedCategory(id models.ID) bool {
	return id == models.TransferIncomeCategoryID || id == models.TransferOutcomeCategoryID
}

// CheckDisjoint verifies the active/removed disjointness invariant for
// every entity kind. It is used as a merge postcondition and by tests.
func CheckDisjoint(s *models.LedgerState) error {
	if id, ok := overlap(s.Accounts.Active, s.Accounts.Removed); ok {
		return fmt.Errorf("account %d present in both active and removed sets", id)
	}
	if id, ok := overlap(s.Categories.Active, s.Categories.Removed); ok {
		return fmt.Errorf("category %d present in both active and removed sets", id)
	}
	if id, ok := overlap(s.Transactions.Active, s.Transactions.Removed); ok {
		return fmt.Errorf("transaction %d present in both active and removed sets", id)
	}
	if id, ok := overlap(s.Plans.Active, s.Plans.Removed); ok {
		return fmt.Errorf("plan %d present in both active and removed sets", id)
	}
	return nil
}

func overlap[T models.Entity](active, removed map[models.ID]T) (models.ID, bool) {
	for id := range active {
		if _, ok := removed[id]; ok {
			return id, true
		}
	}
	return 0, false
}
