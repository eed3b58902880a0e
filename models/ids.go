// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

// ID identifies a ledger entity. Durable identifiers are positive and are
// assigned exactly once from the monotonic counters carried inside the
// canonical state. Local identifiers are negative placeholders handed out by
// a client for items that have not completed a sync round-trip yet.
type ID int64

// IsLocal reports whether the identifier is a client-scoped placeholder.
func (id ID) IsLocal() bool { return id < 0 }

// IsDurable reports whether the identifier was assigned by the canonical
// counter. Zero is neither local nor durable and marks an unset identifier.
func (id ID) IsDurable() bool { return id > 0 }

// Kind enumerates the four synchronized entity kinds. The numeric order is
// the fixed merge order: parents (accounts, categories) are merged before
// the kinds that reference them.
type Kind int

const (
	KindAccount Kind = iota
	KindCategory
	KindTransaction
	KindPlan
)

// Kinds lists all entity kinds in merge order.
var Kinds = [...]Kind{KindAccount, KindCategory, KindTransaction, KindPlan}

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindCategory:
		return "category"
	case KindTransaction:
		return "transaction"
	case KindPlan:
		return "plan"
	default:
		return "unknown"
	}
}

// IDRemap records, per entity kind, the local-to-durable identifier mapping
// produced by one merge round. It must reach the originating client before
// that client may consider the created items synced.
type IDRemap map[Kind]map[ID]ID

// Lookup resolves id through the remap table. Identifiers without a mapping
// (durable ones, or locals from another round) are returned unchanged.
func (m IDRemap) Lookup(kind Kind, id ID) ID {
	if kinds, ok := m[kind]; ok {
		if durable, ok := kinds[id]; ok {
			return durable
		}
	}
	return id
}

// Put records a local-to-durable mapping, allocating the inner map lazily.
func (m IDRemap) Put(kind Kind, local, durable ID) {
	if m[kind] == nil {
		m[kind] = make(map[ID]ID)
	}
	m[kind][local] = durable
}

// Empty reports whether the table holds no mappings at all.
func (m IDRemap) Empty() bool {
	for _, kinds := range m {
		if len(kinds) > 0 {
			return false
		}
	}
	return true
}
