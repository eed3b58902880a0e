// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

import (
	"bytes"
	"time"
)

// Encrypted entity twins. Sensitive fields (names, amounts, balances,
// limits, descriptions) are AES-256-GCM ciphertext blobs produced by the
// crypto layer; identifiers, reference fields, category types and
// timestamps stay in the clear because the merge algebra operates on them.
// These are the only forms that ever leave a client.

// EncryptedAccount is the protected twin of [Account].
type EncryptedAccount struct {
	ID      ID     `json:"id"`
	Name    []byte `json:"name"`
	Balance []byte `json:"balance"`
	// ChangedAt mirrors the local store's change timestamp. It is carried
	// for storage parity only; diffing and merging never consult it.
	ChangedAt time.Time `json:"changed_at"`
}

// EncryptedCategory is the protected twin of [Category].
type EncryptedCategory struct {
	ID        ID           `json:"id"`
	Name      []byte       `json:"name"`
	Type      CategoryType `json:"type"`
	ChangedAt time.Time    `json:"changed_at"`
}

// EncryptedTransaction is the protected twin of [Transaction].
type EncryptedTransaction struct {
	ID          ID        `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description []byte    `json:"description"`
	AccountID   ID        `json:"account_id"`
	CategoryID  ID        `json:"category_id"`
	Amount      []byte    `json:"amount"`
	ChangedAt   time.Time `json:"changed_at"`
}

// EncryptedPlan is the protected twin of [Plan].
type EncryptedPlan struct {
	ID           ID        `json:"id"`
	Name         []byte    `json:"name"`
	CategoryID   ID        `json:"category_id"`
	MonthlyLimit []byte    `json:"monthly_limit"`
	ChangedAt    time.Time `json:"changed_at"`
}

// EntityID implementations let generic set and merge code address any of
// the four kinds uniformly.

func (a EncryptedAccount) EntityID() ID     { return a.ID }
func (c EncryptedCategory) EntityID() ID    { return c.ID }
func (t EncryptedTransaction) EntityID() ID { return t.ID }
func (p EncryptedPlan) EntityID() ID        { return p.ID }

// WithID returns a copy carrying the given identifier. Used by the
// reconciliation engine when a local identifier is replaced by a durable one.

func (a EncryptedAccount) WithID(id ID) EncryptedAccount         { a.ID = id; return a }
func (c EncryptedCategory) WithID(id ID) EncryptedCategory       { c.ID = id; return c }
func (t EncryptedTransaction) WithID(id ID) EncryptedTransaction { t.ID = id; return t }
func (p EncryptedPlan) WithID(id ID) EncryptedPlan               { p.ID = id; return p }

// SameFields reports whether the encrypted payload of two versions of one
// entity is identical. Comparison is by ciphertext bytes and structural
// fields only, never by timestamps, so diffing stays deterministic.

func (a EncryptedAccount) SameFields(o EncryptedAccount) bool {
	return bytes.Equal(a.Name, o.Name) && bytes.Equal(a.Balance, o.Balance)
}

func (c EncryptedCategory) SameFields(o EncryptedCategory) bool {
	return c.Type == o.Type && bytes.Equal(c.Name, o.Name)
}

func (t EncryptedTransaction) SameFields(o EncryptedTransaction) bool {
	return t.AccountID == o.AccountID &&
		t.CategoryID == o.CategoryID &&
		t.Timestamp.Equal(o.Timestamp) &&
		bytes.Equal(t.Description, o.Description) &&
		bytes.Equal(t.Amount, o.Amount)
}

func (p EncryptedPlan) SameFields(o EncryptedPlan) bool {
	return p.CategoryID == o.CategoryID &&
		bytes.Equal(p.Name, o.Name) &&
		bytes.Equal(p.MonthlyLimit, o.MonthlyLimit)
}
