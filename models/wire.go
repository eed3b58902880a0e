// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Wire types exchanged between a client and the remote store. The remote is
// untrusted: it sees only the fields below, never the decrypted payloads.

// Ledger is the remote store's registry row for one ledger. The key
// derivation salt is generated once at ledger creation and stored in the
// clear alongside the encrypted canonical state; it is worthless without
// the user password.
type Ledger struct {
	ID        string    `json:"id"`
	KDFSalt   []byte    `json:"kdf_salt"`
	Round     int64     `json:"round"`
	CreatedAt time.Time `json:"created_at"`
}

// CanonicalBlob is the encrypted canonical state as the remote stores and
// serves it. Round is duplicated outside the ciphertext so the remote can
// compare-and-swap on push without being able to decrypt anything.
type CanonicalBlob struct {
	LedgerID string `json:"ledger_id"`
	Round    int64  `json:"round"`

	// Payload is the AES-256-GCM encrypted, base64-encoded serialization of
	// [LedgerState].
	Payload string `json:"payload"`
}

// PushRequest uploads a freshly merged canonical state. BaseRound is the
// round the client pulled and merged against; the remote accepts the push
// only while its stored round still equals BaseRound and the caller holds
// the ledger lease.
type PushRequest struct {
	LedgerID  string `json:"ledger_id"`
	ClientID  string `json:"client_id"`
	BaseRound int64  `json:"base_round"`
	Payload   string `json:"payload"`
}

// PushResponse acknowledges an accepted push and carries the new canonical
// round the client commits under.
type PushResponse struct {
	Round int64 `json:"round"`
}

// LeaseGrant is the remote's confirmation of an exclusive per-ledger merge
// lease. The holder token must accompany the subsequent push and release.
type LeaseGrant struct {
	LedgerID  string    `json:"ledger_id"`
	Holder    string    `json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcquireLeaseRequest claims the per-ledger sync lease for TTLSeconds.
// The holder is taken from the caller's bearer token, not the body.
type AcquireLeaseRequest struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

// CreateLedgerRequest registers a new ledger with its key derivation salt
// and the initial encrypted canonical state.
type CreateLedgerRequest struct {
	LedgerID string `json:"ledger_id"`
	KDFSalt  []byte `json:"kdf_salt"`
	Payload  string `json:"payload"`
}

// Token wraps a JWT token with convenience accessors for the sync
// transport. It embeds [jwt.Token] for signing and parsing and
// [jwt.RegisteredClaims] so the standard claim set decodes in place.
//
// SignedString holds the compact serialized form ready for the
// Authorization header. ClientID caches the "sub" claim.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	SignedString string `json:"-"`
	ClientID     string `json:"-"`
}

// GetClientID returns the client identifier carried in the token's
// "sub" claim.
func (t *Token) GetClientID() (string, error) {
	clientID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("extract client id from token: %w", err)
	}
	if clientID == "" {
		return "", errors.New("token subject is empty")
	}
	return clientID, nil
}

// String returns the compact JWS serialization of the token. It
// implements [fmt.Stringer].
func (t *Token) String() string {
	return t.SignedString
}
