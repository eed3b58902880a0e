// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_mock.go -package=mock

import "github.com/shopspring/decimal"

// Keychain is the client-side cryptography of the ledger. It knows nothing
// about storage or the network; it derives the symmetric key from the user
// password and protects entity fields and whole sync payloads.
//
// All ciphertext blobs have the form nonce (12 bytes) ‖ ciphertext and are
// authenticated. A failed integrity check always surfaces as
// [ErrAuthenticationFailed].
type Keychain interface {
	// GenerateSalt produces the 16-byte key derivation salt. The salt is
	// generated once per ledger and stored alongside the encrypted data —
	// it is not a secret, it only makes equal passwords derive unequal keys.
	GenerateSalt() ([]byte, error)

	// DeriveKey derives the 256-bit ledger key from the user password and
	// salt using Argon2id. The key exists only in client memory.
	DeriveKey(password string, salt []byte) []byte

	// EncryptField protects one sensitive entity field (name, amount,
	// balance, limit, description) with AES-256-GCM under a fresh nonce.
	EncryptField(key, plaintext []byte) ([]byte, error)

	// DecryptField reverses EncryptField. Returns
	// [ErrAuthenticationFailed] if the blob fails its integrity check.
	DecryptField(key, blob []byte) ([]byte, error)

	// EncryptPayload serializes v to JSON and encrypts it for exchange with
	// the remote store. The result is base64 (standard encoding) of
	// nonce ‖ ciphertext, with a fresh nonce per call.
	EncryptPayload(key []byte, v any) (string, error)

	// DecryptPayload decodes, authenticates and decrypts a payload produced
	// by EncryptPayload and unmarshals the plaintext JSON into target,
	// which must be a non-nil pointer.
	DecryptPayload(key []byte, payload string, target any) error

	// EncryptString and DecryptString wrap EncryptField/DecryptField for
	// string-typed entity fields.
	EncryptString(key []byte, s string) ([]byte, error)
	DecryptString(key, blob []byte) (string, error)

	// EncryptDecimal and DecryptDecimal protect monetary values. Decimals
	// travel as their canonical string form.
	EncryptDecimal(key []byte, d decimal.Decimal) ([]byte, error)
	DecryptDecimal(key, blob []byte) (decimal.Decimal, error)
}
