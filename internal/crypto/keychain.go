// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/argon2"
)

// keychain is the private implementation of [Keychain].
type keychain struct {
	// Argon2id tuning parameters. Kept in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeychain constructs a [Keychain] with the Argon2id parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeychain() Keychain {
	return &keychain{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// GenerateSalt implements [Keychain]. It reads 16 random bytes from the OS
// CSPRNG.
func (k *keychain) GenerateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey implements [Keychain].
func (k *keychain) DeriveKey(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// EncryptField implements [Keychain]. The output blob is
// nonce (12 bytes) ‖ ciphertext, with a fresh random nonce per call.
func (k *keychain) EncryptField(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Prepend the nonce so DecryptField can split it out.
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// DecryptField implements [Keychain]. Any integrity failure — including a
// blob shorter than the nonce — maps to [ErrAuthenticationFailed]: a wrong
// password and a corrupted blob are indistinguishable by design.
func (k *keychain) DecryptField(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrAuthenticationFailed
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	return plaintext, nil
}

// EncryptPayload implements [Keychain]. JSON-serialize, encrypt, base64.
func (k *keychain) EncryptPayload(key []byte, v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	blob, err := k.EncryptField(key, plaintext)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptPayload implements [Keychain].
func (k *keychain) DecryptPayload(key []byte, payload string, target any) error {
	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// A blob that is not even valid base64 was corrupted in transit.
		return ErrAuthenticationFailed
	}

	plaintext, err := k.DecryptField(key, blob)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	return nil
}

// EncryptString implements [Keychain].
func (k *keychain) EncryptString(key []byte, s string) ([]byte, error) {
	return k.EncryptField(key, []byte(s))
}

// DecryptString implements [Keychain].
func (k *keychain) DecryptString(key, blob []byte) (string, error) {
	plaintext, err := k.DecryptField(key, blob)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptDecimal implements [Keychain].
func (k *keychain) EncryptDecimal(key []byte, d decimal.Decimal) ([]byte, error) {
	return k.EncryptField(key, []byte(d.String()))
}

// DecryptDecimal implements [Keychain].
func (k *keychain) DecryptDecimal(key, blob []byte) (decimal.Decimal, error) {
	plaintext, err := k.DecryptField(key, blob)
	if err != nil {
		return decimal.Decimal{}, err
	}

	d, err := decimal.NewFromString(string(plaintext))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse decimal plaintext: %w", err)
	}
	return d, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return gcm, nil
}
