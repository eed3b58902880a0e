// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package crypto

import "errors"

// ErrAuthenticationFailed is returned when a ciphertext fails its GCM
// integrity check — the key is wrong (wrong password) or the blob was
// corrupted or tampered with in transit. Callers must treat it as fatal for
// the current sync round; it is never ignored and never partially applied.
var ErrAuthenticationFailed = errors.New("ciphertext authentication failed")
