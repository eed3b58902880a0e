// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func alwaysRetryable(error) bool { return true }

func TestWithRetry_SuccessFirstTry(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), testLogger(), "op", alwaysRetryable, func() error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), testLogger(), "op", func(error) bool { return false }, func() error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_TransientFailureThenSuccess(t *testing.T) {
	attempts := 0
	start := time.Now()
	err := withRetry(context.Background(), testLogger(), "op", alwaysRetryable, func() error {
		attempts++
		if attempts == 1 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.GreaterOrEqual(t, time.Since(start), defaultRetryBaseWait, "the first retry waits the base interval")
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), testLogger(), "op", alwaysRetryable, func() error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, defaultRetryAttempts, attempts)
}

func TestWithRetry_ContextCancellationCutsWaitShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withRetry(ctx, testLogger(), "op", alwaysRetryable, func() error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
