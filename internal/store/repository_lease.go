// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/models"
)

// leaseRepository is the PostgreSQL-backed implementation of
// [LeaseRepository]. One row per ledger; the primary key constraint is what
// enforces at-most-one lease, and expiry is a timestamp comparison so a
// crashed client cannot wedge its ledger forever.
type leaseRepository struct {
	*DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewLeaseRepository constructs a [LeaseRepository] backed by db.
func NewLeaseRepository(db *DB, log *logger.Logger) LeaseRepository {
	return &leaseRepository{
		DB:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  log,
	}
}

// Acquire implements [LeaseRepository]. The insert-or-update is conditional
// on the existing lease being expired or owned by the same holder, so a
// live lease of another client is never stolen.
func (r *leaseRepository) Acquire(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error) {
	log := logger.FromContext(ctx)
	expiresAt := time.Now().UTC().Add(ttl)

	const upsert = `
		INSERT INTO leases (ledger_id, holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ledger_id) DO UPDATE
		SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		WHERE leases.expires_at < NOW() OR leases.holder = EXCLUDED.holder
		RETURNING ledger_id, holder, expires_at;`

	var grant models.LeaseGrant
	row := r.QueryRowContext(ctx, upsert, ledgerID, holder, expiresAt)
	err := row.Scan(&grant.LedgerID, &grant.Holder, &grant.ExpiresAt)
	switch {
	case err == nil:
		log.Debug().Str("ledger_id", ledgerID).Str("holder", holder).Msg("lease acquired")
		return grant, nil
	case errors.Is(err, sql.ErrNoRows):
		// The conditional upsert matched nothing: somebody else's lease is
		// still live.
		return models.LeaseGrant{}, ErrLeaseHeld
	case pgErrorCode(err) == pgerrcode.UniqueViolation:
		// Two acquisitions raced on the same fresh ledger; exactly one row
		// won the primary key.
		return models.LeaseGrant{}, ErrLeaseHeld
	default:
		log.Err(err).Str("ledger_id", ledgerID).Msg("lease acquire failed")
		return models.LeaseGrant{}, fmt.Errorf("acquire lease: %w", err)
	}
}

// Holder implements [LeaseRepository].
func (r *leaseRepository) Holder(ctx context.Context, ledgerID string) (string, error) {
	query, args, err := r.builder.
		Select("holder").
		From("leases").
		Where(sq.And{
			sq.Eq{"ledger_id": ledgerID},
			sq.Expr("expires_at >= NOW()"),
		}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build lease holder query: %w", err)
	}

	var holder string
	row := r.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&holder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get lease holder: %w", err)
	}

	return holder, nil
}

// Release implements [LeaseRepository].
func (r *leaseRepository) Release(ctx context.Context, ledgerID, holder string) error {
	query, args, err := r.builder.
		Delete("leases").
		Where(sq.Eq{"ledger_id": ledgerID, "holder": holder}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build lease release query: %w", err)
	}

	res, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("release lease: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release lease rows affected: %w", err)
	}
	if affected == 0 {
		return ErrLeaseNotHeld
	}

	logger.FromContext(ctx).Debug().
		Str("ledger_id", ledgerID).
		Str("holder", holder).
		Msg("lease released")

	return nil
}
