// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/models"
)

// ledgerRepository is the PostgreSQL-backed implementation of
// [LedgerRepository]. The canonical state is stored as an opaque encrypted
// blob per ledger; the only structured columns are the round counter and
// the key derivation salt.
type ledgerRepository struct {
	*DB
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewLedgerRepository constructs a [LedgerRepository] backed by db.
func NewLedgerRepository(db *DB, log *logger.Logger) LedgerRepository {
	return &ledgerRepository{
		DB:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  log,
	}
}

// CreateLedger implements [LedgerRepository].
func (r *ledgerRepository) CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Insert("ledgers").
		Columns("ledger_id", "kdf_salt", "round", "canonical").
		Values(req.LedgerID, req.KDFSalt, 1, []byte(req.Payload)).
		Suffix("RETURNING ledger_id, kdf_salt, round, created_at").
		ToSql()
	if err != nil {
		return models.Ledger{}, fmt.Errorf("build create ledger query: %w", err)
	}

	var ledger models.Ledger
	row := r.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&ledger.ID, &ledger.KDFSalt, &ledger.Round, &ledger.CreatedAt); err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return models.Ledger{}, ErrLedgerAlreadyExists
		}
		log.Err(err).Str("ledger_id", req.LedgerID).Msg("create ledger failed")
		return models.Ledger{}, fmt.Errorf("create ledger: %w", err)
	}

	log.Info().Str("ledger_id", ledger.ID).Msg("ledger created")
	return ledger, nil
}

// GetLedger implements [LedgerRepository].
func (r *ledgerRepository) GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error) {
	query, args, err := r.builder.
		Select("ledger_id", "kdf_salt", "round", "created_at").
		From("ledgers").
		Where(sq.Eq{"ledger_id": ledgerID}).
		ToSql()
	if err != nil {
		return models.Ledger{}, fmt.Errorf("build get ledger query: %w", err)
	}

	var ledger models.Ledger
	row := r.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&ledger.ID, &ledger.KDFSalt, &ledger.Round, &ledger.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ledger{}, ErrLedgerNotFound
		}
		return models.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}

	return ledger, nil
}

// GetCanonical implements [LedgerRepository].
func (r *ledgerRepository) GetCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	query, args, err := r.builder.
		Select("ledger_id", "round", "canonical").
		From("ledgers").
		Where(sq.Eq{"ledger_id": ledgerID}).
		ToSql()
	if err != nil {
		return models.CanonicalBlob{}, fmt.Errorf("build get canonical query: %w", err)
	}

	var blob models.CanonicalBlob
	var payload []byte
	row := r.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&blob.LedgerID, &blob.Round, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CanonicalBlob{}, ErrLedgerNotFound
		}
		return models.CanonicalBlob{}, fmt.Errorf("get canonical: %w", err)
	}

	blob.Payload = string(payload)
	return blob, nil
}

// SwapCanonical implements [LedgerRepository]. The compare-and-swap is a
// single conditional UPDATE: it succeeds only while the stored round still
// equals the round the client merged against, which makes a push atomic
// without the repository ever reading the payload.
func (r *ledgerRepository) SwapCanonical(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Update("ledgers").
		Set("canonical", []byte(req.Payload)).
		Set("round", req.BaseRound+1).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"ledger_id": req.LedgerID, "round": req.BaseRound}).
		ToSql()
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("build swap canonical query: %w", err)
	}

	res, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("ledger_id", req.LedgerID).Msg("swap canonical failed")
		return models.PushResponse{}, fmt.Errorf("swap canonical: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("swap canonical rows affected: %w", err)
	}
	if affected == 0 {
		// Either the ledger is unknown or the base round is stale.
		if _, err = r.GetLedger(ctx, req.LedgerID); err != nil {
			return models.PushResponse{}, err
		}
		return models.PushResponse{}, ErrRoundConflict
	}

	log.Info().
		Str("ledger_id", req.LedgerID).
		Str("client_id", req.ClientID).
		Int64("round", req.BaseRound+1).
		Msg("canonical state advanced")

	return models.PushResponse{Round: req.BaseRound + 1}, nil
}
