// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finkeeper/go-ledger-sync/internal/ledger"
	"github.com/finkeeper/go-ledger-sync/models"
)

// localSQLiteStore is the SQLite-backed implementation of [LocalStore]. It
// mirrors the canonical-state schema locally and keeps the sync
// bookkeeping (marker, snapshot, local-identifier counter) in two extra
// tables so that one database transaction can commit a whole sync round.
type localSQLiteStore struct {
	db *sql.DB
}

// NewLocalStore opens (and if needed creates) the client database at
// dbPath. An empty path opens an in-memory database, used by tests.
func NewLocalStore(dbPath string) (LocalStore, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	// One connection: sqlite allows a single writer anyway, and every
	// pooled connection to :memory: would otherwise be its own database.
	db.SetMaxOpenConns(1)

	// The schema is applied on every open; all statements are idempotent.
	if _, err = db.Exec(createLocalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create local schema: %w", err)
	}

	return &localSQLiteStore{db: db}, nil
}

// Close implements [LocalStore].
func (s *localSQLiteStore) Close() error { return s.db.Close() }

// InitLedger implements [LocalStore].
func (s *localSQLiteStore) InitLedger(ctx context.Context, ledgerID, clientID string, kdfSalt []byte) error {
	if _, err := s.db.ExecContext(ctx, initLedgerMeta, ledgerID, clientID, kdfSalt); err != nil {
		return fmt.Errorf("init ledger meta: %w", err)
	}
	return nil
}

// Meta implements [LocalStore].
func (s *localSQLiteStore) Meta(ctx context.Context) (string, string, []byte, error) {
	var ledgerID, clientID sql.NullString
	var salt []byte

	row := s.db.QueryRowContext(ctx, getLedgerMeta)
	if err := row.Scan(&ledgerID, &clientID, &salt); err != nil {
		return "", "", nil, fmt.Errorf("get ledger meta: %w", err)
	}
	if !ledgerID.Valid || ledgerID.String == "" {
		return "", "", nil, ErrNotInitialized
	}

	return ledgerID.String, clientID.String, salt, nil
}

// NextLocalID implements [LocalStore]. Placeholder identifiers are
// negative and strictly decreasing, so they can never collide with a
// durable identifier or with each other.
func (s *localSQLiteStore) NextLocalID(ctx context.Context) (models.ID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin local id transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err = tx.QueryRowContext(ctx, getNextLocalID).Scan(&next); err != nil {
		return 0, fmt.Errorf("read local id counter: %w", err)
	}
	if _, err = tx.ExecContext(ctx, decrementNextLocalID); err != nil {
		return 0, fmt.Errorf("advance local id counter: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit local id counter: %w", err)
	}

	return models.ID(next), nil
}

// LastSyncMarker implements [LocalStore].
func (s *localSQLiteStore) LastSyncMarker(ctx context.Context) (models.SyncMarker, error) {
	var marker models.SyncMarker
	var syncedAt sql.NullTime

	row := s.db.QueryRowContext(ctx, getSyncMarker)
	if err := row.Scan(&marker.Round, &syncedAt); err != nil {
		return models.SyncMarker{}, fmt.Errorf("get sync marker: %w", err)
	}
	if syncedAt.Valid {
		marker.SyncedAt = syncedAt.Time
	}

	return marker, nil
}

// LoadSnapshot implements [LocalStore].
func (s *localSQLiteStore) LoadSnapshot(ctx context.Context) (*models.LedgerState, error) {
	var payload []byte
	row := s.db.QueryRowContext(ctx, getSnapshot)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	snapshot := new(models.LedgerState)
	if err := json.Unmarshal(payload, snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snapshot.Normalize()

	return snapshot, nil
}

// LoadState implements [LocalStore].
func (s *localSQLiteStore) LoadState(ctx context.Context) (*models.LedgerState, error) {
	state := models.NewLedgerState()

	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		state.Accounts.Active[a.ID] = a
	}
	if err = s.loadRemovedAccounts(ctx, state); err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		state.Categories.Active[c.ID] = c
	}
	if err = s.loadRemovedCategories(ctx, state); err != nil {
		return nil, err
	}

	transactions, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		state.Transactions.Active[t.ID] = t
	}
	if err = s.loadRemovedTransactions(ctx, state); err != nil {
		return nil, err
	}

	plans, err := s.Plans(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		state.Plans.Active[p.ID] = p
	}
	if err = s.loadRemovedPlans(ctx, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Apply implements [LocalStore]. The whole round lands in one transaction:
// remap first (parents before reference columns, a plain table update per
// mapping — no graph walk), then merged-row upserts, then tombstones, then
// the snapshot and marker. Anything the merge does not mention — such as
// items the user created while the round was in flight — is left alone and
// surfaces in the next round's diff.
func (s *localSQLiteStore) Apply(ctx context.Context, merged *models.LedgerState, remap models.IDRemap, marker models.SyncMarker) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply transaction: %w", err)
	}
	defer tx.Rollback()

	if err = applyRemap(ctx, tx, remap); err != nil {
		return err
	}

	now := time.Now().UTC()

	for _, a := range merged.Accounts.Active {
		if _, err = tx.ExecContext(ctx, upsertAccount, int64(a.ID), a.Name, a.Balance, a.ChangedAt); err != nil {
			return fmt.Errorf("apply account %d: %w", a.ID, err)
		}
	}
	for id := range merged.Accounts.Removed {
		if _, err = tx.ExecContext(ctx, tombstoneAccount, now, int64(id)); err != nil {
			return fmt.Errorf("tombstone account %d: %w", id, err)
		}
	}

	for _, c := range merged.Categories.Active {
		if _, err = tx.ExecContext(ctx, upsertCategory, int64(c.ID), c.Name, int(c.Type), c.ChangedAt); err != nil {
			return fmt.Errorf("apply category %d: %w", c.ID, err)
		}
	}
	for id := range merged.Categories.Removed {
		if _, err = tx.ExecContext(ctx, tombstoneCategory, now, int64(id)); err != nil {
			return fmt.Errorf("tombstone category %d: %w", id, err)
		}
	}

	for _, t := range merged.Transactions.Active {
		if _, err = tx.ExecContext(ctx, upsertTransaction,
			int64(t.ID), t.Timestamp, t.Description, int64(t.AccountID), int64(t.CategoryID), t.Amount, t.ChangedAt,
		); err != nil {
			return fmt.Errorf("apply transaction %d: %w", t.ID, err)
		}
	}
	for id := range merged.Transactions.Removed {
		if _, err = tx.ExecContext(ctx, tombstoneTransaction, now, int64(id)); err != nil {
			return fmt.Errorf("tombstone transaction %d: %w", id, err)
		}
	}

	for _, p := range merged.Plans.Active {
		if _, err = tx.ExecContext(ctx, upsertPlan, int64(p.ID), p.Name, int64(p.CategoryID), p.MonthlyLimit, p.ChangedAt); err != nil {
			return fmt.Errorf("apply plan %d: %w", p.ID, err)
		}
	}
	for id := range merged.Plans.Removed {
		if _, err = tx.ExecContext(ctx, tombstonePlan, now, int64(id)); err != nil {
			return fmt.Errorf("tombstone plan %d: %w", id, err)
		}
	}

	payload, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err = tx.ExecContext(ctx, saveSnapshot, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if _, err = tx.ExecContext(ctx, setSyncMarker, marker.Round, marker.SyncedAt); err != nil {
		return fmt.Errorf("set sync marker: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit apply transaction: %w", err)
	}

	return nil
}

// applyRemap rewrites every local identifier (and every reference column
// pointing at it) to its durable identifier. Parent kinds go first so
// reference columns always rewrite after their targets.
func applyRemap(ctx context.Context, tx *sql.Tx, remap models.IDRemap) error {
	for local, durable := range remap[models.KindAccount] {
		for _, q := range []string{remapAccountID, remapTransactionAccountRef} {
			if _, err := tx.ExecContext(ctx, q, int64(durable), int64(local)); err != nil {
				return fmt.Errorf("remap account %d -> %d: %w", local, durable, err)
			}
		}
	}
	for local, durable := range remap[models.KindCategory] {
		for _, q := range []string{remapCategoryID, remapTransactionCategoryRef, remapPlanCategoryRef} {
			if _, err := tx.ExecContext(ctx, q, int64(durable), int64(local)); err != nil {
				return fmt.Errorf("remap category %d -> %d: %w", local, durable, err)
			}
		}
	}
	for local, durable := range remap[models.KindTransaction] {
		if _, err := tx.ExecContext(ctx, remapTransactionID, int64(durable), int64(local)); err != nil {
			return fmt.Errorf("remap transaction %d -> %d: %w", local, durable, err)
		}
	}
	for local, durable := range remap[models.KindPlan] {
		if _, err := tx.ExecContext(ctx, remapPlanID, int64(durable), int64(local)); err != nil {
			return fmt.Errorf("remap plan %d -> %d: %w", local, durable, err)
		}
	}
	return nil
}

// CleanRemoved implements [LocalStore]. Only tombstones the remote already
// knows about (present in the retained snapshot's removed sets) are
// purged; an unsynced tombstone must survive until the next round reports
// it.
func (s *localSQLiteStore) CleanRemoved(ctx context.Context) error {
	snapshot, err := s.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clean transaction: %w", err)
	}
	defer tx.Rollback()

	purge := func(table, column string, removed map[models.ID]struct{}) error {
		for id := range removed {
			q := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND removed_at IS NOT NULL;", table, column)
			if _, err := tx.ExecContext(ctx, q, int64(id)); err != nil {
				return fmt.Errorf("purge %s %d: %w", table, id, err)
			}
		}
		return nil
	}

	if err = purge("transactions", "transaction_id", idSet(snapshot.Transactions.Removed)); err != nil {
		return err
	}
	if err = purge("plans", "plan_id", idSet(snapshot.Plans.Removed)); err != nil {
		return err
	}
	if err = purge("accounts", "account_id", idSet(snapshot.Accounts.Removed)); err != nil {
		return err
	}
	if err = purge("categories", "category_id", idSet(snapshot.Categories.Removed)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit clean transaction: %w", err)
	}
	return nil
}

func idSet[T models.Entity](m map[models.ID]T) map[models.ID]struct{} {
	out := make(map[models.ID]struct{}, len(m))
	for id := range m {
		out[id] = struct{}{}
	}
	return out
}

// ── Account CRUD ─────────────────────────────────────────────────────────

func (s *localSQLiteStore) AddAccount(ctx context.Context, a models.EncryptedAccount) error {
	_, err := s.db.ExecContext(ctx, upsertAccount, int64(a.ID), a.Name, a.Balance, a.ChangedAt)
	if err != nil {
		return fmt.Errorf("add account: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) UpdateAccount(ctx context.Context, a models.EncryptedAccount) error {
	return s.AddAccount(ctx, a)
}

// RemoveAccount tombstones an account. Without force the removal fails
// while live transactions still reference the account; with force the
// dependents are tombstoned in the same transaction.
func (s *localSQLiteStore) RemoveAccount(ctx context.Context, id models.ID, force bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove account transaction: %w", err)
	}
	defer tx.Rollback()

	var dependents int
	if err = tx.QueryRowContext(ctx, countAccountDependents, int64(id)).Scan(&dependents); err != nil {
		return fmt.Errorf("count account dependents: %w", err)
	}
	if dependents > 0 && !force {
		return ErrEntityInUse
	}

	now := time.Now().UTC()
	if dependents > 0 {
		const cascadeTx = `
			UPDATE transactions SET removed_at = $1
			WHERE account_id = $2 AND removed_at IS NULL;`
		if _, err = tx.ExecContext(ctx, cascadeTx, now, int64(id)); err != nil {
			return fmt.Errorf("cascade account transactions: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, tombstoneAccount, now, int64(id)); err != nil {
		return fmt.Errorf("remove account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit remove account: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) Account(ctx context.Context, id models.ID) (models.EncryptedAccount, error) {
	var a models.EncryptedAccount
	var rawID int64

	row := s.db.QueryRowContext(ctx, selectAccount, int64(id))
	if err := row.Scan(&rawID, &a.Name, &a.Balance, &a.ChangedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EncryptedAccount{}, ErrNotFound
		}
		return models.EncryptedAccount{}, fmt.Errorf("get account: %w", err)
	}

	a.ID = models.ID(rawID)
	return a, nil
}

func (s *localSQLiteStore) Accounts(ctx context.Context) ([]models.EncryptedAccount, error) {
	rows, err := s.db.QueryContext(ctx, selectAccounts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []models.EncryptedAccount
	for rows.Next() {
		var a models.EncryptedAccount
		var rawID int64
		var removedAt sql.NullTime
		if err = rows.Scan(&rawID, &a.Name, &a.Balance, &a.ChangedAt, &removedAt); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		if removedAt.Valid {
			continue
		}
		a.ID = models.ID(rawID)
		out = append(out, a)
	}

	return out, rows.Err()
}

func (s *localSQLiteStore) loadRemovedAccounts(ctx context.Context, state *models.LedgerState) error {
	rows, err := s.db.QueryContext(ctx, selectAccounts)
	if err != nil {
		return fmt.Errorf("list removed accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.EncryptedAccount
		var rawID int64
		var removedAt sql.NullTime
		if err = rows.Scan(&rawID, &a.Name, &a.Balance, &a.ChangedAt, &removedAt); err != nil {
			return fmt.Errorf("scan removed account row: %w", err)
		}
		if !removedAt.Valid {
			continue
		}
		a.ID = models.ID(rawID)
		state.Accounts.Removed[a.ID] = a
	}

	return rows.Err()
}

// ── Category CRUD ────────────────────────────────────────────────────────

func (s *localSQLiteStore) AddCategory(ctx context.Context, c models.EncryptedCategory) error {
	_, err := s.db.ExecContext(ctx, upsertCategory, int64(c.ID), c.Name, int(c.Type), c.ChangedAt)
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) RemoveCategory(ctx context.Context, id models.ID, force bool) error {
	if ledger.IsPredefinedCategory(id) {
		return ErrProtectedCategory
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove category transaction: %w", err)
	}
	defer tx.Rollback()

	var dependents int
	if err = tx.QueryRowContext(ctx, countCategoryDependents, int64(id)).Scan(&dependents); err != nil {
		return fmt.Errorf("count category dependents: %w", err)
	}
	if dependents > 0 && !force {
		return ErrEntityInUse
	}

	now := time.Now().UTC()
	if dependents > 0 {
		const cascadeTx = `
			UPDATE transactions SET removed_at = $1
			WHERE category_id = $2 AND removed_at IS NULL;`
		const cascadePlans = `
			UPDATE plans SET removed_at = $1
			WHERE category_id = $2 AND removed_at IS NULL;`
		if _, err = tx.ExecContext(ctx, cascadeTx, now, int64(id)); err != nil {
			return fmt.Errorf("cascade category transactions: %w", err)
		}
		if _, err = tx.ExecContext(ctx, cascadePlans, now, int64(id)); err != nil {
			return fmt.Errorf("cascade category plans: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, tombstoneCategory, now, int64(id)); err != nil {
		return fmt.Errorf("remove category: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit remove category: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) Categories(ctx context.Context) ([]models.EncryptedCategory, error) {
	rows, err := s.db.QueryContext(ctx, selectCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.EncryptedCategory
	for rows.Next() {
		c, removed, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *localSQLiteStore) loadRemovedCategories(ctx context.Context, state *models.LedgerState) error {
	rows, err := s.db.QueryContext(ctx, selectCategories)
	if err != nil {
		return fmt.Errorf("list removed categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, removed, err := scanCategory(rows)
		if err != nil {
			return err
		}
		if removed {
			state.Categories.Removed[c.ID] = c
		}
	}

	return rows.Err()
}

func scanCategory(rows *sql.Rows) (models.EncryptedCategory, bool, error) {
	var c models.EncryptedCategory
	var rawID int64
	var rawType int
	var removedAt sql.NullTime

	if err := rows.Scan(&rawID, &c.Name, &rawType, &c.ChangedAt, &removedAt); err != nil {
		return models.EncryptedCategory{}, false, fmt.Errorf("scan category row: %w", err)
	}

	c.ID = models.ID(rawID)
	c.Type = models.CategoryType(rawType)
	return c, removedAt.Valid, nil
}

// ── Transaction CRUD ─────────────────────────────────────────────────────

func (s *localSQLiteStore) AddTransaction(ctx context.Context, t models.EncryptedTransaction) error {
	_, err := s.db.ExecContext(ctx, upsertTransaction,
		int64(t.ID), t.Timestamp, t.Description, int64(t.AccountID), int64(t.CategoryID), t.Amount, t.ChangedAt)
	if err != nil {
		return fmt.Errorf("add transaction: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) RemoveTransaction(ctx context.Context, id models.ID) error {
	if _, err := s.db.ExecContext(ctx, tombstoneTransaction, time.Now().UTC(), int64(id)); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) Transactions(ctx context.Context) ([]models.EncryptedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.EncryptedTransaction
	for rows.Next() {
		t, removed, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func (s *localSQLiteStore) loadRemovedTransactions(ctx context.Context, state *models.LedgerState) error {
	rows, err := s.db.QueryContext(ctx, selectTransactions)
	if err != nil {
		return fmt.Errorf("list removed transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, removed, err := scanTransaction(rows)
		if err != nil {
			return err
		}
		if removed {
			state.Transactions.Removed[t.ID] = t
		}
	}

	return rows.Err()
}

func scanTransaction(rows *sql.Rows) (models.EncryptedTransaction, bool, error) {
	var t models.EncryptedTransaction
	var rawID, rawAccount, rawCategory int64
	var removedAt sql.NullTime

	if err := rows.Scan(&rawID, &t.Timestamp, &t.Description, &rawAccount, &rawCategory, &t.Amount, &t.ChangedAt, &removedAt); err != nil {
		return models.EncryptedTransaction{}, false, fmt.Errorf("scan transaction row: %w", err)
	}

	t.ID = models.ID(rawID)
	t.AccountID = models.ID(rawAccount)
	t.CategoryID = models.ID(rawCategory)
	return t, removedAt.Valid, nil
}

// ── Plan CRUD ────────────────────────────────────────────────────────────

func (s *localSQLiteStore) AddPlan(ctx context.Context, p models.EncryptedPlan) error {
	_, err := s.db.ExecContext(ctx, upsertPlan, int64(p.ID), p.Name, int64(p.CategoryID), p.MonthlyLimit, p.ChangedAt)
	if err != nil {
		return fmt.Errorf("add plan: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) RemovePlan(ctx context.Context, id models.ID) error {
	if _, err := s.db.ExecContext(ctx, tombstonePlan, time.Now().UTC(), int64(id)); err != nil {
		return fmt.Errorf("remove plan: %w", err)
	}
	return nil
}

func (s *localSQLiteStore) Plans(ctx context.Context) ([]models.EncryptedPlan, error) {
	rows, err := s.db.QueryContext(ctx, selectPlans)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []models.EncryptedPlan
	for rows.Next() {
		p, removed, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (s *localSQLiteStore) loadRemovedPlans(ctx context.Context, state *models.LedgerState) error {
	rows, err := s.db.QueryContext(ctx, selectPlans)
	if err != nil {
		return fmt.Errorf("list removed plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, removed, err := scanPlan(rows)
		if err != nil {
			return err
		}
		if removed {
			state.Plans.Removed[p.ID] = p
		}
	}

	return rows.Err()
}

func scanPlan(rows *sql.Rows) (models.EncryptedPlan, bool, error) {
	var p models.EncryptedPlan
	var rawID, rawCategory int64
	var removedAt sql.NullTime

	if err := rows.Scan(&rawID, &p.Name, &rawCategory, &p.MonthlyLimit, &p.ChangedAt, &removedAt); err != nil {
		return models.EncryptedPlan{}, false, fmt.Errorf("scan plan row: %w", err)
	}

	p.ID = models.ID(rawID)
	p.CategoryID = models.ID(rawCategory)
	return p, removedAt.Valid, nil
}
