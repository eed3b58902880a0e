// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package store

// SQLite schema and statements of the local client store. The four entity
// tables mirror the canonical-state schema: durable-identifier primary
// keys, ciphertext BLOB columns for every sensitive field, foreign keys
// from transactions to accounts and categories and from plans to
// categories, and a removal timestamp implementing the soft-delete
// (tombstone) semantics. Rows with a negative primary key are local-only
// items awaiting their first sync round-trip.
const createLocalSchema = `
	CREATE TABLE IF NOT EXISTS accounts (
		account_id  INTEGER  PRIMARY KEY,
		name        BLOB     NOT NULL,
		balance     BLOB     NOT NULL,
		changed_at  DATETIME NOT NULL,
		removed_at  DATETIME NULL
	);

	CREATE INDEX IF NOT EXISTS accounts_by_removed_at ON accounts (removed_at);

	CREATE TABLE IF NOT EXISTS categories (
		category_id INTEGER  PRIMARY KEY,
		name        BLOB     NOT NULL,
		type        INTEGER  NOT NULL,
		changed_at  DATETIME NOT NULL,
		removed_at  DATETIME NULL
	);

	CREATE INDEX IF NOT EXISTS categories_by_type ON categories (type);
	CREATE INDEX IF NOT EXISTS categories_by_removed_at ON categories (removed_at);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id INTEGER  PRIMARY KEY,
		timestamp      DATETIME NOT NULL,
		description    BLOB     NOT NULL,
		account_id     INTEGER  NOT NULL REFERENCES accounts (account_id),
		category_id    INTEGER  NOT NULL REFERENCES categories (category_id),
		amount         BLOB     NOT NULL,
		changed_at     DATETIME NOT NULL,
		removed_at     DATETIME NULL
	);

	CREATE INDEX IF NOT EXISTS transactions_by_timestamp ON transactions (timestamp);
	CREATE INDEX IF NOT EXISTS transactions_by_removed_at ON transactions (removed_at);

	CREATE TABLE IF NOT EXISTS plans (
		plan_id       INTEGER  PRIMARY KEY,
		name          BLOB     NOT NULL,
		category_id   INTEGER  NOT NULL REFERENCES categories (category_id),
		monthly_limit BLOB     NOT NULL,
		changed_at    DATETIME NOT NULL,
		removed_at    DATETIME NULL
	);

	CREATE INDEX IF NOT EXISTS plans_by_category ON plans (category_id);
	CREATE INDEX IF NOT EXISTS plans_by_removed_at ON plans (removed_at);

	CREATE TABLE IF NOT EXISTS sync_state (
		id            INTEGER PRIMARY KEY CHECK (id = 1),
		ledger_id     TEXT,
		client_id     TEXT,
		kdf_salt      BLOB,
		round         INTEGER NOT NULL DEFAULT 0,
		synced_at     DATETIME,
		next_local_id INTEGER NOT NULL DEFAULT -1
	);

	CREATE TABLE IF NOT EXISTS sync_snapshot (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		payload BLOB NOT NULL
	);

	INSERT OR IGNORE INTO sync_state (id) VALUES (1);`

const (
	initLedgerMeta = `
		UPDATE sync_state SET ledger_id = $1, client_id = $2, kdf_salt = $3 WHERE id = 1;`

	getLedgerMeta = `
		SELECT ledger_id, client_id, kdf_salt FROM sync_state WHERE id = 1;`

	getSyncMarker = `
		SELECT round, synced_at FROM sync_state WHERE id = 1;`

	setSyncMarker = `
		UPDATE sync_state SET round = $1, synced_at = $2 WHERE id = 1;`

	getNextLocalID = `
		SELECT next_local_id FROM sync_state WHERE id = 1;`

	decrementNextLocalID = `
		UPDATE sync_state SET next_local_id = next_local_id - 1 WHERE id = 1;`

	getSnapshot = `
		SELECT payload FROM sync_snapshot WHERE id = 1;`

	saveSnapshot = `
		INSERT OR REPLACE INTO sync_snapshot (id, payload) VALUES (1, $1);`
)

const (
	upsertAccount = `
		INSERT OR REPLACE INTO accounts (account_id, name, balance, changed_at, removed_at)
		VALUES ($1, $2, $3, $4, NULL);`

	tombstoneAccount = `
		UPDATE accounts SET removed_at = $1 WHERE account_id = $2 AND removed_at IS NULL;`

	selectAccount = `
		SELECT account_id, name, balance, changed_at FROM accounts
		WHERE account_id = $1 AND removed_at IS NULL;`

	selectAccounts = `
		SELECT account_id, name, balance, changed_at, removed_at FROM accounts;`

	remapAccountID = `
		UPDATE accounts SET account_id = $1 WHERE account_id = $2;`

	remapTransactionAccountRef = `
		UPDATE transactions SET account_id = $1 WHERE account_id = $2;`

	countAccountDependents = `
		SELECT COUNT(*) FROM transactions
		WHERE account_id = $1 AND removed_at IS NULL;`
)

const (
	upsertCategory = `
		INSERT OR REPLACE INTO categories (category_id, name, type, changed_at, removed_at)
		VALUES ($1, $2, $3, $4, NULL);`

	tombstoneCategory = `
		UPDATE categories SET removed_at = $1 WHERE category_id = $2 AND removed_at IS NULL;`

	selectCategories = `
		SELECT category_id, name, type, changed_at, removed_at FROM categories;`

	remapCategoryID = `
		UPDATE categories SET category_id = $1 WHERE category_id = $2;`

	remapTransactionCategoryRef = `
		UPDATE transactions SET category_id = $1 WHERE category_id = $2;`

	remapPlanCategoryRef = `
		UPDATE plans SET category_id = $1 WHERE category_id = $2;`

	countCategoryDependents = `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE category_id = $1 AND removed_at IS NULL) +
			(SELECT COUNT(*) FROM plans WHERE category_id = $1 AND removed_at IS NULL);`
)

const (
	upsertTransaction = `
		INSERT OR REPLACE INTO transactions
			(transaction_id, timestamp, description, account_id, category_id, amount, changed_at, removed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL);`

	tombstoneTransaction = `
		UPDATE transactions SET removed_at = $1 WHERE transaction_id = $2 AND removed_at IS NULL;`

	selectTransactions = `
		SELECT transaction_id, timestamp, description, account_id, category_id, amount, changed_at, removed_at
		FROM transactions ORDER BY timestamp DESC;`

	remapTransactionID = `
		UPDATE transactions SET transaction_id = $1 WHERE transaction_id = $2;`
)

const (
	upsertPlan = `
		INSERT OR REPLACE INTO plans (plan_id, name, category_id, monthly_limit, changed_at, removed_at)
		VALUES ($1, $2, $3, $4, $5, NULL);`

	tombstonePlan = `
		UPDATE plans SET removed_at = $1 WHERE plan_id = $2 AND removed_at IS NULL;`

	selectPlans = `
		SELECT plan_id, name, category_id, monthly_limit, changed_at, removed_at FROM plans;`

	remapPlanID = `
		UPDATE plans SET plan_id = $1 WHERE plan_id = $2;`
)
