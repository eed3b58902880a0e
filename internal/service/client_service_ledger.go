package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finkeeper/go-ledger-sync/internal/crypto"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

type clientLedgerService struct {
	local    store.LocalStore
	keychain crypto.Keychain

	// gate is shared with the sync service. Mutations hold it shared; a
	// sync round holds it exclusively from the diff base read to the
	// commit, so every local write lands either before the snapshot or
	// after the commit and is never reverted by Apply.
	gate *sync.RWMutex

	mu  sync.RWMutex
	key []byte
}

func NewClientLedgerService(local store.LocalStore, keychain crypto.Keychain, gate *sync.RWMutex) ClientLedgerService {
	if gate == nil {
		gate = new(sync.RWMutex)
	}
	return &clientLedgerService{local: local, keychain: keychain, gate: gate}
}

func (s *clientLedgerService) SetEncryptionKey(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

func (s *clientLedgerService) encryptionKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.key) == 0 {
		return nil, ErrNoEncryptionKey
	}
	return s.key, nil
}

func (s *clientLedgerService) AddAccount(ctx context.Context, name string, balance decimal.Decimal) (models.Account, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return models.Account{}, err
	}
	if name == "" {
		return models.Account{}, fmt.Errorf("%w: empty account name", ErrInvalidDataProvided)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	id, err := s.local.NextLocalID(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("allocate account id: %w", err)
	}

	enc, err := s.encryptAccount(key, models.Account{ID: id, Name: name, Balance: balance})
	if err != nil {
		return models.Account{}, err
	}
	if err = s.local.AddAccount(ctx, enc); err != nil {
		return models.Account{}, fmt.Errorf("add account: %w", err)
	}

	return models.Account{ID: id, Name: name, Balance: balance}, nil
}

func (s *clientLedgerService) UpdateAccount(ctx context.Context, account models.Account) error {
	key, err := s.encryptionKey()
	if err != nil {
		return err
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	// Reject updates to unknown accounts before encrypting anything.
	if _, err = s.local.Account(ctx, account.ID); err != nil {
		return fmt.Errorf("update account %d: %w", account.ID, err)
	}

	enc, err := s.encryptAccount(key, account)
	if err != nil {
		return err
	}
	if err = s.local.UpdateAccount(ctx, enc); err != nil {
		return fmt.Errorf("update account %d: %w", account.ID, err)
	}

	return nil
}

func (s *clientLedgerService) RemoveAccount(ctx context.Context, id models.ID, force bool) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.local.RemoveAccount(ctx, id, force); err != nil {
		return fmt.Errorf("remove account %d: %w", id, err)
	}
	return nil
}

func (s *clientLedgerService) Accounts(ctx context.Context) ([]models.Account, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return nil, err
	}

	rows, err := s.local.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		account, err := s.decryptAccount(key, row)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}

	return out, nil
}

func (s *clientLedgerService) AddCategory(ctx context.Context, name string, categoryType models.CategoryType) (models.Category, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return models.Category{}, err
	}
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: empty category name", ErrInvalidDataProvided)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	id, err := s.local.NextLocalID(ctx)
	if err != nil {
		return models.Category{}, fmt.Errorf("allocate category id: %w", err)
	}

	encName, err := s.keychain.EncryptString(key, name)
	if err != nil {
		return models.Category{}, fmt.Errorf("encrypt category name: %w", err)
	}

	enc := models.EncryptedCategory{ID: id, Name: encName, Type: categoryType, ChangedAt: time.Now().UTC()}
	if err = s.local.AddCategory(ctx, enc); err != nil {
		return models.Category{}, fmt.Errorf("add category: %w", err)
	}

	return models.Category{ID: id, Name: name, Type: categoryType}, nil
}

func (s *clientLedgerService) RemoveCategory(ctx context.Context, id models.ID, force bool) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.local.RemoveCategory(ctx, id, force); err != nil {
		return fmt.Errorf("remove category %d: %w", id, err)
	}
	return nil
}

func (s *clientLedgerService) Categories(ctx context.Context) ([]models.Category, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return nil, err
	}

	rows, err := s.local.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	out := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		name, err := s.keychain.DecryptString(key, row.Name)
		if err != nil {
			return nil, fmt.Errorf("decrypt category %d name: %w", row.ID, err)
		}
		out = append(out, models.Category{ID: row.ID, Name: name, Type: row.Type})
	}

	return out, nil
}

func (s *clientLedgerService) AddTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	return s.addTransaction(ctx, transaction)
}

// addTransaction is AddTransaction without the gate; AddTransfer calls it
// twice under a single shared hold so a sync round cannot split the legs.
func (s *clientLedgerService) addTransaction(ctx context.Context, transaction models.Transaction) (models.Transaction, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return models.Transaction{}, err
	}

	// Both referenced parents must be live locally; dangling references
	// never enter the store.
	if _, err = s.local.Account(ctx, transaction.AccountID); err != nil {
		return models.Transaction{}, fmt.Errorf("transaction account %d: %w", transaction.AccountID, err)
	}
	if err = s.categoryExists(ctx, transaction.CategoryID); err != nil {
		return models.Transaction{}, err
	}

	id, err := s.local.NextLocalID(ctx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("allocate transaction id: %w", err)
	}
	transaction.ID = id
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now().UTC()
	}

	enc, err := s.encryptTransaction(key, transaction)
	if err != nil {
		return models.Transaction{}, err
	}
	if err = s.local.AddTransaction(ctx, enc); err != nil {
		return models.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	return transaction, nil
}

func (s *clientLedgerService) RemoveTransaction(ctx context.Context, id models.ID) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.local.RemoveTransaction(ctx, id); err != nil {
		return fmt.Errorf("remove transaction %d: %w", id, err)
	}
	return nil
}

func (s *clientLedgerService) Transactions(ctx context.Context) ([]models.Transaction, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return nil, err
	}

	rows, err := s.local.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		transaction, err := s.decryptTransaction(key, row)
		if err != nil {
			return nil, err
		}
		out = append(out, transaction)
	}

	return out, nil
}

func (s *clientLedgerService) AddPlan(ctx context.Context, plan models.Plan) (models.Plan, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return models.Plan{}, err
	}
	if plan.Name == "" {
		return models.Plan{}, fmt.Errorf("%w: empty plan name", ErrInvalidDataProvided)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	if err = s.categoryExists(ctx, plan.CategoryID); err != nil {
		return models.Plan{}, err
	}

	id, err := s.local.NextLocalID(ctx)
	if err != nil {
		return models.Plan{}, fmt.Errorf("allocate plan id: %w", err)
	}
	plan.ID = id

	enc, err := s.encryptPlan(key, plan)
	if err != nil {
		return models.Plan{}, err
	}
	if err = s.local.AddPlan(ctx, enc); err != nil {
		return models.Plan{}, fmt.Errorf("add plan: %w", err)
	}

	return plan, nil
}

func (s *clientLedgerService) RemovePlan(ctx context.Context, id models.ID) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.local.RemovePlan(ctx, id); err != nil {
		return fmt.Errorf("remove plan %d: %w", id, err)
	}
	return nil
}

func (s *clientLedgerService) Plans(ctx context.Context) ([]models.Plan, error) {
	key, err := s.encryptionKey()
	if err != nil {
		return nil, err
	}

	rows, err := s.local.Plans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	out := make([]models.Plan, 0, len(rows))
	for _, row := range rows {
		plan, err := s.decryptPlan(key, row)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}

	return out, nil
}

func (s *clientLedgerService) AddTransfer(ctx context.Context, from, to models.ID, amount decimal.Decimal, timestamp time.Time) (models.Transaction, models.Transaction, error) {
	if from == to {
		return models.Transaction{}, models.Transaction{}, ErrSameAccount
	}
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	s.gate.RLock()
	defer s.gate.RUnlock()

	outcome, err := s.addTransaction(ctx, models.Transaction{
		Timestamp:   timestamp,
		Description: models.TransferOutcomeDescription,
		AccountID:   from,
		CategoryID:  models.TransferOutcomeCategoryID,
		Amount:      amount.Neg(),
	})
	if err != nil {
		return models.Transaction{}, models.Transaction{}, fmt.Errorf("transfer outcome leg: %w", err)
	}

	income, err := s.addTransaction(ctx, models.Transaction{
		Timestamp:   timestamp,
		Description: models.TransferIncomeDescription,
		AccountID:   to,
		CategoryID:  models.TransferIncomeCategoryID,
		Amount:      amount,
	})
	if err != nil {
		// Do not leave a half-recorded transfer behind.
		_ = s.local.RemoveTransaction(ctx, outcome.ID)
		return models.Transaction{}, models.Transaction{}, fmt.Errorf("transfer income leg: %w", err)
	}

	return outcome, income, nil
}

func (s *clientLedgerService) CleanRemoved(ctx context.Context) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if err := s.local.CleanRemoved(ctx); err != nil {
		return fmt.Errorf("clean removed: %w", err)
	}
	return nil
}

func (s *clientLedgerService) categoryExists(ctx context.Context, id models.ID) error {
	categories, err := s.local.Categories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", id, store.ErrNotFound)
}

// ── field encryption helpers ─────────────────────────────────────────────

func (s *clientLedgerService) encryptAccount(key []byte, account models.Account) (models.EncryptedAccount, error) {
	name, err := s.keychain.EncryptString(key, account.Name)
	if err != nil {
		return models.EncryptedAccount{}, fmt.Errorf("encrypt account name: %w", err)
	}
	balance, err := s.keychain.EncryptDecimal(key, account.Balance)
	if err != nil {
		return models.EncryptedAccount{}, fmt.Errorf("encrypt account balance: %w", err)
	}

	return models.EncryptedAccount{ID: account.ID, Name: name, Balance: balance, ChangedAt: time.Now().UTC()}, nil
}

func (s *clientLedgerService) decryptAccount(key []byte, row models.EncryptedAccount) (models.Account, error) {
	name, err := s.keychain.DecryptString(key, row.Name)
	if err != nil {
		return models.Account{}, fmt.Errorf("decrypt account %d name: %w", row.ID, err)
	}
	balance, err := s.keychain.DecryptDecimal(key, row.Balance)
	if err != nil {
		return models.Account{}, fmt.Errorf("decrypt account %d balance: %w", row.ID, err)
	}

	return models.Account{ID: row.ID, Name: name, Balance: balance}, nil
}

func (s *clientLedgerService) encryptTransaction(key []byte, transaction models.Transaction) (models.EncryptedTransaction, error) {
	description, err := s.keychain.EncryptString(key, transaction.Description)
	if err != nil {
		return models.EncryptedTransaction{}, fmt.Errorf("encrypt transaction description: %w", err)
	}
	amount, err := s.keychain.EncryptDecimal(key, transaction.Amount)
	if err != nil {
		return models.EncryptedTransaction{}, fmt.Errorf("encrypt transaction amount: %w", err)
	}

	return models.EncryptedTransaction{
		ID:          transaction.ID,
		Timestamp:   transaction.Timestamp,
		Description: description,
		AccountID:   transaction.AccountID,
		CategoryID:  transaction.CategoryID,
		Amount:      amount,
		ChangedAt:   time.Now().UTC(),
	}, nil
}

func (s *clientLedgerService) decryptTransaction(key []byte, row models.EncryptedTransaction) (models.Transaction, error) {
	description, err := s.keychain.DecryptString(key, row.Description)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("decrypt transaction %d description: %w", row.ID, err)
	}
	amount, err := s.keychain.DecryptDecimal(key, row.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("decrypt transaction %d amount: %w", row.ID, err)
	}

	return models.Transaction{
		ID:          row.ID,
		Timestamp:   row.Timestamp,
		Description: description,
		AccountID:   row.AccountID,
		CategoryID:  row.CategoryID,
		Amount:      amount,
	}, nil
}

func (s *clientLedgerService) encryptPlan(key []byte, plan models.Plan) (models.EncryptedPlan, error) {
	name, err := s.keychain.EncryptString(key, plan.Name)
	if err != nil {
		return models.EncryptedPlan{}, fmt.Errorf("encrypt plan name: %w", err)
	}
	limit, err := s.keychain.EncryptDecimal(key, plan.MonthlyLimit)
	if err != nil {
		return models.EncryptedPlan{}, fmt.Errorf("encrypt plan limit: %w", err)
	}

	return models.EncryptedPlan{
		ID:           plan.ID,
		Name:         name,
		CategoryID:   plan.CategoryID,
		MonthlyLimit: limit,
		ChangedAt:    time.Now().UTC(),
	}, nil
}

func (s *clientLedgerService) decryptPlan(key []byte, row models.EncryptedPlan) (models.Plan, error) {
	name, err := s.keychain.DecryptString(key, row.Name)
	if err != nil {
		return models.Plan{}, fmt.Errorf("decrypt plan %d name: %w", row.ID, err)
	}
	limit, err := s.keychain.DecryptDecimal(key, row.MonthlyLimit)
	if err != nil {
		return models.Plan{}, fmt.Errorf("decrypt plan %d limit: %w", row.ID, err)
	}

	return models.Plan{ID: row.ID, Name: name, CategoryID: row.CategoryID, MonthlyLimit: limit}, nil
}
