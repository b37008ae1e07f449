package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/piggybank/ledger-engine/internal/domain"
)

type accountRecord struct {
	mu      sync.Mutex
	account domain.Account
}

// AccountRepository keeps account records in process memory. Balance
// mutations lock both affected records in lexicographic ID order, so two
// transfers over the same pair in opposite directions can never
// deadlock, and re-verify funds under the locks before applying either
// leg.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*accountRecord
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*accountRecord)}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Version = 1
	account.HomeCurrency = domain.NormalizeCurrency(account.HomeCurrency)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return domain.Account{}, domain.ErrConflict
	}
	r.accounts[account.ID] = &accountRecord{account: account}

	return account, nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (domain.Account, error) {
	record, err := r.record(id)
	if err != nil {
		return domain.Account{}, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return record.account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	records := make([]*accountRecord, 0, len(r.accounts))
	for _, record := range r.accounts {
		records = append(records, record)
	}
	r.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(records))
	for _, record := range records {
		record.mu.Lock()
		accounts = append(accounts, record.account)
		record.mu.Unlock()
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ID < accounts[j].ID
	})
	return accounts, nil
}

func (r *AccountRepository) MutateBalances(ctx context.Context, debit domain.BalanceChange, credit domain.BalanceChange) error {
	if debit.AccountID == credit.AccountID {
		return domain.ErrConflict
	}

	debitRecord, err := r.record(debit.AccountID)
	if err != nil {
		return err
	}
	creditRecord, err := r.record(credit.AccountID)
	if err != nil {
		return err
	}

	first, second := debitRecord, creditRecord
	if credit.AccountID < debit.AccountID {
		first, second = creditRecord, debitRecord
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	// The funds check ran on a snapshot outside these locks; verify it
	// again now that the balance cannot move under us.
	if debitRecord.account.Balance.LessThan(debit.Amount) {
		return domain.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	debitRecord.account.Balance = debitRecord.account.Balance.Sub(debit.Amount)
	debitRecord.account.Version++
	debitRecord.account.UpdatedAt = now
	creditRecord.account.Balance = creditRecord.account.Balance.Add(credit.Amount)
	creditRecord.account.Version++
	creditRecord.account.UpdatedAt = now

	return nil
}

func (r *AccountRepository) Rename(ctx context.Context, id string, newName string) (domain.Account, error) {
	record, err := r.record(id)
	if err != nil {
		return domain.Account{}, err
	}

	record.mu.Lock()
	defer record.mu.Unlock()

	record.account.DisplayName = newName
	record.account.Version++
	record.account.UpdatedAt = time.Now().UTC()
	return record.account, nil
}

func (r *AccountRepository) record(id string) (*accountRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return record, nil
}
