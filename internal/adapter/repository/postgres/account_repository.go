package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	display_name,
	balance,
	home_currency
) VALUES ($1, $2, $3)
RETURNING id, version, created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.DisplayName,
		account.Balance,
		domain.NormalizeCurrency(account.HomeCurrency),
	).Scan(&account.ID, &account.Version, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) Get(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, display_name, balance, home_currency, version, created_at, updated_at
FROM accounts
WHERE id = $1`

	var account domain.Account
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.HomeCurrency,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	const query = `
SELECT id, display_name, balance, home_currency, version, created_at, updated_at
FROM accounts
ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.DisplayName,
			&account.Balance,
			&account.HomeCurrency,
			&account.Version,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) MutateBalances(ctx context.Context, debit domain.BalanceChange, credit domain.BalanceChange) (err error) {
	logger.Info("account repository mutate balances", logger.Fields{
		"debitAccountId":  debit.AccountID,
		"creditAccountId": credit.AccountID,
		"debitAmount":     debit.Amount,
		"creditAmount":    credit.Amount,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("account repository begin tx failed", err, nil)
		return fmt.Errorf("begin balance transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock both rows in id order so opposing transfers over the same
	// pair cannot deadlock each other.
	const lockQuery = `
SELECT id FROM accounts
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`
	locked, err := tx.QueryContext(ctx, lockQuery, pq.Array([]string{debit.AccountID, credit.AccountID}))
	if err != nil {
		return mapBalanceError(err, "lock accounts")
	}
	lockedCount := 0
	for locked.Next() {
		var id string
		if err = locked.Scan(&id); err != nil {
			locked.Close()
			return fmt.Errorf("scan locked account: %w", err)
		}
		lockedCount++
	}
	if err = locked.Err(); err != nil {
		locked.Close()
		return mapBalanceError(err, "lock accounts")
	}
	locked.Close()
	if lockedCount != 2 {
		err = domain.ErrRecordNotFound
		return err
	}

	const debitQuery = `
UPDATE accounts
SET balance = balance - $2::numeric,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2::numeric`
	debitResult, err := tx.ExecContext(ctx, debitQuery, debit.AccountID, debit.Amount)
	if err != nil {
		return mapBalanceError(err, "debit account")
	}
	debited, err := debitResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit account rows affected: %w", err)
	}
	if debited == 0 {
		err = domain.ErrInsufficientBalance
		return err
	}

	const creditQuery = `
UPDATE accounts
SET balance = balance + $2::numeric,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1`
	if _, err = tx.ExecContext(ctx, creditQuery, credit.AccountID, credit.Amount); err != nil {
		return mapBalanceError(err, "credit account")
	}

	if err = tx.Commit(); err != nil {
		logger.Error("account repository commit tx failed", err, nil)
		return mapBalanceError(err, "commit balance transaction")
	}

	return nil
}

func (r *AccountRepository) Rename(ctx context.Context, id string, newName string) (domain.Account, error) {
	const query = `
UPDATE accounts
SET display_name = $2,
    version = version + 1,
    updated_at = NOW()
WHERE id = $1
RETURNING id, display_name, balance, home_currency, version, created_at, updated_at`

	var account domain.Account
	if err := r.db.QueryRowContext(ctx, query, id, newName).Scan(
		&account.ID,
		&account.DisplayName,
		&account.Balance,
		&account.HomeCurrency,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("rename account: %w", err)
	}

	return account, nil
}

// Serialization and deadlock-detection failures are retryable by the
// caller and map to the conflict error; everything else keeps its cause
// attached.
func mapBalanceError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return domain.ErrConflict
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
