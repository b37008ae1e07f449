package repo_interfaces

import (
	"context"

	"github.com/piggybank/ledger-engine/internal/domain"
)

// AccountRepository is the single source of truth for account records.
// MutateBalances is the only path that may change a balance, and applies
// both legs as one atomic unit or not at all.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	Get(ctx context.Context, id string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	MutateBalances(ctx context.Context, debit domain.BalanceChange, credit domain.BalanceChange) error
	Rename(ctx context.Context, id string, newName string) (domain.Account, error)
}
