package repo_interfaces

import (
	"context"

	"github.com/piggybank/ledger-engine/internal/domain"
)

type TransferRepository interface {
	Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error)
	UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus, reason domain.RejectReason) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transfer, error)
}
