package service_interfaces

import (
	"context"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/commons"
)

type LedgerService interface {
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	RenameAccount(ctx context.Context, req models.RenameAccountRequest) (commons.Response[models.RenameAccountResponse], error)
	GetAccount(ctx context.Context, accountID string) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error)
	ListTransfers(ctx context.Context, accountID string, limit int) (commons.Response[[]models.TransferResponse], error)
}
