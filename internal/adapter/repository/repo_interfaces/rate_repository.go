package repo_interfaces

import (
	"context"

	"github.com/piggybank/ledger-engine/internal/domain"
)

type RateRepository interface {
	GetRates(ctx context.Context) ([]domain.Rate, error)
	GetRate(ctx context.Context, fromCurrency string, toCurrency string) (domain.Rate, error)
}
