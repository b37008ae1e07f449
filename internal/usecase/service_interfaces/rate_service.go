package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/commons"
)

type RateService interface {
	GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error)
	GetRate(ctx context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error)
	// Convert returns the unrounded converted amount and the rate used.
	// The identity conversion is exact: convert(x, C, C) == x.
	Convert(ctx context.Context, amount decimal.Decimal, fromCcy string, toCcy string) (decimal.Decimal, decimal.Decimal, error)
}
