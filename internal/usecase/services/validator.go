package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/usecase/service_interfaces"
)

// validatedTransfer is a snapshot of everything the engine needs to
// commit: both accounts as read at validation time and the parsed
// amount. Balances may move before commit; the store re-verifies funds
// under its lock.
type validatedTransfer struct {
	From           domain.Account
	To             domain.Account
	Amount         decimal.Decimal
	SourceCurrency string
}

// TransferValidator is a read-only gate over current store state. It
// never mutates anything; a rejected request leaves the store
// bit-identical.
type TransferValidator struct {
	accountRepo repo_interfaces.AccountRepository
	rateService service_interfaces.RateService
}

func NewTransferValidator(accountRepo repo_interfaces.AccountRepository, rateService service_interfaces.RateService) *TransferValidator {
	return &TransferValidator{accountRepo: accountRepo, rateService: rateService}
}

// Validate runs the policy checks in order and stops at the first
// failure: account existence and distinctness, amount well-formedness,
// positivity, then sufficient funds after conversion into the source
// account's home currency.
func (v *TransferValidator) Validate(ctx context.Context, req models.TransferRequest) (validatedTransfer, error) {
	fromID := strings.TrimSpace(req.FromAccountID)
	toID := strings.TrimSpace(req.ToAccountID)

	if fromID == toID {
		return validatedTransfer{}, fmt.Errorf("fromAccountId and toAccountId must be distinct: %w", domain.ErrUnknownAccount)
	}

	from, err := v.accountRepo.Get(ctx, fromID)
	if err != nil {
		return validatedTransfer{}, accountLookupError("fromAccountId", err)
	}
	to, err := v.accountRepo.Get(ctx, toID)
	if err != nil {
		return validatedTransfer{}, accountLookupError("toAccountId", err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return validatedTransfer{}, fmt.Errorf("amount %q: %w", req.Amount, domain.ErrMalformedAmount)
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return validatedTransfer{}, domain.ErrNonPositiveAmount
	}

	sourceCurrency := domain.NormalizeCurrency(req.SourceCurrency)
	debit, _, err := v.rateService.Convert(ctx, amount, sourceCurrency, from.HomeCurrency)
	if err != nil {
		return validatedTransfer{}, err
	}
	if from.Balance.LessThan(debit) {
		return validatedTransfer{}, domain.ErrInsufficientBalance
	}

	return validatedTransfer{
		From:           from,
		To:             to,
		Amount:         amount,
		SourceCurrency: sourceCurrency,
	}, nil
}

func accountLookupError(field string, err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", field, domain.ErrUnknownAccount)
	}
	return fmt.Errorf("%s: %w", field, err)
}
