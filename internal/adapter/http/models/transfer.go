package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// TransferRequest carries the amount as the raw string the form
// submitted; parsing it is part of transfer validation so a malformed
// value rejects with the right reason instead of failing JSON decode.
type TransferRequest struct {
	FromAccountID  string `json:"fromAccountId"`
	ToAccountID    string `json:"toAccountId"`
	Amount         string `json:"amount"`
	SourceCurrency string `json:"sourceCurrency"`
	Description    string `json:"description"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FromAccountID) == "" {
		errs = append(errs, "fromAccountId is required")
	}
	if strings.TrimSpace(r.ToAccountID) == "" {
		errs = append(errs, "toAccountId is required")
	}
	if strings.TrimSpace(r.Amount) == "" {
		errs = append(errs, "amount is required")
	}

	sourceCurrency := strings.ToUpper(strings.TrimSpace(r.SourceCurrency))
	if len(sourceCurrency) != 3 {
		errs = append(errs, "sourceCurrency must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransferResponse struct {
	TransferID     string           `json:"transferId"`
	FromAccountID  string           `json:"fromAccountId"`
	ToAccountID    string           `json:"toAccountId"`
	Amount         *decimal.Decimal `json:"amount"`
	SourceCurrency string           `json:"sourceCurrency"`
	Description    string           `json:"description"`
	DebitAmount    *decimal.Decimal `json:"debitAmount"`
	CreditAmount   *decimal.Decimal `json:"creditAmount"`
	RateUsed       *decimal.Decimal `json:"rateUsed"`
	Status         string           `json:"status"`
	Reason         string           `json:"reason,omitempty"`
	CreatedAt      string           `json:"createdAt,omitempty"`
}
