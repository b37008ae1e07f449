package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type GetRateRequest struct {
	FromCurrency string `json:"fromCurrency"`
	ToCurrency   string `json:"toCurrency"`
}

func (r GetRateRequest) Validate() error {
	var errs []string

	if len(strings.TrimSpace(r.FromCurrency)) != 3 {
		errs = append(errs, "fromCurrency must be 3 characters")
	}
	if len(strings.TrimSpace(r.ToCurrency)) != 3 {
		errs = append(errs, "toCurrency must be 3 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type RateResponse struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	RateDate     string          `json:"rateDate"`
}
