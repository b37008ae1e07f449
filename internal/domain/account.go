package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID           string
	DisplayName  string
	Balance      decimal.Decimal
	HomeCurrency string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BalanceChange is one leg of an atomic balance mutation. Amount is
// always positive and denominated in the account's home currency.
type BalanceChange struct {
	AccountID string
	Amount    decimal.Decimal
}
