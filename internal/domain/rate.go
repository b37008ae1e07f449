package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Rate struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	RateDate     time.Time
	CreatedAt    time.Time
}
