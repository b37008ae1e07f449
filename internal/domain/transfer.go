package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCommitted TransferStatus = "COMMITTED"
	TransferStatusRejected  TransferStatus = "REJECTED"
)

// Transfer is a request to move value between two accounts. Amount is
// denominated in SourceCurrency; DebitAmount and CreditAmount are the
// converted legs in the home currencies of the source and destination
// accounts. A transfer that reaches COMMITTED or REJECTED never changes
// again.
type Transfer struct {
	ID             string
	FromAccountID  string
	ToAccountID    string
	Amount         decimal.Decimal
	SourceCurrency string
	Description    string
	DebitAmount    decimal.Decimal
	CreditAmount   decimal.Decimal
	RateUsed       decimal.Decimal
	Status         TransferStatus
	RejectReason   RejectReason
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}
