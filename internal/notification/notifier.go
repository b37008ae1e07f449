package notification

import (
	"context"

	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
)

type Operation string

const (
	OperationTransfer Operation = "transfer"
	OperationRename   Operation = "rename"
)

// Outcome is what the UI layer renders as an alert banner. The ledger
// emits exactly one per transfer or rename invocation.
type Outcome struct {
	Operation  Operation           `json:"operation"`
	Success    bool                `json:"success"`
	Reason     domain.RejectReason `json:"reason,omitempty"`
	TransferID string              `json:"transferId,omitempty"`
	AccountID  string              `json:"accountId,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, outcome Outcome)
}

// LogNotifier is the default sink when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, outcome Outcome) {
	if outcome.Success {
		logger.Info("notification outcome", logger.Fields{
			"operation":  outcome.Operation,
			"success":    true,
			"transferId": outcome.TransferID,
			"accountId":  outcome.AccountID,
		})
		return
	}

	logger.Info("notification outcome", logger.Fields{
		"operation":  outcome.Operation,
		"success":    false,
		"reason":     outcome.Reason,
		"transferId": outcome.TransferID,
		"accountId":  outcome.AccountID,
	})
}
