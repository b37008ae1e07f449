package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type RenameAccountRequest struct {
	AccountID string `json:"accountId"`
	NewName   string `json:"newName"`
}

// The ledger imposes no policy on the name itself; non-emptiness is the
// form's concern.
func (r RenameAccountRequest) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return errors.New("accountId is required")
	}
	return nil
}

type RenameAccountResponse struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

type AccountResponse struct {
	ID           string           `json:"id"`
	DisplayName  string           `json:"displayName"`
	Balance      *decimal.Decimal `json:"balance"`
	HomeCurrency string           `json:"homeCurrency"`
	UpdatedAt    string           `json:"updatedAt"`
}
