package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrUnknownAccount = errors.New("Unknown account")
var ErrMalformedAmount = errors.New("Malformed amount")
var ErrNonPositiveAmount = errors.New("Amount must be greater than zero")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrUnknownCurrency = errors.New("Unknown currency")
var ErrConflict = errors.New("Concurrent modification conflict")
var ErrStorageUnavailable = errors.New("Storage unavailable")

type RejectReason string

const (
	RejectUnknownAccount     RejectReason = "UNKNOWN_ACCOUNT"
	RejectMalformedAmount    RejectReason = "MALFORMED_AMOUNT"
	RejectNonPositiveAmount  RejectReason = "NON_POSITIVE_AMOUNT"
	RejectInsufficientFunds  RejectReason = "INSUFFICIENT_FUNDS"
	RejectUnknownCurrency    RejectReason = "UNKNOWN_CURRENCY"
	RejectConflict           RejectReason = "CONFLICT"
	RejectStorageUnavailable RejectReason = "STORAGE_UNAVAILABLE"
)

// ReasonForError maps a ledger error to the reject reason reported to
// callers. Unmapped errors surface as a storage failure so they are
// never silently swallowed.
func ReasonForError(err error) RejectReason {
	switch {
	case errors.Is(err, ErrUnknownAccount), errors.Is(err, ErrRecordNotFound):
		return RejectUnknownAccount
	case errors.Is(err, ErrMalformedAmount):
		return RejectMalformedAmount
	case errors.Is(err, ErrNonPositiveAmount):
		return RejectNonPositiveAmount
	case errors.Is(err, ErrInsufficientBalance):
		return RejectInsufficientFunds
	case errors.Is(err, ErrUnknownCurrency):
		return RejectUnknownCurrency
	case errors.Is(err, ErrConflict):
		return RejectConflict
	default:
		return RejectStorageUnavailable
	}
}
