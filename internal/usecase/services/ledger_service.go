package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/piggybank/ledger-engine/internal/commons"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
	"github.com/piggybank/ledger-engine/internal/notification"
	"github.com/piggybank/ledger-engine/internal/usecase/service_interfaces"
)

const defaultHistoryLimit = 10

// Verify that LedgerService implements the service_interfaces.LedgerService interface
var _ service_interfaces.LedgerService = (*LedgerService)(nil)

// LedgerService orchestrates a transfer end to end: validate, convert
// both legs, apply the balance mutation atomically, record the transfer
// and notify the caller exactly once. It never retries a conflict; that
// choice belongs to the caller.
type LedgerService struct {
	accountRepo  repo_interfaces.AccountRepository
	transferRepo repo_interfaces.TransferRepository
	rateService  service_interfaces.RateService
	validator    *TransferValidator
	notifier     notification.Notifier
}

func NewLedgerService(
	accountRepo repo_interfaces.AccountRepository,
	transferRepo repo_interfaces.TransferRepository,
	rateService service_interfaces.RateService,
	validator *TransferValidator,
	notifier notification.Notifier,
) *LedgerService {
	return &LedgerService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		rateService:  rateService,
		validator:    validator,
		notifier:     notifier,
	}
}

func (s *LedgerService) Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("ledger service transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	outcome := notification.Outcome{Operation: notification.OperationTransfer}
	defer func() {
		s.notifier.Notify(ctx, outcome)
	}()

	if err := req.Validate(); err != nil {
		outcome.Reason = domain.RejectMalformedAmount
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), err
	}

	validated, err := s.validator.Validate(ctx, req)
	if err != nil {
		reason := domain.ReasonForError(err)
		outcome.Reason = reason
		s.recordRejected(ctx, req, reason)
		logger.Error("ledger service transfer rejected", err, logger.Fields{
			"fromAccountId": req.FromAccountID,
			"toAccountId":   req.ToAccountID,
			"reason":        reason,
		})
		return commons.ErrorResponse[models.TransferResponse](rejectionMessage(reason), err.Error()), err
	}

	// The two legs are converted independently; a cross-currency transfer
	// conserves the converter's arithmetic, not the nominal amount.
	debitAmount, _, err := s.convertLeg(ctx, validated.Amount, validated.SourceCurrency, validated.From.HomeCurrency)
	if err != nil {
		outcome.Reason = domain.ReasonForError(err)
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}
	creditAmount, rateUsed, err := s.convertLeg(ctx, validated.Amount, validated.SourceCurrency, validated.To.HomeCurrency)
	if err != nil {
		outcome.Reason = domain.ReasonForError(err)
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	transfer := domain.Transfer{
		FromAccountID:  validated.From.ID,
		ToAccountID:    validated.To.ID,
		Amount:         validated.Amount,
		SourceCurrency: validated.SourceCurrency,
		Description:    strings.TrimSpace(req.Description),
		DebitAmount:    debitAmount,
		CreditAmount:   creditAmount,
		RateUsed:       rateUsed,
		Status:         domain.TransferStatusPending,
	}

	created, err := s.transferRepo.Create(ctx, transfer)
	if err != nil {
		outcome.Reason = domain.RejectStorageUnavailable
		logger.Error("ledger service record transfer failed", err, nil)
		return commons.ErrorResponse[models.TransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	mutationErr := s.accountRepo.MutateBalances(
		ctx,
		domain.BalanceChange{AccountID: validated.From.ID, Amount: debitAmount},
		domain.BalanceChange{AccountID: validated.To.ID, Amount: creditAmount},
	)
	if mutationErr != nil {
		reason := domain.ReasonForError(mutationErr)
		outcome.Reason = reason
		outcome.TransferID = created.ID
		if updateErr := s.transferRepo.UpdateStatus(ctx, created.ID, domain.TransferStatusRejected, reason); updateErr != nil {
			logger.Error("ledger service mark transfer rejected failed", updateErr, logger.Fields{
				"transferId": created.ID,
			})
		}
		created.Status = domain.TransferStatusRejected
		created.RejectReason = reason
		logger.Error("ledger service transfer commit failed", mutationErr, logger.Fields{
			"transferId": created.ID,
			"reason":     reason,
		})
		return commons.ErrorResponse[models.TransferResponse](rejectionMessage(reason), mutationErr.Error()), mutationErr
	}

	if err := s.transferRepo.UpdateStatus(ctx, created.ID, domain.TransferStatusCommitted, ""); err != nil {
		logger.Error("ledger service mark transfer committed failed", err, logger.Fields{
			"transferId": created.ID,
		})
	}
	created.Status = domain.TransferStatusCommitted

	outcome.Success = true
	outcome.TransferID = created.ID

	logger.Info("ledger service transfer committed", logger.Fields{
		"transferId":    created.ID,
		"fromAccountId": created.FromAccountID,
		"toAccountId":   created.ToAccountID,
		"debitAmount":   debitAmount,
		"creditAmount":  creditAmount,
	})

	return commons.SuccessResponse("transfer committed", mapTransferToResponse(created)), nil
}

func (s *LedgerService) RenameAccount(ctx context.Context, req models.RenameAccountRequest) (commons.Response[models.RenameAccountResponse], error) {
	logger.Info("ledger service rename account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	outcome := notification.Outcome{Operation: notification.OperationRename}
	defer func() {
		s.notifier.Notify(ctx, outcome)
	}()

	if err := req.Validate(); err != nil {
		outcome.Reason = domain.RejectUnknownAccount
		return commons.ErrorResponse[models.RenameAccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.accountRepo.Rename(ctx, strings.TrimSpace(req.AccountID), req.NewName)
	if err != nil {
		outcome.Reason = domain.ReasonForError(err)
		outcome.AccountID = req.AccountID
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RenameAccountResponse]("Account not found"), err
		}
		logger.Error("ledger service rename account failed", err, logger.Fields{
			"accountId": req.AccountID,
		})
		return commons.ErrorResponse[models.RenameAccountResponse]("failed to rename account", "Unable to rename account right now"), err
	}

	outcome.Success = true
	outcome.AccountID = account.ID

	response := models.RenameAccountResponse{
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		Status:      "committed",
	}
	return commons.SuccessResponse("account renamed successfully", response), nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountID string) (commons.Response[models.AccountResponse], error) {
	account, err := s.accountRepo.Get(ctx, strings.TrimSpace(accountID))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("ledger service get account failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *LedgerService) ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		logger.Error("ledger service list accounts failed", err, nil)
		return commons.ErrorResponse[[]models.AccountResponse]("failed to list accounts", "Unable to fetch accounts right now"), err
	}

	resp := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, mapAccountToResponse(account))
	}
	return commons.SuccessResponse("accounts fetched successfully", resp), nil
}

func (s *LedgerService) ListTransfers(ctx context.Context, accountID string, limit int) (commons.Response[[]models.TransferResponse], error) {
	accountID = strings.TrimSpace(accountID)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	if _, err := s.accountRepo.Get(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[[]models.TransferResponse]("Account not found"), err
		}
		return commons.ErrorResponse[[]models.TransferResponse]("failed to list transfers", "Unable to fetch transfers right now"), err
	}

	transfers, err := s.transferRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		logger.Error("ledger service list transfers failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[[]models.TransferResponse]("failed to list transfers", "Unable to fetch transfers right now"), err
	}

	resp := make([]models.TransferResponse, 0, len(transfers))
	for _, transfer := range transfers {
		resp = append(resp, mapTransferToResponse(transfer))
	}
	return commons.SuccessResponse("transfers fetched successfully", resp), nil
}

// convertLeg converts the entered amount into an account's home
// currency and rounds once, half to even, to that currency's minor
// units. The identity case stays exact.
func (s *LedgerService) convertLeg(ctx context.Context, amount decimal.Decimal, fromCcy string, toCcy string) (decimal.Decimal, decimal.Decimal, error) {
	converted, rateUsed, err := s.rateService.Convert(ctx, amount, fromCcy, toCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if domain.NormalizeCurrency(fromCcy) == domain.NormalizeCurrency(toCcy) {
		return converted, rateUsed, nil
	}

	units, err := domain.MinorUnits(toCcy)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return converted.RoundBank(units), rateUsed, nil
}

// recordRejected appends a terminal rejected transfer to the history.
// Balances are untouched; best effort, a write failure only logs.
func (s *LedgerService) recordRejected(ctx context.Context, req models.TransferRequest, reason domain.RejectReason) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		amount = decimal.Zero
	}

	if _, err := s.transferRepo.Create(ctx, domain.Transfer{
		FromAccountID:  strings.TrimSpace(req.FromAccountID),
		ToAccountID:    strings.TrimSpace(req.ToAccountID),
		Amount:         amount,
		SourceCurrency: domain.NormalizeCurrency(req.SourceCurrency),
		Description:    strings.TrimSpace(req.Description),
		Status:         domain.TransferStatusRejected,
		RejectReason:   reason,
	}); err != nil {
		logger.Error("ledger service record rejected transfer failed", err, logger.Fields{
			"fromAccountId": req.FromAccountID,
			"reason":        reason,
		})
	}
}

func rejectionMessage(reason domain.RejectReason) string {
	switch reason {
	case domain.RejectUnknownAccount:
		return "Account not found"
	case domain.RejectMalformedAmount:
		return "validation failed"
	case domain.RejectNonPositiveAmount:
		return "validation failed"
	case domain.RejectInsufficientFunds:
		return "Insufficient balance"
	case domain.RejectUnknownCurrency:
		return "Unsupported currency"
	case domain.RejectConflict:
		return "Transfer conflicted, please retry"
	default:
		return "failed to process transfer"
	}
}

func mapTransferToResponse(transfer domain.Transfer) models.TransferResponse {
	createdAt := ""
	if !transfer.CreatedAt.IsZero() {
		createdAt = transfer.CreatedAt.Format(time.RFC3339)
	}
	return models.TransferResponse{
		TransferID:     transfer.ID,
		FromAccountID:  transfer.FromAccountID,
		ToAccountID:    transfer.ToAccountID,
		Amount:         decimalPtr(transfer.Amount),
		SourceCurrency: transfer.SourceCurrency,
		Description:    transfer.Description,
		DebitAmount:    decimalPtr(transfer.DebitAmount),
		CreditAmount:   decimalPtr(transfer.CreditAmount),
		RateUsed:       decimalPtr(transfer.RateUsed),
		Status:         string(transfer.Status),
		Reason:         string(transfer.RejectReason),
		CreatedAt:      createdAt,
	}
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:           account.ID,
		DisplayName:  account.DisplayName,
		Balance:      decimalPtr(account.Balance),
		HomeCurrency: account.HomeCurrency,
		UpdatedAt:    account.UpdatedAt.Format(time.RFC3339),
	}
}

func decimalPtr(value decimal.Decimal) *decimal.Decimal {
	return &value
}
