package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
)

type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	logger.Info("transfer repository create", logger.Fields{
		"fromAccountId": transfer.FromAccountID,
		"toAccountId":   transfer.ToAccountID,
		"status":        transfer.Status,
	})

	const query = `
INSERT INTO transfers (
	from_account_id,
	to_account_id,
	amount,
	source_currency,
	description,
	debit_amount,
	credit_amount,
	rate_used,
	status,
	reject_reason
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		transfer.FromAccountID,
		transfer.ToAccountID,
		transfer.Amount,
		transfer.SourceCurrency,
		transfer.Description,
		transfer.DebitAmount,
		transfer.CreditAmount,
		transfer.RateUsed,
		transfer.Status,
		string(transfer.RejectReason),
	).Scan(&transfer.ID, &transfer.CreatedAt); err != nil {
		logger.Error("transfer repository create failed", err, logger.Fields{
			"fromAccountId": transfer.FromAccountID,
		})
		return domain.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}

	return transfer, nil
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus, reason domain.RejectReason) error {
	// Committed and rejected are terminal; the guard keeps a finished
	// transfer from ever being rewritten.
	const query = `
UPDATE transfers
SET status = $2,
    reject_reason = $3,
    processed_at = NOW()
WHERE id = $1
  AND status = 'PENDING'`

	result, err := r.db.ExecContext(ctx, query, transferID, status, string(reason))
	if err != nil {
		logger.Error("transfer repository update status failed", err, logger.Fields{
			"transferId": transferID,
		})
		return fmt.Errorf("update transfer status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transfer status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transfer, error) {
	query := `
SELECT id, from_account_id, to_account_id, amount, source_currency, description,
       debit_amount, credit_amount, rate_used, status, reject_reason, created_at, processed_at
FROM transfers
WHERE from_account_id = $1 OR to_account_id = $1
ORDER BY created_at DESC`

	args := []any{accountID}
	if limit > 0 {
		query += `
LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]domain.Transfer, 0)
	for rows.Next() {
		var (
			transfer    domain.Transfer
			reason      sql.NullString
			processedAt sql.NullTime
		)
		if err := rows.Scan(
			&transfer.ID,
			&transfer.FromAccountID,
			&transfer.ToAccountID,
			&transfer.Amount,
			&transfer.SourceCurrency,
			&transfer.Description,
			&transfer.DebitAmount,
			&transfer.CreditAmount,
			&transfer.RateUsed,
			&transfer.Status,
			&reason,
			&transfer.CreatedAt,
			&processedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if reason.Valid {
			transfer.RejectReason = domain.RejectReason(reason.String)
		}
		if processedAt.Valid {
			value := processedAt.Time
			transfer.ProcessedAt = &value
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}

	return transfers, nil
}
