package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/piggybank/ledger-engine/internal/domain"
)

type TransferRepository struct {
	mu        sync.Mutex
	transfers []domain.Transfer
	byID      map[string]int
}

func NewTransferRepository() *TransferRepository {
	return &TransferRepository{byID: make(map[string]int)}
}

func (r *TransferRepository) Create(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	if _, exists := r.byID[transfer.ID]; exists {
		return domain.Transfer{}, domain.ErrConflict
	}
	transfer.CreatedAt = time.Now().UTC()

	r.byID[transfer.ID] = len(r.transfers)
	r.transfers = append(r.transfers, transfer)
	return transfer, nil
}

func (r *TransferRepository) UpdateStatus(ctx context.Context, transferID string, status domain.TransferStatus, reason domain.RejectReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[transferID]
	if !ok {
		return domain.ErrRecordNotFound
	}

	// Committed and rejected transfers are terminal.
	if r.transfers[idx].Status != domain.TransferStatusPending {
		return domain.ErrConflict
	}

	now := time.Now().UTC()
	r.transfers[idx].Status = status
	r.transfers[idx].RejectReason = reason
	r.transfers[idx].ProcessedAt = &now
	return nil
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Transfer, 0)
	for _, transfer := range r.transfers {
		if transfer.FromAccountID == accountID || transfer.ToAccountID == accountID {
			out = append(out, transfer)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
