package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/repository/memory"
	"github.com/piggybank/ledger-engine/internal/domain"
)

func createTransfer(t *testing.T, repo *memory.TransferRepository, from, to string, amount int64) domain.Transfer {
	t.Helper()

	transfer, err := repo.Create(context.Background(), domain.Transfer{
		FromAccountID:  from,
		ToAccountID:    to,
		Amount:         decimal.NewFromInt(amount),
		SourceCurrency: "EUR",
		Status:         domain.TransferStatusPending,
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	return transfer
}

func TestTransferRepositoryUpdateStatusCommits(t *testing.T) {
	repo := memory.NewTransferRepository()
	transfer := createTransfer(t, repo, "a", "b", 100)

	if err := repo.UpdateStatus(context.Background(), transfer.ID, domain.TransferStatusCommitted, ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	history, err := repo.ListByAccount(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one transfer, got %d", len(history))
	}
	if history[0].Status != domain.TransferStatusCommitted {
		t.Fatalf("expected COMMITTED, got %s", history[0].Status)
	}
	if history[0].ProcessedAt == nil {
		t.Fatal("expected ProcessedAt to be set")
	}
}

// Committed and rejected are terminal; a second status change must fail
// and leave the record as it was.
func TestTransferRepositoryTerminalStatusIsImmutable(t *testing.T) {
	repo := memory.NewTransferRepository()
	transfer := createTransfer(t, repo, "a", "b", 100)

	if err := repo.UpdateStatus(context.Background(), transfer.ID, domain.TransferStatusRejected, domain.RejectInsufficientFunds); err != nil {
		t.Fatalf("first update: %v", err)
	}

	err := repo.UpdateStatus(context.Background(), transfer.ID, domain.TransferStatusCommitted, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	history, _ := repo.ListByAccount(context.Background(), "a", 10)
	if history[0].Status != domain.TransferStatusRejected {
		t.Fatalf("terminal status changed, got %s", history[0].Status)
	}
	if history[0].RejectReason != domain.RejectInsufficientFunds {
		t.Fatalf("reject reason changed, got %s", history[0].RejectReason)
	}
}

func TestTransferRepositoryUpdateStatusNotFound(t *testing.T) {
	repo := memory.NewTransferRepository()

	err := repo.UpdateStatus(context.Background(), "missing", domain.TransferStatusCommitted, "")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestTransferRepositoryListByAccountNewestFirst(t *testing.T) {
	repo := memory.NewTransferRepository()
	createTransfer(t, repo, "a", "b", 10)
	time.Sleep(time.Millisecond)
	createTransfer(t, repo, "b", "a", 20)
	time.Sleep(time.Millisecond)
	createTransfer(t, repo, "a", "c", 30)
	createTransfer(t, repo, "c", "d", 40)

	history, err := repo.ListByAccount(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected three transfers touching a, got %d", len(history))
	}
	if !history[0].Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected newest first, got amount %s", history[0].Amount)
	}
	if !history[2].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected oldest last, got amount %s", history[2].Amount)
	}

	limited, err := repo.ListByAccount(context.Background(), "a", 2)
	if err != nil {
		t.Fatalf("list transfers with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", len(limited))
	}
}
