package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/memory"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/notification"
	"github.com/piggybank/ledger-engine/internal/usecase/services"
)

type notifierStub struct {
	mu       sync.Mutex
	outcomes []notification.Outcome
}

func (n *notifierStub) Notify(ctx context.Context, outcome notification.Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, outcome)
}

func (n *notifierStub) all() []notification.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Outcome(nil), n.outcomes...)
}

type accountRepoStub struct {
	getFn            func(ctx context.Context, id string) (domain.Account, error)
	mutateBalancesFn func(ctx context.Context, debit domain.BalanceChange, credit domain.BalanceChange) error
}

func (s accountRepoStub) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	return account, nil
}

func (s accountRepoStub) Get(ctx context.Context, id string) (domain.Account, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (s accountRepoStub) List(ctx context.Context) ([]domain.Account, error) {
	return nil, nil
}

func (s accountRepoStub) MutateBalances(ctx context.Context, debit domain.BalanceChange, credit domain.BalanceChange) error {
	if s.mutateBalancesFn != nil {
		return s.mutateBalancesFn(ctx, debit, credit)
	}
	return nil
}

func (s accountRepoStub) Rename(ctx context.Context, id string, newName string) (domain.Account, error) {
	return domain.Account{}, domain.ErrRecordNotFound
}

type ledgerFixture struct {
	accounts  *memory.AccountRepository
	transfers *memory.TransferRepository
	notifier  *notifierStub
	service   *services.LedgerService
}

func newLedgerFixture(t *testing.T, seeds ...domain.Account) (ledgerFixture, []domain.Account) {
	t.Helper()

	accounts := memory.NewAccountRepository()
	created := seedAccounts(t, accounts, seeds...)

	transfers := memory.NewTransferRepository()
	rateService := services.NewRateService(memory.NewRateRepository())
	validator := services.NewTransferValidator(accounts, rateService)
	notifier := &notifierStub{}
	service := services.NewLedgerService(accounts, transfers, rateService, validator, notifier)

	return ledgerFixture{
		accounts:  accounts,
		transfers: transfers,
		notifier:  notifier,
		service:   service,
	}, created
}

func mustBalance(t *testing.T, repo *memory.AccountRepository, id string) decimal.Decimal {
	t.Helper()

	account, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return account.Balance
}

func TestTransferSameCurrencyMovesExactAmount(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	resp, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "100",
		SourceCurrency: "EUR",
		Description:    "Dit is een overboeking",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.Status != string(domain.TransferStatusCommitted) {
		t.Fatalf("expected COMMITTED, got %s", resp.Data.Status)
	}

	if got := mustBalance(t, fixture.accounts, accounts[0].ID); !got.Equal(decimal.NewFromInt(4900)) {
		t.Fatalf("expected source balance 4900, got %s", got)
	}
	if got := mustBalance(t, fixture.accounts, accounts[1].ID); !got.Equal(decimal.NewFromInt(3300)) {
		t.Fatalf("expected destination balance 3300, got %s", got)
	}
}

func TestTransferCrossCurrencyConvertsAndRoundsOnce(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	// 100 USD against the fixed table: both legs convert at 0.92 into
	// EUR, rounded half-to-even to cents.
	resp, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "100",
		SourceCurrency: "USD",
		Description:    "Dit is een overboeking",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := decimal.RequireFromString("92.00")
	if !resp.Data.CreditAmount.Equal(want) {
		t.Fatalf("expected credit %s, got %s", want, resp.Data.CreditAmount)
	}
	if !resp.Data.DebitAmount.Equal(want) {
		t.Fatalf("expected debit %s, got %s", want, resp.Data.DebitAmount)
	}
	if got := mustBalance(t, fixture.accounts, accounts[1].ID); !got.Equal(decimal.RequireFromString("3292.00")) {
		t.Fatalf("expected destination balance 3292.00, got %s", got)
	}
}

func TestTransferBankersRounding(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	// 10.625 USD * 0.92 = 9.775 EUR: half-to-even at cents gives 9.78.
	resp, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "10.625",
		SourceCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := decimal.RequireFromString("10.625").Mul(decimal.RequireFromString("0.92")).RoundBank(2)
	if !resp.Data.CreditAmount.Equal(want) {
		t.Fatalf("expected credit %s, got %s", want, resp.Data.CreditAmount)
	}
}

func TestTransferNegativeAmountRejectedWithoutBalanceChange(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	_, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "-100",
		SourceCurrency: "EUR",
	})
	if !errors.Is(err, domain.ErrNonPositiveAmount) {
		t.Fatalf("expected ErrNonPositiveAmount, got %v", err)
	}

	if got := mustBalance(t, fixture.accounts, accounts[0].ID); !got.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("source balance changed after rejection: %s", got)
	}
	if got := mustBalance(t, fixture.accounts, accounts[1].ID); !got.Equal(decimal.NewFromInt(3200)) {
		t.Fatalf("destination balance changed after rejection: %s", got)
	}

	outcomes := fixture.notifier.all()
	if len(outcomes) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(outcomes))
	}
	if outcomes[0].Success {
		t.Fatal("expected failure notification")
	}
	if outcomes[0].Reason != domain.RejectNonPositiveAmount {
		t.Fatalf("expected reason %s, got %s", domain.RejectNonPositiveAmount, outcomes[0].Reason)
	}
}

func TestTransferInsufficientFundsRejected(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(50), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	_, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "100",
		SourceCurrency: "EUR",
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	if got := mustBalance(t, fixture.accounts, accounts[0].ID); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("source balance changed after rejection: %s", got)
	}
}

func TestTransferCommitEmitsExactlyOneSuccessNotification(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	resp, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  accounts[0].ID,
		ToAccountID:    accounts[1].ID,
		Amount:         "100",
		SourceCurrency: "EUR",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	outcomes := fixture.notifier.all()
	if len(outcomes) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(outcomes))
	}
	if !outcomes[0].Success {
		t.Fatal("expected success notification")
	}
	if outcomes[0].TransferID != resp.Data.TransferID {
		t.Fatalf("notification transfer id %q does not match response %q", outcomes[0].TransferID, resp.Data.TransferID)
	}
}

func TestTransferConflictRejectedWithoutRetry(t *testing.T) {
	account := func(id string) domain.Account {
		return domain.Account{ID: id, DisplayName: id, Balance: decimal.NewFromInt(1000), HomeCurrency: "EUR"}
	}

	mutations := 0
	repo := accountRepoStub{
		getFn: func(_ context.Context, id string) (domain.Account, error) {
			return account(id), nil
		},
		mutateBalancesFn: func(context.Context, domain.BalanceChange, domain.BalanceChange) error {
			mutations++
			return domain.ErrConflict
		},
	}

	transfers := memory.NewTransferRepository()
	rateService := services.NewRateService(memory.NewRateRepository())
	validator := services.NewTransferValidator(repo, rateService)
	notifier := &notifierStub{}
	service := services.NewLedgerService(repo, transfers, rateService, validator, notifier)

	_, err := service.Transfer(context.Background(), models.TransferRequest{
		FromAccountID:  "a",
		ToAccountID:    "b",
		Amount:         "10",
		SourceCurrency: "EUR",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if mutations != 1 {
		t.Fatalf("expected a single mutation attempt, got %d", mutations)
	}

	history, err := transfers.ListByAccount(context.Background(), "a", 10)
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if len(history) != 1 || history[0].Status != domain.TransferStatusRejected {
		t.Fatalf("expected one rejected transfer in history, got %+v", history)
	}
	if history[0].RejectReason != domain.RejectConflict {
		t.Fatalf("expected CONFLICT reason, got %s", history[0].RejectReason)
	}
}

func TestRenameAccountCommitsAndNotifies(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
	)

	resp, err := fixture.service.RenameAccount(context.Background(), models.RenameAccountRequest{
		AccountID: accounts[0].ID,
		NewName:   "Dit is een naam",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil || resp.Data.Status != "committed" {
		t.Fatalf("expected committed rename, got %+v", resp)
	}

	account, err := fixture.accounts.Get(context.Background(), accounts[0].ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if account.DisplayName != "Dit is een naam" {
		t.Fatalf("expected renamed account, got %q", account.DisplayName)
	}

	outcomes := fixture.notifier.all()
	if len(outcomes) != 1 || !outcomes[0].Success {
		t.Fatalf("expected exactly one success notification, got %+v", outcomes)
	}
	if outcomes[0].Operation != notification.OperationRename {
		t.Fatalf("expected rename operation, got %s", outcomes[0].Operation)
	}
}

func TestRenameAccountNotFound(t *testing.T) {
	fixture, _ := newLedgerFixture(t)

	_, err := fixture.service.RenameAccount(context.Background(), models.RenameAccountRequest{
		AccountID: "missing",
		NewName:   "whatever",
	})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	outcomes := fixture.notifier.all()
	if len(outcomes) != 1 || outcomes[0].Success {
		t.Fatalf("expected exactly one failure notification, got %+v", outcomes)
	}
}

func TestListTransfersNewestFirstWithLimit(t *testing.T) {
	fixture, accounts := newLedgerFixture(t,
		domain.Account{DisplayName: "Melvin", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		domain.Account{DisplayName: "Sara", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
	)

	for _, amount := range []string{"10", "20", "30"} {
		if _, err := fixture.service.Transfer(context.Background(), models.TransferRequest{
			FromAccountID:  accounts[0].ID,
			ToAccountID:    accounts[1].ID,
			Amount:         amount,
			SourceCurrency: "EUR",
		}); err != nil {
			t.Fatalf("transfer %s: %v", amount, err)
		}
	}

	resp, err := fixture.service.ListTransfers(context.Background(), accounts[0].ID, 2)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data == nil || len(*resp.Data) != 2 {
		t.Fatalf("expected two transfers, got %+v", resp.Data)
	}

	newest := (*resp.Data)[0]
	if !newest.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected newest transfer first, got amount %s", newest.Amount)
	}
}

func TestListTransfersUnknownAccount(t *testing.T) {
	fixture, _ := newLedgerFixture(t)

	_, err := fixture.service.ListTransfers(context.Background(), "missing", 5)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
