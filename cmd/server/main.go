package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/piggybank/ledger-engine/internal/adapter/http/controller"
	"github.com/piggybank/ledger-engine/internal/adapter/http/middleware"
	"github.com/piggybank/ledger-engine/internal/adapter/http/router"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/memory"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/postgres"
	redisrepo "github.com/piggybank/ledger-engine/internal/adapter/repository/redis"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/piggybank/ledger-engine/internal/config"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/notification"
	"github.com/piggybank/ledger-engine/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accountRepo, transferRepo, rateRepo, err := buildRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("build repositories: %v", err)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rateRepo = redisrepo.NewRateRepository(client, rateRepo)
	}

	var notifier notification.Notifier = notification.LogNotifier{}
	if cfg.WebhookURL != "" {
		notifier = notification.NewWebhookNotifier(cfg.WebhookURL)
	}

	rateService := services.NewRateService(rateRepo)
	validator := services.NewTransferValidator(accountRepo, rateService)
	ledgerService := services.NewLedgerService(accountRepo, transferRepo, rateService, validator, notifier)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	mux := router.New(
		controller.NewAccountController(ledgerService),
		controller.NewTransferController(ledgerService),
		controller.NewRateController(rateService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("ledger engine listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func buildRepositories(ctx context.Context, cfg config.Config) (
	repo_interfaces.AccountRepository,
	repo_interfaces.TransferRepository,
	repo_interfaces.RateRepository,
	error,
) {
	if cfg.StorageDriver == "postgres" {
		db, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}

		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := postgres.RunMigrations(migrateCtx, db, cfg.MigrationsDir); err != nil {
			return nil, nil, nil, err
		}

		return postgres.NewAccountRepository(db), postgres.NewTransferRepository(db), postgres.NewRateRepository(db), nil
	}

	accountRepo := memory.NewAccountRepository()
	seedDemoAccounts(ctx, accountRepo)
	return accountRepo, memory.NewTransferRepository(), memory.NewRateRepository(), nil
}

// The web app's login screen is a list of accounts to pick from; the
// memory driver seeds the same cast so the UI works out of the box.
func seedDemoAccounts(ctx context.Context, repo *memory.AccountRepository) {
	seeds := []domain.Account{
		{DisplayName: "Melvin Moreno", Balance: decimal.NewFromInt(5000), HomeCurrency: "EUR"},
		{DisplayName: "Sara Ravestein", Balance: decimal.NewFromInt(3200), HomeCurrency: "EUR"},
		{DisplayName: "Dion de Vries", Balance: decimal.NewFromInt(1500), HomeCurrency: "EUR"},
	}

	for _, seed := range seeds {
		if _, err := repo.Create(ctx, seed); err != nil {
			log.Printf("seed account %q: %v", seed.DisplayName, err)
		}
	}
}
