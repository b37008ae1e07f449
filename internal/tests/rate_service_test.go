package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/usecase/services"
)

type rateRepoStub struct {
	getRatesFn func(ctx context.Context) ([]domain.Rate, error)
	getRateFn  func(ctx context.Context, fromCurrency string, toCurrency string) (domain.Rate, error)
}

func (s rateRepoStub) GetRates(ctx context.Context) ([]domain.Rate, error) {
	if s.getRatesFn != nil {
		return s.getRatesFn(ctx)
	}
	return nil, nil
}

func (s rateRepoStub) GetRate(ctx context.Context, fromCurrency string, toCurrency string) (domain.Rate, error) {
	if s.getRateFn != nil {
		return s.getRateFn(ctx, fromCurrency, toCurrency)
	}
	return domain.Rate{}, nil
}

func TestRateServiceGetRatesSuccess(t *testing.T) {
	svc := services.NewRateService(rateRepoStub{
		getRatesFn: func(context.Context) ([]domain.Rate, error) {
			return []domain.Rate{
				{
					FromCurrency: "USD",
					ToCurrency:   "EUR",
					Rate:         decimal.RequireFromString("0.92"),
					RateDate:     time.Now().UTC(),
					CreatedAt:    time.Now().UTC(),
				},
			}, nil
		},
	})

	resp, err := svc.GetRates(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil || len(*resp.Data) != 1 {
		t.Fatal("expected one rate in successful response")
	}
}

func TestRateServiceGetRateSameCurrency(t *testing.T) {
	svc := services.NewRateService(nil)

	resp, err := svc.GetRate(context.Background(), models.GetRateRequest{
		FromCurrency: "USD",
		ToCurrency:   "USD",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if !resp.Data.Rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected rate 1, got %s", resp.Data.Rate.String())
	}
}

func TestRateServiceConvertIdentityIsExact(t *testing.T) {
	svc := services.NewRateService(nil)

	for _, currency := range []string{"EUR", "USD", "GBP"} {
		for _, raw := range []string{"200", "0.01", "123.456789", "99999999.99"} {
			amount := decimal.RequireFromString(raw)
			converted, rateUsed, err := svc.Convert(context.Background(), amount, currency, currency)
			if err != nil {
				t.Fatalf("%s identity: expected nil error, got %v", currency, err)
			}
			if !converted.Equal(amount) {
				t.Fatalf("%s identity: expected %s, got %s", currency, amount, converted)
			}
			if !rateUsed.Equal(decimal.NewFromInt(1)) {
				t.Fatalf("%s identity: expected rate 1, got %s", currency, rateUsed)
			}
		}
	}
}

func TestRateServiceConvertUsesRepositoryRate(t *testing.T) {
	svc := services.NewRateService(rateRepoStub{
		getRateFn: func(_ context.Context, from, to string) (domain.Rate, error) {
			if from != "USD" || to != "EUR" {
				t.Fatalf("unexpected pair %s/%s", from, to)
			}
			return domain.Rate{FromCurrency: from, ToCurrency: to, Rate: decimal.RequireFromString("0.92")}, nil
		},
	})

	converted, rateUsed, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "USD", "EUR")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !converted.Equal(decimal.RequireFromString("92")) {
		t.Fatalf("expected 92, got %s", converted)
	}
	if !rateUsed.Equal(decimal.RequireFromString("0.92")) {
		t.Fatalf("expected rate 0.92, got %s", rateUsed)
	}
}

func TestRateServiceConvertUnknownCurrency(t *testing.T) {
	svc := services.NewRateService(nil)

	_, _, err := svc.Convert(context.Background(), decimal.NewFromInt(10), "XXX", "EUR")
	if !errors.Is(err, domain.ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}

	_, _, err = svc.Convert(context.Background(), decimal.NewFromInt(10), "EUR", "JPY")
	if !errors.Is(err, domain.ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestRateServiceConvertNonPositiveRateFails(t *testing.T) {
	svc := services.NewRateService(rateRepoStub{
		getRateFn: func(context.Context, string, string) (domain.Rate, error) {
			return domain.Rate{Rate: decimal.Zero}, nil
		},
	})

	_, _, err := svc.Convert(context.Background(), decimal.NewFromInt(10), "USD", "EUR")
	if err == nil {
		t.Fatal("expected error for zero rate")
	}
}
