package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/adapter/http/models"
	"github.com/piggybank/ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/piggybank/ledger-engine/internal/commons"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
	"github.com/piggybank/ledger-engine/internal/usecase/service_interfaces"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

type RateService struct {
	rateRepo repo_interfaces.RateRepository
}

func NewRateService(rateRepo repo_interfaces.RateRepository) *RateService {
	return &RateService{rateRepo: rateRepo}
}

func (s *RateService) GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error) {
	logger.Info("rate service get rates request", nil)

	rates, err := s.rateRepo.GetRates(ctx)
	if err != nil {
		logger.Error("rate service get rates failed", err, nil)
		return commons.ErrorResponse[[]models.RateResponse]("failed to get rates", "Unable to fetch rates right now"), err
	}

	resp := make([]models.RateResponse, 0, len(rates))
	for _, rate := range rates {
		resp = append(resp, mapRateToResponse(rate))
	}

	return commons.SuccessResponse("rates fetched successfully", resp), nil
}

func (s *RateService) GetRate(ctx context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error) {
	logger.Info("rate service get rate request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.RateResponse]("validation failed", err.Error()), err
	}

	fromCurrency := domain.NormalizeCurrency(req.FromCurrency)
	toCurrency := domain.NormalizeCurrency(req.ToCurrency)
	if fromCurrency == toCurrency {
		response := models.RateResponse{
			FromCurrency: fromCurrency,
			ToCurrency:   toCurrency,
			Rate:         decimal.NewFromInt(1),
			RateDate:     time.Now().UTC().Format("2006-01-02"),
		}
		return commons.SuccessResponse("rate fetched successfully", response), nil
	}

	rate, err := s.rateRepo.GetRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		logger.Error("rate service get rate failed", err, logger.Fields{
			"fromCurrency": fromCurrency,
			"toCurrency":   toCurrency,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.RateResponse]("Rate not found"), err
		}
		return commons.ErrorResponse[models.RateResponse]("failed to get rate", "Unable to fetch rate right now"), err
	}

	return commons.SuccessResponse("rate fetched successfully", mapRateToResponse(rate)), nil
}

func (s *RateService) Convert(ctx context.Context, amount decimal.Decimal, fromCcy string, toCcy string) (decimal.Decimal, decimal.Decimal, error) {
	fromCurrency := domain.NormalizeCurrency(fromCcy)
	toCurrency := domain.NormalizeCurrency(toCcy)

	if !domain.SupportedCurrency(fromCurrency) || !domain.SupportedCurrency(toCurrency) {
		return decimal.Decimal{}, decimal.Decimal{}, domain.ErrUnknownCurrency
	}

	// Identity conversion returns the amount untouched so a same-currency
	// transfer can never pick up rounding drift.
	if fromCurrency == toCurrency {
		return amount, decimal.NewFromInt(1), nil
	}

	rate, err := s.rateRepo.GetRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("rate %s/%s: %w", fromCurrency, toCurrency, domain.ErrUnknownCurrency)
		}
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	if rate.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("rate %s/%s must be greater than zero", fromCurrency, toCurrency)
	}

	return amount.Mul(rate.Rate), rate.Rate, nil
}

func mapRateToResponse(rate domain.Rate) models.RateResponse {
	return models.RateResponse{
		FromCurrency: rate.FromCurrency,
		ToCurrency:   rate.ToCurrency,
		Rate:         rate.Rate,
		RateDate:     rate.RateDate.Format("2006-01-02"),
	}
}
