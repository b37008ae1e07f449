package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piggybank/ledger-engine/internal/domain"
)

// RateRepository serves a fixed exchange-rate table. The defaults cover
// both directions of every supported pair so the converter never needs
// to invert a rate.
type RateRepository struct {
	rates map[string]domain.Rate
}

func NewRateRepository(rates ...domain.Rate) *RateRepository {
	if len(rates) == 0 {
		rates = DefaultRates()
	}

	table := make(map[string]domain.Rate, len(rates))
	for _, rate := range rates {
		from := domain.NormalizeCurrency(rate.FromCurrency)
		to := domain.NormalizeCurrency(rate.ToCurrency)
		rate.FromCurrency = from
		rate.ToCurrency = to
		table[from+"/"+to] = rate
	}
	return &RateRepository{rates: table}
}

func (r *RateRepository) GetRates(ctx context.Context) ([]domain.Rate, error) {
	out := make([]domain.Rate, 0, len(r.rates))
	for _, rate := range r.rates {
		out = append(out, rate)
	}
	return out, nil
}

func (r *RateRepository) GetRate(ctx context.Context, fromCurrency string, toCurrency string) (domain.Rate, error) {
	key := domain.NormalizeCurrency(fromCurrency) + "/" + domain.NormalizeCurrency(toCurrency)
	rate, ok := r.rates[key]
	if !ok {
		return domain.Rate{}, domain.ErrRecordNotFound
	}
	return rate, nil
}

func DefaultRates() []domain.Rate {
	now := time.Now().UTC()
	pairs := []struct {
		from string
		to   string
		rate string
	}{
		{"USD", "EUR", "0.92"},
		{"EUR", "USD", "1.09"},
		{"GBP", "EUR", "1.17"},
		{"EUR", "GBP", "0.855"},
		{"USD", "GBP", "0.79"},
		{"GBP", "USD", "1.27"},
	}

	rates := make([]domain.Rate, 0, len(pairs))
	for _, pair := range pairs {
		rates = append(rates, domain.Rate{
			FromCurrency: pair.from,
			ToCurrency:   pair.to,
			Rate:         decimal.RequireFromString(pair.rate),
			RateDate:     now,
			CreatedAt:    now,
		})
	}
	return rates
}
