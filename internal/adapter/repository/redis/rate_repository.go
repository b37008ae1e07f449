package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/piggybank/ledger-engine/internal/adapter/repository/repo_interfaces"
	"github.com/piggybank/ledger-engine/internal/domain"
	"github.com/piggybank/ledger-engine/internal/logger"
)

const rateCacheTTL = 5 * time.Minute

// RateRepository is a read-through cache over another rate source. Cache
// failures degrade to the backing repository and are only logged; a
// stale or missing cache must never fail a transfer.
type RateRepository struct {
	client *redis.Client
	next   repo_interfaces.RateRepository
}

func NewRateRepository(client *redis.Client, next repo_interfaces.RateRepository) *RateRepository {
	return &RateRepository{client: client, next: next}
}

func (r *RateRepository) GetRates(ctx context.Context) ([]domain.Rate, error) {
	return r.next.GetRates(ctx)
}

func (r *RateRepository) GetRate(ctx context.Context, fromCurrency string, toCurrency string) (domain.Rate, error) {
	key := cacheKey(fromCurrency, toCurrency)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var rate domain.Rate
		if unmarshalErr := json.Unmarshal([]byte(cached), &rate); unmarshalErr == nil {
			return rate, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("rate cache read failed", err, logger.Fields{"key": key})
	}

	rate, err := r.next.GetRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return domain.Rate{}, err
	}

	if payload, marshalErr := json.Marshal(rate); marshalErr == nil {
		if setErr := r.client.Set(ctx, key, payload, rateCacheTTL).Err(); setErr != nil {
			logger.Error("rate cache write failed", setErr, logger.Fields{"key": key})
		}
	}

	return rate, nil
}

func cacheKey(fromCurrency, toCurrency string) string {
	return "rate:" + domain.NormalizeCurrency(fromCurrency) + ":" + domain.NormalizeCurrency(toCurrency)
}
