package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/metrics"
)

// Service serves rates from the cache and falls back to the provider.
type Service struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService wires a provider to a cache. m may be nil.
func NewService(provider Provider, cache Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{provider: provider, cache: cache, ttl: ttl, logger: logger, metrics: m}
}

// Rates returns the snapshot for base. A cache read failure is logged and
// treated as a miss.
func (s *Service) Rates(ctx context.Context, base string) (*Rates, error) {
	base = strings.ToUpper(strings.TrimSpace(base))

	cached, err := s.cache.Get(ctx, base)
	switch {
	case err == nil:
		s.metrics.ObserveRateLookup(true)
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("currency cache read failed", zap.String("base", base), zap.Error(err))
	}
	s.metrics.ObserveRateLookup(false)

	fresh, err := s.provider.Fetch(ctx, base)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.NewAppError(domain.CodeInternal, "exchange rates are unavailable", domain.WithCause(err))
	}

	if err := s.cache.Set(ctx, *fresh, s.ttl); err != nil {
		s.logger.Warn("currency cache write failed", zap.String("base", base), zap.Error(err))
	}
	return fresh, nil
}

// Convert expresses amount (minor units of from) in minor units of to.
func (s *Service) Convert(ctx context.Context, amount int64, from, to string) (int64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	rates, err := s.Rates(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	r, ok := rates.Rate(to)
	if !ok {
		return 0, domain.NewAppError(domain.CodeNotFound, "exchange rate not found",
			domain.WithDetails(map[string]any{"from": from, "to": to}))
	}
	converted, ok := convert(amount, r)
	if !ok {
		return 0, domain.AmountOutOfRange()
	}
	return converted, nil
}
