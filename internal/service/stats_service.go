package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/events"
	"github.com/spec-kit/service-desk/internal/persistence"
	"github.com/spec-kit/service-desk/internal/repository"
	apperrors "github.com/spec-kit/service-desk/pkg/util"
)

const statsCacheKey = "stats:summary"

// StatsService computes the reporting aggregate. Results are cached in
// Redis for a short TTL and invalidated whenever a request mutation
// event is published, so the figures lag writes by at most one TTL
// even if an invalidation is lost.
type StatsService struct {
	requests repository.RequestRepository
	redis    *persistence.Redis
	ttl      time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs the service. A nil redis disables caching.
func NewStatsService(requests repository.RequestRepository, redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{
		requests: requests,
		redis:    redis,
		ttl:      ttl,
		logger:   logger,
	}
}

// BindInvalidation drops the cached aggregate whenever a request is
// created, changes status, or gets a technician assigned.
func (s *StatsService) BindInvalidation(dispatcher events.Dispatcher) {
	handler := func(ctx context.Context, _ events.Event) error {
		s.invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventRequestCreated, handler)
	dispatcher.Subscribe(events.EventStatusChanged, handler)
	dispatcher.Subscribe(events.EventTechnicianAssigned, handler)
}

// Summary returns the aggregate for back-office callers.
func (s *StatsService) Summary(ctx context.Context, caller *domain.Caller) (*domain.Statistics, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("caller required")
	}
	if !caller.Role.IsBackOffice() {
		return nil, apperrors.NewForbidden("role may not view statistics")
	}

	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.requests.Statistics(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats.AvgDays = math.Round(stats.AvgDays*10) / 10
	if stats.ByStatus == nil {
		stats.ByStatus = []domain.StatusCount{}
	}
	if stats.ByType == nil {
		stats.ByType = []domain.TypeCount{}
	}

	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context) *domain.Statistics {
	if s.redis == nil || s.redis.Client == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.redis.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats domain.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, stats *domain.Statistics) {
	if s.redis == nil || s.redis.Client == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

func (s *StatsService) invalidate(ctx context.Context) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	if err := s.redis.Client.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
