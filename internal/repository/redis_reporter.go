package repository

import (
	"context"
	"time"

	"SensorStat/internal/domain/models"
	"SensorStat/internal/domain/repository"
	"SensorStat/pkg/cache"
)

// RedisReporter keeps the latest summary of every file under
// summary:<file>, expiring after ttl.
type RedisReporter struct {
	cache cache.Service
	ttl   time.Duration
}

// NewRedisReporter creates a reporter on top of any cache.Service.
func NewRedisReporter(c cache.Service, ttl time.Duration) repository.Reporter {
	return &RedisReporter{cache: c, ttl: ttl}
}

// SummaryKey is the cache key (before prefixing) for file.
func SummaryKey(file string) string {
	return "summary:" + file
}

func (r *RedisReporter) Name() string { return "redis" }

func (r *RedisReporter) Report(ctx context.Context, rep *models.FileReport) error {
	return r.cache.Set(ctx, SummaryKey(rep.File), newSummaryMessage(rep), r.ttl)
}

func (r *RedisReporter) Close() error {
	return r.cache.Close()
}
