package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"ecoswap/internal/infrastructure/config"
	"ecoswap/internal/pkg/common"
	"ecoswap/internal/pkg/metrics"
)

const pingTimeout = 3 * time.Second

// Service Redis 快取
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 創建 Redis 快取並測試連線
func NewService(cfg config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
		zap.Duration("存活時間", cfg.TTL),
	)
	return &Service{client: client, ttl: cfg.TTL}, nil
}

// Get 獲取緩存，不存在時回傳 ErrCacheMiss
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues(BackendRedis, "miss").Inc()
		common.LogCacheMiss(BackendRedis, key)
		return "", common.ErrCacheMiss
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues(BackendRedis, "error").Inc()
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	metrics.CacheLookups.WithLabelValues(BackendRedis, "hit").Inc()
	common.LogCacheHit(BackendRedis, key)
	return value, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

// Ping 檢查 Redis 連線
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
