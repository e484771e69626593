package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ecoswap/internal/infrastructure/config"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store 擷取結果快取，未命中時 Get 回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// New 依設定選擇後端，停用時回傳 nil
func New(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case BackendRedis:
		s, err := NewService(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory, "":
		return NewManager(cfg), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key 以網址產生快取鍵
func Key(url string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return "recipe:extract:" + hex.EncodeToString(hash[:])
}
