package storage

import (
	"context"
	"fmt"
	"time"

	"thermacore/internal/config"
	"thermacore/internal/core/port"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	BACKEND_MEMORY = "memory"
	BACKEND_SQLITE = "sqlite"
	BACKEND_REDIS  = "redis"
)

// Store is a KeyValueStore owning a closable backend.
type Store interface {
	port.KeyValueStore
	Close() error
}

// TimeoutStore bounds every call on the wrapped store so a slow backend
// cannot stall a user action.
type TimeoutStore struct {
	Store
	timeout time.Duration
}

func (s TimeoutStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Get(ctx, key)
}

func (s TimeoutStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Set(ctx, key, value)
}

func NewFromConfig(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	var store Store
	switch cfg.Backend {
	case BACKEND_MEMORY, "":
		store = NewMemoryStore()
	case BACKEND_SQLITE:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s
	case BACKEND_REDIS:
		s := NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.RedisKeyPrefix)
		if err := s.Ping(ctx); err != nil {
			// not fatal: reads fall back to defaults and writes are best effort
			logger.Warn("storage: redis not reachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	logger.Info("storage: using backend", zap.String("backend", cfg.Backend))
	if cfg.TimeoutMillis > 0 {
		return TimeoutStore{Store: store, timeout: time.Duration(cfg.TimeoutMillis) * time.Millisecond}, nil
	}
	return store, nil
}
