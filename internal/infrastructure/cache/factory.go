package cache

import (
	"github.com/gatetrack/backend/internal/application/invoiceview"
	"github.com/gatetrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ViewCacheFactory creates view caches based on configuration
type ViewCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ViewCacheFactoryOption is a functional option for configuring the factory
type ViewCacheFactoryOption func(*ViewCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ViewCacheFactoryOption {
	return func(f *ViewCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-process cache
// when Redis is enabled but unavailable. Default is true.
func WithInMemoryFallback(allow bool) ViewCacheFactoryOption {
	return func(f *ViewCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewViewCacheFactory creates a new factory
func NewViewCacheFactory(cfg config.RedisConfig, opts ...ViewCacheFactoryOption) *ViewCacheFactory {
	f := &ViewCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a view cache. When Redis is disabled in configuration
// the in-process cache is used directly; when Redis is enabled but
// unreachable the factory falls back to the in-process cache unless fallback
// has been disabled.
func (f *ViewCacheFactory) CreateCache() (invoiceview.ViewCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory view cache")
		return NewInMemoryViewCache(), nil
	}

	cache, err := NewRedisViewCache(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis view cache", zap.String("addr", f.redisConfig.Addr()))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory view cache. "+
		"View invalidation will not propagate across instances.",
		zap.Error(err),
	)
	return NewInMemoryViewCache(), nil
}
