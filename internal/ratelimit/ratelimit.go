// Package ratelimit throttles chat requests per client identifier using a
// fixed window discipline: the counter resets entirely at the window
// boundary rather than sliding. The default store is in-process memory; a
// Redis store is available for deployments with more than one instance.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/models"
)

// Limiter decides whether a request from the given identifier may proceed.
type Limiter interface {
	Check(ctx context.Context, identifier string) (models.Decision, error)
}

// New builds the limiter selected by configuration.
func New(cfg *config.RateLimitConfig, logger *logrus.Logger) (Limiter, error) {
	switch cfg.Store {
	case "memory":
		return NewMemoryLimiter(cfg.MaxRequests, cfg.Window, cfg.CleanupThreshold), nil
	case "redis":
		return NewRedisLimiter(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.Store)
	}
}
