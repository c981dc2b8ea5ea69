package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/recipeapp/recipe-server/internal/config"
	"github.com/recipeapp/recipe-server/internal/logger"
	"github.com/recipeapp/recipe-server/internal/ratelimit"
	"github.com/recipeapp/recipe-server/internal/service"
)

// tokenCleanupInterval is how often expired bearer tokens are pruned.
const tokenCleanupInterval = time.Hour

// RateLimiterHandle wraps the account endpoint limiter so its cleanup
// goroutine stops on shutdown.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	return h.KeyedRateLimiter.Shutdown()
}

// ProvideAuthRateLimiter provides the per-IP limiter for /user/create and /user/token.
func ProvideAuthRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.NewPerInterval(cfg.RateLimit.AuthPerMinute, time.Minute, cfg.RateLimit.AuthBurst)

	log.Info("Auth rate limiter started",
		"per_minute", cfg.RateLimit.AuthPerMinute,
		"burst", cfg.RateLimit.AuthBurst,
	)

	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// TokenCleanupJob runs periodic expired token cleanup.
type TokenCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *TokenCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideTokenCleanupJob provides the periodic token cleanup job.
func ProvideTokenCleanupJob(i do.Injector) (*TokenCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := authService.PruneExpiredTokens(ctx); err != nil {
			log.Warn("Initial token cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial token cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := authService.PruneExpiredTokens(ctx); err != nil {
					log.Warn("Token cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Token cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Token cleanup job started")

	return &TokenCleanupJob{cancel: cancel}, nil
}
