package captcha

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"console/config"
	"console/internal/domain/lifecycle"
	"console/internal/domain/service"
	"console/internal/infra/cache"
	"console/internal/infra/metrics"
	redisinfra "console/internal/infra/redis"
)

// StoreParams defines the dependencies of the configured captcha store.
type StoreParams struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewStore picks the memory or redis store from captcha.store.
func NewStore(params StoreParams) (service.CaptchaStore, error) {
	cfg := params.Config.Captcha

	if cfg.Store != config.CaptchaStoreRedis {
		return NewMemoryStore(cfg.Capacity, cfg.TTL, cache.WithRecorder("captcha", params.Metrics)), nil
	}

	client, err := redisinfra.NewClient(params.Config.Redis)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			return redisinfra.Ping(ctx, client)
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	params.Logger.Info("Captcha challenges stored in redis")

	return NewRedisStore(client, cfg.TTL), nil
}
