package daemon

import (
	"context"

	"catchup/internal/config"
	"catchup/internal/handler"
	"catchup/internal/hipchat"
	"catchup/internal/logging"
	"catchup/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved startup options passed to the fx module.
type Params struct {
	ConfigPath string
	Addr       string // optional override for testing; empty = use config
}

// Module returns the fx module for the service, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("catchupd",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideMetrics,
			provideClientFactory,
			provideHandler,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (config.Config, error) {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if p.Addr != "" {
		cfg.HTTPAddr = p.Addr
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogLevel)
}

func provideMetrics() *metrics.Metrics {
	return metrics.New()
}

func provideClientFactory(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *hipchat.Factory {
	return hipchat.NewFactory(cfg.APIURL, logger,
		hipchat.WithTimeout(cfg.HTTPTimeout),
		hipchat.WithMetrics(m))
}

func provideHandler(clients *hipchat.Factory, logger *zap.Logger, m *metrics.Metrics) *handler.Handler {
	return handler.New(clients, logger, m)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, cfg config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("catchupd starting", zap.String("api_url", cfg.APIURL))
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			logger.Info("catchupd stopped")
			return nil
		},
	})
}
