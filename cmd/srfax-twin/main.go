// Command srfax-twin serves the in-memory SRFax fake over HTTP so that
// applications can be run against it locally.
//
// It reads the same srfax.yml and SRFAX_ variables as the srfax command;
// the access ID and password become the credentials the fake accepts.
// Prometheus metrics for the handled requests are served on /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/vingd/srfax-go/internal/config"
	"github.com/vingd/srfax-go/metrics"
	"github.com/vingd/srfax-go/srfaxtest"
)

func main() {
	fx.New(options()...).Run()
}

func options() []fx.Option {
	return []fx.Option{
		fx.Provide(
			loadConfig,
			newLogger,
			prometheus.NewRegistry,
			newCollector,
			newFake,
			newHandler,
			newHTTPServer,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(startServer),
	}
}

// loadConfig reads .env, then srfax.yml (or $SRFAX_CONFIG) and the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(os.Getenv("SRFAX_CONFIG"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = level
	return zc.Build()
}

func newCollector(reg *prometheus.Registry) (*metrics.Collector, error) {
	return metrics.New(reg)
}

func newFake(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *srfaxtest.Server {
	fake := srfaxtest.New(cfg.Account.AccessID, cfg.Account.AccessPassword,
		srfaxtest.WithLogger(logger.Named("fake")),
		srfaxtest.WithObserver(collector),
		srfaxtest.WithStartID(cfg.Twin.StartID),
	)
	fake.SetLatency(cfg.Twin.Latency)
	return fake
}

func newHandler(fake *srfaxtest.Server, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Handle("/*", fake)
	return r
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.Twin.Addr,
		Handler: handler,
	}
}

func startServer(lc fx.Lifecycle, srv *http.Server, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("srfax twin listening",
				zap.String("addr", ln.Addr().String()),
				zap.String("endpoint", srfaxtest.EndpointPath),
			)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("serve failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.Twin.ShutdownTimeout)
			defer cancel()
			logger.Info("stopping srfax twin")
			return srv.Shutdown(ctx)
		},
	})
}
