package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"verifybridge/internal/bridge/channel"
	bridgemetrics "verifybridge/internal/bridge/metrics"
	"verifybridge/internal/bridge/ports"
	"verifybridge/internal/bridge/surface"
	"verifybridge/internal/engine/redisstate"
	"verifybridge/internal/engine/remote"
	"verifybridge/internal/engine/statehub"
	"verifybridge/internal/platform/config"
	"verifybridge/internal/platform/httpserver"
	"verifybridge/internal/platform/logger"
	"verifybridge/internal/platform/metrics"
	redisclient "verifybridge/internal/platform/redis"
	httptransport "verifybridge/internal/transport/http"
	"verifybridge/internal/transport/ws"
	"verifybridge/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Bridge logic lives in internal/bridge.
func main() {
	cfg := config.FromEnv()
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("verifybridge stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	bridgeMetrics := bridgemetrics.New(prometheus.DefaultRegisterer)
	platformMetrics := metrics.New(prometheus.DefaultRegisterer)

	checks := map[string]httptransport.HealthChecker{}
	var (
		sink   remote.StateSink
		states ports.StateStream
	)
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		sink = redisstate.NewPublisher(rdb, cfg.StateChannel)
		states = redisstate.NewStream(rdb, cfg.StateChannel, redisstate.WithLogger(log))
		checks["redis"] = rdb
		log.Info("engine state on redis", "channel", cfg.StateChannel)
	} else {
		hub := statehub.New()
		sink, states = hub, hub
	}

	breaker := circuit.New("remote-engine",
		circuit.WithFailureThreshold(cfg.Engine.BreakerThreshold),
		circuit.WithCooldown(cfg.Engine.BreakerCooldown),
	)
	engine, err := remote.New(cfg.Engine.BaseURL, cfg.Engine.APIKey, sink,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Engine.Timeout}),
		remote.WithLogger(log),
		remote.WithBreaker(breaker),
	)
	if err != nil {
		return err
	}

	surfaces := surface.NewRegistry(surface.WithLogger(log), surface.WithObserver(platformMetrics))
	presenter := ws.NewPresenter(engine, log)

	var hostOpts []ws.HandlerOption
	if cfg.HostJWTSigningKey != "" {
		hostOpts = append(hostOpts, ws.WithVerifier(ws.NewTokenVerifier(cfg.HostJWTSigningKey)))
	} else {
		log.Warn("host attach is unauthenticated; set HOST_JWT_SIGNING_KEY to require tokens")
	}

	dispatcher := channel.New(engine, states, presenter, surfaces,
		channel.WithLogger(log),
		channel.WithMetrics(bridgeMetrics),
	)

	router := httptransport.NewRouter(
		httptransport.RouterConfig{Logger: log, Gatherer: prometheus.DefaultGatherer, Checks: checks},
		httptransport.NewHandler(dispatcher, log),
		ws.NewHandler(surfaces, log, hostOpts...),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting verifybridge", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down verifybridge")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
