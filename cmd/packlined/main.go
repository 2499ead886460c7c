// Command packlined runs the Packline broker: a TCP listener that accepts
// framed client connections and serves them against an in-memory channel
// registry.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/packline-io/packline/internal/broker"
	"github.com/packline-io/packline/internal/channel"
	"github.com/packline-io/packline/pkg/concurrency"
	"github.com/packline-io/packline/pkg/config"
	"github.com/packline-io/packline/pkg/logger"
	"github.com/packline-io/packline/pkg/telemetry"
)

// Config is the broker's environment-driven configuration.
type Config struct {
	Address        string `env:"PACKLINE_ADDRESS" env-default:"127.0.0.1:1883"`
	LogLevel       string `env:"LOG_LEVEL" env-default:"INFO"`
	LogFormat      string `env:"LOG_FORMAT" env-default:"JSON"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" env-default:"packlined"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" env-default:"0.0.1"`
	Environment    string `env:"APP_ENV" env-default:"development"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	Partitions     uint32 `env:"PACKLINE_DEFAULT_PARTITIONS" env-default:"1"`
}

func main() {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdownTracing, err := telemetry.Init(telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.L().Error("telemetry init failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Error("packlined exited with error", "error", err)
		_ = shutdownTracing(context.Background())
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = shutdownTracing(shutdownCtx)
}

func run(ctx context.Context, cfg Config) error {
	app := channel.NewApp()
	registry := broker.NewInstrumentedRegistry(broker.NewAppRegistry(app))

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}
	logger.L().InfoContext(ctx, "packline broker listening", "address", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		return acceptLoop(gctx, ln, registry)
	})

	err = g.Wait()
	if err != nil && gctx.Err() != nil {
		// Shutdown was triggered by context cancellation, not a real failure.
		return nil
	}
	return err
}

func acceptLoop(ctx context.Context, ln net.Listener, registry broker.ChannelRegistry) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		handler := broker.NewHandler(registry, conn)
		concurrency.SafeGo(ctx, func() {
			defer conn.Close()
			if serveErr := handler.Serve(ctx); serveErr != nil {
				logger.L().WarnContext(ctx, "connection closed", "error", serveErr)
			}
		})
	}
}
