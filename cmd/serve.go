package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"validator/internal/api"
	"validator/internal/config"
	"validator/internal/validation"
	"validator/internal/worker"
	"validator/pkg/logger"
	"validator/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, service validation.Service) func(ctx context.Context) {
	server := api.NewServer(ctx, api.Deps{Validation: service}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// forwardHangups triggers a schema refresh for every SIGHUP until ctx is done.
func forwardHangups(ctx context.Context, refresher *worker.Refresher) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info(ctx, "received SIGHUP, refreshing schema")
				refresher.Trigger()
			}
		}
	}()
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	meterProvider, err := metrics.NewPrometheusMeterProvider(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("could not create meter provider: %w", err)
	}
	otel.SetMeterProvider(meterProvider)
	defer func() {
		if err := meterProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
		}
	}()

	service, err := newService(cfg, meterProvider.Meter(meterName))
	if err != nil {
		return err
	}

	// the schema must be usable before the first request is accepted.
	if err := loadSchema(ctx, service, startupBackOff(cfg.Schema.StartupAttempts)); err != nil {
		return err
	}

	refresher := worker.NewRefresher(service, cfg.Schema.RefreshInterval)
	waitRefresher := worker.Start(ctx, refresher)
	forwardHangups(ctx, refresher)

	stopWebserver := setupServer(ctx, cfg, service)

	// wait for interrupt
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.GracefulShutdownTimeout)
	defer cancel()

	stopWebserver(shutdownCtx)
	waitRefresher()

	return nil
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Loads the schema and starts the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	return cmd
}
