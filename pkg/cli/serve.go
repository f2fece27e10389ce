package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/metgate/pkg/cli/config"
	controller "github.com/m-mizutani/metgate/pkg/controller/http"
	"github.com/m-mizutani/metgate/pkg/usecase"
	"github.com/m-mizutani/metgate/pkg/utils/poller"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		metCfg    config.MetOffice
		dbCfg     config.Database
		watchCfg  config.Watch
	)

	flags := serverCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, metCfg.Flags()...)
	flags = append(flags, dbCfg.Flags()...)
	flags = append(flags, watchCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with webhook, weather API and forecast poller",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting metgate server",
				slog.String("addr", serverCfg.Addr),
			)

			watched, err := watchCfg.Load()
			if err != nil {
				return err
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			metClient, err := metCfg.Configure()
			if err != nil {
				return err
			}

			store, err := dbCfg.Configure()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Warn("Failed to close store", slog.Any("error", err))
				}
			}()

			// Create use cases
			gateUC := usecase.NewGate(githubClient, store)
			webhookUC := usecase.NewWebhook(gateUC, watched)
			forecastUC := usecase.NewForecast(metClient, store, metCfg.Latitude, metCfg.Longitude, metCfg.Interval)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				forecastUC,
				store,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start forecast poller
			pollCtx, stopPoller := context.WithCancel(ctx)
			defer stopPoller()
			go poller.New(metCfg.Interval, forecastUC.Refresh).Run(pollCtx)

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			stopPoller()

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
