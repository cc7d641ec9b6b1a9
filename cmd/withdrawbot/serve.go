package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"withdraw_bot/internal/api"
	"withdraw_bot/internal/config"
	"withdraw_bot/pkg/crypto"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook transport, metrics server and session sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("http-addr", "", "webhook listen address")
	cmd.Flags().String("metrics-addr", "", "metrics listen address")
	mustBind(opts.v, config.KeyHTTPAddr, cmd.Flags().Lookup("http-addr"))
	mustBind(opts.v, config.KeyMetricsAddr, cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := setupLogger(cfg, os.Stdout)
	logger.Info("Starting application", slog.String("name", appName))

	a, err := wireApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	signer := crypto.NewSigner(cfg.WebhookSecret, logger)
	if !signer.Enabled() {
		logger.Warn("Webhook signature verification disabled")
	}
	apiHandler := api.NewAPIHandler(a.engine, a.ledger, a.processor, signer, logger)

	metricsServer := a.metrics.StartMetricsServer(cfg.MetricsAddr)
	httpServer := newHTTPServer(cfg.HTTPAddr, apiHandler)

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		if err := a.engine.Run(ctx); err != nil {
			logger.Error("Session sweeper stopped", slog.String("error", err.Error()))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-serverErr:
		logger.Error("HTTP server failed", slog.String("error", err.Error()))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}
	<-sweeperDone
	a.shutdown(shutdownCtx)

	logger.Info("Application shutdown complete")
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func newHTTPServer(addr string, apiHandler *api.APIHandler) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
