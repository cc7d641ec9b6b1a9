package main

import (
	"context"
	"fmt"
	"log/slog"

	"withdraw_bot/internal/config"
	"withdraw_bot/internal/engine"
	"withdraw_bot/internal/ledger"
	"withdraw_bot/internal/processor"
	"withdraw_bot/internal/repository/memory"
	"withdraw_bot/internal/service"
	"withdraw_bot/pkg/metrics"
)

// app holds the core shared by every transport.
type app struct {
	cfg           *config.Config
	logger        *slog.Logger
	ledger        *ledger.AccountLedger
	repo          *memory.WithdrawalRepository
	metrics       *metrics.MetricsCollector
	notifications *service.NotificationService
	processor     *processor.WithdrawalProcessor
	engine        *engine.ConversationEngine
}

func wireApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	metricsCollector := metrics.NewMetricsCollector(logger)
	accountLedger := ledger.NewAccountLedger(ledger.DefaultBalanceSource(), logger)
	repo := memory.NewWithdrawalRepository()
	notifications := service.NewNotificationService(service.NewLogNotifier(logger), cfg.NotificationWorkers, logger)
	withdrawals := processor.NewWithdrawalProcessor(accountLedger, repo, notifications, metricsCollector, logger)
	conversations := engine.NewConversationEngine(accountLedger, withdrawals, engine.Config{
		SessionTTL:    cfg.SessionTTL,
		SweepInterval: cfg.SessionSweepInterval,
	}, metricsCollector, logger)

	a := &app{
		cfg:           cfg,
		logger:        logger,
		ledger:        accountLedger,
		repo:          repo,
		metrics:       metricsCollector,
		notifications: notifications,
		processor:     withdrawals,
		engine:        conversations,
	}

	if cfg.PreConnect() {
		if err := accountLedger.Connect(ctx, cfg.APIKey, cfg.APISecret); err != nil {
			_ = notifications.Shutdown(ctx)
			return nil, fmt.Errorf("connect ledger from environment: %w", err)
		}
		for asset, balance := range accountLedger.Balances() {
			value, _ := balance.Float64()
			metricsCollector.UpdateBalance(string(asset), value)
		}
	}

	return a, nil
}

func (a *app) shutdown(ctx context.Context) {
	if err := a.notifications.Shutdown(ctx); err != nil {
		a.logger.Error("Notification service shutdown failed", slog.String("error", err.Error()))
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		a.logger.Error("Metrics collector shutdown failed", slog.String("error", err.Error()))
	}
}
