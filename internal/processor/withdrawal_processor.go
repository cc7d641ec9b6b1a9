package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
	"withdraw_bot/internal/repository"
)

// Ledger is the part of the account ledger that executes withdrawals.
type Ledger interface {
	Withdraw(ctx context.Context, asset domain.AssetSymbol, amount decimal.Decimal, address string) (*domain.Receipt, error)
}

type Notifier interface {
	SendWithdrawalNotification(ctx context.Context, w *domain.Withdrawal) error
}

type Metrics interface {
	RecordWithdrawal(asset, status string)
	UpdateBalance(asset string, balance float64)
}

// WithdrawalProcessor runs the final step of the withdraw flow: it executes
// the withdrawal on the ledger and records the attempt.
type WithdrawalProcessor struct {
	ledger   Ledger
	repo     repository.WithdrawalRepository
	notifier Notifier
	metrics  Metrics
	logger   *slog.Logger
}

func NewWithdrawalProcessor(
	ledger Ledger,
	repo repository.WithdrawalRepository,
	notifier Notifier,
	metrics Metrics,
	logger *slog.Logger,
) *WithdrawalProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	return &WithdrawalProcessor{
		ledger:   ledger,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// ProcessWithdrawal returns the stored record together with the ledger error.
// The record is non-nil whenever the ledger was called.
func (p *WithdrawalProcessor) ProcessWithdrawal(
	ctx context.Context,
	userID string,
	asset domain.AssetSymbol,
	amount decimal.Decimal,
	address string,
) (*domain.Withdrawal, error) {
	w := domain.NewWithdrawal(userID, asset, amount, address)

	p.logger.InfoContext(ctx, "Processing withdrawal",
		slog.String("withdrawal_id", w.ID),
		slog.String("user_id", userID),
		slog.String("asset", string(asset)),
		slog.String("amount", amount.String()))

	receipt, err := p.ledger.Withdraw(ctx, asset, amount, address)
	if err != nil {
		w.Fail(err)
		p.logger.WarnContext(ctx, "Withdrawal rejected",
			slog.String("withdrawal_id", w.ID),
			slog.String("code", w.FailureCode),
			slog.String("error", err.Error()))
	} else {
		w.Complete(receipt)
		p.logger.InfoContext(ctx, "Withdrawal completed successfully",
			slog.String("withdrawal_id", w.ID),
			slog.String("tx_id", receipt.TxID))
	}

	if saveErr := p.repo.Save(ctx, w); saveErr != nil {
		p.logger.ErrorContext(ctx, "Failed to save withdrawal record",
			slog.String("withdrawal_id", w.ID),
			slog.String("error", saveErr.Error()))
	}

	if p.metrics != nil {
		p.metrics.RecordWithdrawal(string(asset), string(w.Status))
		if receipt != nil {
			remaining, _ := receipt.Remaining.Float64()
			p.metrics.UpdateBalance(string(asset), remaining)
		}
	}

	if p.notifier != nil {
		if notifyErr := p.notifier.SendWithdrawalNotification(ctx, w); notifyErr != nil {
			p.logger.WarnContext(ctx, "Withdrawal notification not queued",
				slog.String("withdrawal_id", w.ID),
				slog.String("error", notifyErr.Error()))
		}
	}

	if err != nil {
		return w, fmt.Errorf("withdraw %s %s: %w", amount, asset, err)
	}
	return w, nil
}

func (p *WithdrawalProcessor) GetWithdrawal(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return p.repo.GetByID(ctx, id)
}

func (p *WithdrawalProcessor) ListWithdrawals(ctx context.Context, userID string, limit, offset int) ([]*domain.Withdrawal, error) {
	return p.repo.GetByUserID(ctx, userID, limit, offset)
}
