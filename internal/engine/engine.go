// Package engine drives the per-user conversation: credential entry, asset
// selection, amount entry and destination address entry.
//
// Every user gets one session. Transitions for the same user never
// interleave; different users are handled concurrently. The engine does no
// I/O of its own, so HandleEvent completes synchronously.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
	"withdraw_bot/pkg/validator"
)

type Ledger interface {
	Connect(ctx context.Context, key, secret string) error
	IsConnected() bool
	Balances() map[domain.AssetSymbol]decimal.Decimal
	Balance(asset domain.AssetSymbol) (decimal.Decimal, error)
}

// Withdrawer executes the final step of the withdraw flow.
type Withdrawer interface {
	ProcessWithdrawal(ctx context.Context, userID string, asset domain.AssetSymbol, amount decimal.Decimal, address string) (*domain.Withdrawal, error)
}

type Metrics interface {
	RecordEvent(event, reply string, duration time.Duration)
	UpdateBalance(asset string, balance float64)
	SetActiveSessions(n int)
	RecordExpiredSessions(n int)
}

type Config struct {
	// SessionTTL is how long an untouched session is kept. Zero keeps
	// sessions forever.
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

type ConversationEngine struct {
	ledger     Ledger
	withdrawer Withdrawer
	validator  *validator.WithdrawalValidator
	sessions   *sessionStore
	cfg        Config
	metrics    Metrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewConversationEngine(
	ledger Ledger,
	withdrawer Withdrawer,
	cfg Config,
	metrics Metrics,
	logger *slog.Logger,
) *ConversationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	return &ConversationEngine{
		ledger:     ledger,
		withdrawer: withdrawer,
		validator:  validator.NewWithdrawalValidator(),
		sessions:   newSessionStore(),
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleEvent applies one user event to the user's session and returns the
// reply for the transport to render.
func (e *ConversationEngine) HandleEvent(ctx context.Context, userID string, ev domain.Event) domain.OutboundMessage {
	startTime := time.Now()

	entry := e.sessions.acquire(userID)
	defer e.sessions.release(entry)

	from := entry.session.State
	msg := e.transition(ctx, entry.session, ev)
	entry.session.UpdatedAt = e.now()

	e.logger.DebugContext(ctx, "Event handled",
		slog.String("user_id", userID),
		slog.String("event", string(ev.Kind)),
		slog.String("from", from.String()),
		slog.String("to", entry.session.State.String()),
		slog.String("reply", string(msg.Kind)))

	if e.metrics != nil {
		e.metrics.RecordEvent(string(ev.Kind), string(msg.Kind), time.Since(startTime))
		e.metrics.SetActiveSessions(e.sessions.len())
	}

	return msg
}

// Session returns a copy of the user's session.
func (e *ConversationEngine) Session(userID string) (domain.Session, bool) {
	return e.sessions.get(userID)
}

func (e *ConversationEngine) ExpireSessions(now time.Time) int {
	if e.cfg.SessionTTL <= 0 {
		return 0
	}

	expired := e.sessions.expire(now.Add(-e.cfg.SessionTTL))
	if expired > 0 {
		e.logger.Info("Expired idle sessions", slog.Int("count", expired))
	}

	if e.metrics != nil {
		e.metrics.RecordExpiredSessions(expired)
		e.metrics.SetActiveSessions(e.sessions.len())
	}
	return expired
}

// Run sweeps idle sessions until ctx is done.
func (e *ConversationEngine) Run(ctx context.Context) error {
	if e.cfg.SessionTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.ExpireSessions(e.now())
		case <-ctx.Done():
			return nil
		}
	}
}

func (e *ConversationEngine) recordBalances(balances map[domain.AssetSymbol]decimal.Decimal) {
	if e.metrics == nil {
		return
	}
	for asset, amount := range balances {
		value, _ := amount.Float64()
		e.metrics.UpdateBalance(string(asset), value)
	}
}
