// Package ledger holds the exchange account the bot withdraws from: connection
// state, credentials and per-asset balances.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
)

type credentials struct {
	key    string
	secret string
}

// AccountLedger is safe for concurrent use. A single mutex covers the
// balance check and the mutation in Withdraw.
type AccountLedger struct {
	mu                  sync.RWMutex
	source              BalanceSource
	connected           bool
	creds               credentials
	balances            map[domain.AssetSymbol]decimal.Decimal
	lastWithdrawAddress map[domain.AssetSymbol]string
	logger              *slog.Logger
}

func NewAccountLedger(source BalanceSource, logger *slog.Logger) *AccountLedger {
	if source == nil {
		source = DefaultBalanceSource()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AccountLedger{
		source:              source,
		balances:            make(map[domain.AssetSymbol]decimal.Decimal),
		lastWithdrawAddress: make(map[domain.AssetSymbol]string),
		logger:              logger,
	}
}

// Connect seeds balances from the source once. Connecting an already
// connected ledger succeeds without touching its balances.
func (l *AccountLedger) Connect(ctx context.Context, key, secret string) error {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)
	if key == "" || secret == "" {
		return fmt.Errorf("%w: api key and secret are required", domain.ErrConnectionFailed)
	}

	if l.IsConnected() {
		return nil
	}

	balances, err := l.source.FetchBalances(ctx, key, secret)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnectionFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another caller may have connected while balances were fetched.
	if l.connected {
		return nil
	}
	for asset, amount := range balances {
		if amount.IsNegative() {
			return fmt.Errorf("%w: negative %s balance from source", domain.ErrConnectionFailed, asset)
		}
	}

	l.creds = credentials{key: key, secret: secret}
	l.balances = balances
	l.connected = true

	l.logger.Info("Ledger connected", slog.Int("assets", len(balances)))
	return nil
}

func (l *AccountLedger) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// Balances returns a snapshot; it is empty while the ledger is not connected.
func (l *AccountLedger) Balances() map[domain.AssetSymbol]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[domain.AssetSymbol]decimal.Decimal, len(l.balances))
	if !l.connected {
		return out
	}
	for asset, amount := range l.balances {
		out[asset] = amount
	}
	return out
}

func (l *AccountLedger) Balance(asset domain.AssetSymbol) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.connected {
		return decimal.Zero, domain.ErrNotConnected
	}
	if !asset.IsSupported() {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnsupportedAsset, asset)
	}
	return l.balances[asset], nil
}

func (l *AccountLedger) LastWithdrawAddress(asset domain.AssetSymbol) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	address, ok := l.lastWithdrawAddress[asset]
	return address, ok
}

func (l *AccountLedger) Withdraw(ctx context.Context, asset domain.AssetSymbol, amount decimal.Decimal, address string) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		return nil, domain.ErrNotConnected
	}
	if !asset.IsSupported() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAsset, asset)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNonPositiveAmount, amount)
	}

	available := l.balances[asset]
	if amount.GreaterThan(available) {
		return nil, fmt.Errorf("%w: available %s %s, requested %s", domain.ErrInsufficientBalance, available, asset, amount)
	}

	remaining := available.Sub(amount)
	if remaining.IsNegative() {
		panic(fmt.Sprintf("ledger: %s balance would go negative (%s)", asset, remaining))
	}

	l.lastWithdrawAddress[asset] = address
	l.balances[asset] = remaining

	return &domain.Receipt{
		TxID:      fmt.Sprintf("mock_tx_id_%s_%s", asset, amount),
		Asset:     asset,
		Amount:    amount,
		Address:   address,
		Remaining: remaining,
	}, nil
}
