package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
)

// BalanceSource fetches the balances of an exchange account once credentials
// are accepted.
type BalanceSource interface {
	FetchBalances(ctx context.Context, key, secret string) (map[domain.AssetSymbol]decimal.Decimal, error)
}

// StaticBalanceSource stands in for the exchange: every account starts with
// the same balances.
type StaticBalanceSource struct {
	balances map[domain.AssetSymbol]decimal.Decimal
}

func NewStaticBalanceSource(balances map[domain.AssetSymbol]decimal.Decimal) *StaticBalanceSource {
	return &StaticBalanceSource{balances: balances}
}

func DefaultBalanceSource() *StaticBalanceSource {
	return NewStaticBalanceSource(map[domain.AssetSymbol]decimal.Decimal{
		domain.AssetBTC: decimal.RequireFromString("0.5"),
		domain.AssetETH: decimal.RequireFromString("3.2"),
	})
}

func (s *StaticBalanceSource) FetchBalances(ctx context.Context, key, secret string) (map[domain.AssetSymbol]decimal.Decimal, error) {
	out := make(map[domain.AssetSymbol]decimal.Decimal, len(s.balances))
	for asset, amount := range s.balances {
		out[asset] = amount
	}
	return out, nil
}
