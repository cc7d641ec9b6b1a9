package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalFailed    WithdrawalStatus = "failed"
)

// Receipt is what the ledger returns for an executed withdrawal.
type Receipt struct {
	TxID      string          `json:"tx_id"`
	Asset     AssetSymbol     `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
	Address   string          `json:"address"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Withdrawal is the history record of one attempt at the final step.
type Withdrawal struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Asset       AssetSymbol      `json:"asset"`
	Amount      decimal.Decimal  `json:"amount"`
	Address     string           `json:"address"`
	TxID        string           `json:"tx_id,omitempty"`
	Remaining   decimal.Decimal  `json:"remaining"`
	Status      WithdrawalStatus `json:"status"`
	FailureCode string           `json:"failure_code,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewWithdrawal(userID string, asset AssetSymbol, amount decimal.Decimal, address string) *Withdrawal {
	return &Withdrawal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Asset:     asset,
		Amount:    amount,
		Address:   address,
		CreatedAt: time.Now(),
	}
}

func (w *Withdrawal) Complete(r *Receipt) *Withdrawal {
	w.Status = WithdrawalCompleted
	w.TxID = r.TxID
	w.Remaining = r.Remaining
	return w
}

func (w *Withdrawal) Fail(err error) *Withdrawal {
	w.Status = WithdrawalFailed
	w.FailureCode = ErrorCode(err)
	return w
}

// MaskedAddress keeps the first n characters, enough for a user to recognise
// the destination.
func MaskedAddress(address string, n int) string {
	runes := []rune(address)
	if len(runes) <= n {
		return address
	}
	return string(runes[:n]) + "..."
}
