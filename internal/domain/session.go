package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingAPIKey
	StateAwaitingAPISecret
	StateAwaitingAssetChoice
	StateAwaitingAmount
	StateAwaitingAddress
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAPIKey:
		return "awaiting_api_key"
	case StateAwaitingAPISecret:
		return "awaiting_api_secret"
	case StateAwaitingAssetChoice:
		return "awaiting_asset_choice"
	case StateAwaitingAmount:
		return "awaiting_amount"
	case StateAwaitingAddress:
		return "awaiting_address"
	default:
		return "unknown"
	}
}

// Session is the per-user conversation record. Only the fields the current
// State needs are populated.
type Session struct {
	UserID        string              `json:"user_id"`
	State         SessionState        `json:"state"`
	PendingAPIKey string              `json:"-"`
	SelectedAsset AssetSymbol         `json:"selected_asset,omitempty"`
	PendingAmount decimal.NullDecimal `json:"pending_amount"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewSession(userID string) *Session {
	return &Session{
		UserID:    userID,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
}

func (s *Session) Reset() {
	s.State = StateIdle
	s.PendingAPIKey = ""
	s.SelectedAsset = ""
	s.PendingAmount = decimal.NullDecimal{}
}

func (s *Session) AwaitAPIKey() {
	s.Reset()
	s.State = StateAwaitingAPIKey
}

func (s *Session) AwaitAPISecret(key string) {
	s.Reset()
	s.State = StateAwaitingAPISecret
	s.PendingAPIKey = key
}

func (s *Session) AwaitAssetChoice() {
	s.Reset()
	s.State = StateAwaitingAssetChoice
}

func (s *Session) AwaitAmount(asset AssetSymbol) {
	s.Reset()
	s.State = StateAwaitingAmount
	s.SelectedAsset = asset
}

func (s *Session) AwaitAddress(amount decimal.Decimal) {
	asset := s.SelectedAsset
	s.Reset()
	s.State = StateAwaitingAddress
	s.SelectedAsset = asset
	s.PendingAmount = decimal.NewNullDecimal(amount)
}
