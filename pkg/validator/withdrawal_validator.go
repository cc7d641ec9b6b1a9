package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
)

// MinAddressLength is a plausibility floor, not a real address check.
const MinAddressLength = 26

const (
	// MaxAmountScale bounds the exponent of a parsed amount in both
	// directions. Comparing decimals rescales them, so an unbounded exponent
	// costs unbounded memory.
	MaxAmountScale  = 18
	maxAmountLength = 64
)

var ErrEmptyCredential = errors.New("credential must not be empty")

type WithdrawalValidator struct {
	minAddressLength int
}

func NewWithdrawalValidator() *WithdrawalValidator {
	return &WithdrawalValidator{minAddressLength: MinAddressLength}
}

// ParseAmount parses a user-typed amount with exact decimal semantics.
func (v *WithdrawalValidator) ParseAmount(text string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("%w: %d characters", domain.ErrInvalidNumber, len(trimmed))
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidNumber, text)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrNonPositiveAmount, trimmed)
	}
	if exp := amount.Exponent(); exp < -MaxAmountScale || exp > MaxAmountScale {
		return decimal.Zero, fmt.Errorf("%w: exponent %d out of range", domain.ErrInvalidNumber, exp)
	}
	return amount, nil
}

// CheckAvailable rejects amounts above the available balance. Equal is allowed.
func (v *WithdrawalValidator) CheckAvailable(amount, available decimal.Decimal, asset domain.AssetSymbol) error {
	if amount.GreaterThan(available) {
		return fmt.Errorf("%w: available %s %s, requested %s", domain.ErrInsufficientBalance, available, asset, amount)
	}
	return nil
}

// ValidateAddress returns the trimmed address.
func (v *WithdrawalValidator) ValidateAddress(text string) (string, error) {
	address := strings.TrimSpace(text)
	if utf8.RuneCountInString(address) < v.minAddressLength {
		return "", fmt.Errorf("%w: %d characters, need at least %d",
			domain.ErrInvalidAddressFormat, utf8.RuneCountInString(address), v.minAddressLength)
	}
	return address, nil
}

func (v *WithdrawalValidator) ValidateCredential(text string) (string, error) {
	credential := strings.TrimSpace(text)
	if credential == "" {
		return "", ErrEmptyCredential
	}
	return credential, nil
}
