package validator

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"withdraw_bot/internal/domain"
)

func TestWithdrawalValidator_ParseAmount_Valid(t *testing.T) {
	v := NewWithdrawalValidator()

	cases := map[string]string{
		"0.3":        "0.3",
		" 1.25 ":     "1.25",
		"3":          "3",
		"0.00000001": "0.00000001",
		"1e-2":       "0.01",
	}
	for input, want := range cases {
		got, err := v.ParseAmount(input)
		require.NoError(t, err, "input %q", input)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "input %q: got %s", input, got)
	}
}

func TestWithdrawalValidator_ParseAmount_InvalidNumber(t *testing.T) {
	v := NewWithdrawalValidator()

	for _, input := range []string{"", "abc", "1,5", "0.1.2", "one", "   "} {
		_, err := v.ParseAmount(input)
		assert.ErrorIs(t, err, domain.ErrInvalidNumber, "input %q", input)
	}
}

func TestWithdrawalValidator_ParseAmount_ExponentOutOfRange(t *testing.T) {
	v := NewWithdrawalValidator()

	inputs := []string{
		"1e-300000000",
		"1e-2147483648",
		"1e2147483647",
		"0.0000000000000000001",
		"1e19",
		strings.Repeat("9", maxAmountLength+1),
	}
	for _, input := range inputs {
		_, err := v.ParseAmount(input)
		assert.ErrorIs(t, err, domain.ErrInvalidNumber, "input %q", input)
	}

	amount, err := v.ParseAmount("1e-18")
	require.NoError(t, err)
	assert.NoError(t, v.CheckAvailable(amount, decimal.RequireFromString("0.5"), domain.AssetBTC))
}

func TestWithdrawalValidator_ParseAmount_NonPositive(t *testing.T) {
	v := NewWithdrawalValidator()

	for _, input := range []string{"0", "-0", "0.000", "-1", "-0.00000001", "-1e-300000000", "0e-300000000"} {
		_, err := v.ParseAmount(input)
		assert.ErrorIs(t, err, domain.ErrNonPositiveAmount, "input %q", input)
	}
}

func TestWithdrawalValidator_CheckAvailable(t *testing.T) {
	v := NewWithdrawalValidator()
	available := decimal.RequireFromString("0.5")

	assert.NoError(t, v.CheckAvailable(decimal.RequireFromString("0.5"), available, domain.AssetBTC))
	assert.NoError(t, v.CheckAvailable(decimal.RequireFromString("0.1"), available, domain.AssetBTC))
	assert.ErrorIs(t, v.CheckAvailable(decimal.RequireFromString("0.5000000001"), available, domain.AssetBTC),
		domain.ErrInsufficientBalance)
}

func TestWithdrawalValidator_ValidateAddress(t *testing.T) {
	v := NewWithdrawalValidator()

	address, err := v.ValidateAddress("  " + strings.Repeat("x", 26) + "\n")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 26), address)

	_, err = v.ValidateAddress(strings.Repeat("x", 25))
	assert.ErrorIs(t, err, domain.ErrInvalidAddressFormat)

	_, err = v.ValidateAddress("   " + strings.Repeat("x", 10) + "                ")
	assert.ErrorIs(t, err, domain.ErrInvalidAddressFormat)
}

func TestWithdrawalValidator_ValidateCredential(t *testing.T) {
	v := NewWithdrawalValidator()

	key, err := v.ValidateCredential(" demo_key ")
	require.NoError(t, err)
	assert.Equal(t, "demo_key", key)

	_, err = v.ValidateCredential(" \t ")
	assert.ErrorIs(t, err, ErrEmptyCredential)
}
