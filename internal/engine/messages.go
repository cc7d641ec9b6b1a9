package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"withdraw_bot/internal/domain"
)

const (
	welcomeText = `Welcome to Crypto Bot

Features:
• Connect to your exchange API
• Withdraw BTC/ETH to any address
• Check your balances

Available Commands:
/start - Show this menu
/connect - Connect API
/withdraw - Start withdrawal
/balance - Check balances

Security Note: This is a demonstration bot. Never share your real API keys.`

	mainMenuText      = "Main Menu"
	idleHintText      = "Choose an action from the menu."
	unknownActionText = "Unknown action. Please use the menu."

	apiKeyPromptText     = "Step 1/2: Enter your API Key\n\nPlease send your API key in the next message.\nFor demo purposes, you can use 'demo_key'"
	apiSecretPromptText  = "Step 2/2: Enter your API Secret\n\nPlease send your API secret.\nFor demo purposes, you can use 'demo_secret'"
	connectionFailedText = "Connection failed. Please try again with /connect"

	connectFirstText        = "Please connect API first!"
	notConnectedBalanceText = "API not connected. Please connect first."
	noBalancesText          = "No balances found."
	chooseAssetText         = "Select cryptocurrency to withdraw:"

	invalidNumberText     = "Please enter a valid number!"
	nonPositiveAmountText = "Amount must be positive!"
	invalidAddressText    = "Invalid address format!"

	// receiptAddressPrefix is how much of the destination a receipt shows.
	receiptAddressPrefix = 15
)

func formatBalances(balances map[domain.AssetSymbol]decimal.Decimal) string {
	assets := make([]domain.AssetSymbol, 0, len(balances))
	for asset := range balances {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return assetOrder(assets[i]) < assetOrder(assets[j]) ||
			(assetOrder(assets[i]) == assetOrder(assets[j]) && assets[i] < assets[j])
	})

	lines := make([]string, 0, len(assets))
	for _, asset := range assets {
		lines = append(lines, fmt.Sprintf("• %s: %s", asset, balances[asset]))
	}
	return strings.Join(lines, "\n")
}

func assetOrder(asset domain.AssetSymbol) int {
	for i, supported := range domain.SupportedAssets {
		if asset == supported {
			return i
		}
	}
	return len(domain.SupportedAssets)
}

func connectedText(balances map[domain.AssetSymbol]decimal.Decimal) string {
	return fmt.Sprintf("API Connected Successfully!\n\nYour Balances:\n%s\n\nYou can now use withdrawal features.",
		formatBalances(balances))
}

func alreadyConnectedText(balances map[domain.AssetSymbol]decimal.Decimal) string {
	return fmt.Sprintf("API is already connected!\n\nYour balances:\n%s", formatBalances(balances))
}

func balancesText(balances map[domain.AssetSymbol]decimal.Decimal) string {
	return fmt.Sprintf("Your Balances\n\n%s", formatBalances(balances))
}

func withdrawMenuText(balances map[domain.AssetSymbol]decimal.Decimal) string {
	return fmt.Sprintf("Withdrawal Menu\n\nYour Balances:\n%s\n\n%s", formatBalances(balances), chooseAssetText)
}

func unsupportedAssetText(asset domain.AssetSymbol) string {
	return fmt.Sprintf("%q is not supported. Only BTC and ETH can be withdrawn.", string(asset))
}

func amountPromptText(asset domain.AssetSymbol, available decimal.Decimal) string {
	return fmt.Sprintf("Withdraw %s\n\nPlease send the amount of %s you want to withdraw.\nAvailable: %s %s",
		asset, asset, available, asset)
}

func insufficientBalanceText(asset domain.AssetSymbol, available, requested decimal.Decimal) string {
	return fmt.Sprintf("Insufficient balance!\nAvailable: %s %s\nRequested: %s %s", available, asset, requested, asset)
}

func addressPromptText(asset domain.AssetSymbol, amount decimal.Decimal) string {
	return fmt.Sprintf("Step 2/2: Enter %s Address\n\nPlease send the destination wallet address for %s %s",
		asset, amount, asset)
}

func withdrawalSucceededText(w *domain.Withdrawal) string {
	return fmt.Sprintf("Withdrawal Successful!\n\nDetails:\n• Amount: %s %s\n• To: %s\n• TXID: %s\n\nRemaining Balance:\n• %s: %s",
		w.Amount, w.Asset, domain.MaskedAddress(w.Address, receiptAddressPrefix), w.TxID, w.Asset, w.Remaining)
}

func withdrawalFailedText(err error) string {
	return fmt.Sprintf("Withdrawal failed!\n\nError: %s", failureReason(err))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		return "API not connected"
	case errors.Is(err, domain.ErrUnsupportedAsset):
		return "Only BTC and ETH supported"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "Insufficient balance"
	case errors.Is(err, domain.ErrNonPositiveAmount):
		return "Amount must be positive"
	default:
		return "Unexpected error"
	}
}
