package engine

import (
	"context"
	"errors"
	"log/slog"

	"withdraw_bot/internal/domain"
)

// transition is the whole state machine. Buttons are menu selections and are
// honoured in any state; text is interpreted by the current state.
func (e *ConversationEngine) transition(ctx context.Context, s *domain.Session, ev domain.Event) domain.OutboundMessage {
	switch ev.Kind {
	case domain.EventButton:
		return e.onButton(ctx, s, ev)
	case domain.EventText:
		return e.onText(ctx, s, ev.Data)
	default:
		return domain.ErrorMessage(domain.ErrUnknownAction, unknownActionText)
	}
}

func (e *ConversationEngine) onButton(ctx context.Context, s *domain.Session, ev domain.Event) domain.OutboundMessage {
	if asset, ok := ev.WithdrawAsset(); ok {
		return e.selectAsset(s, asset)
	}

	switch ev.Data {
	case domain.ActionStart:
		s.Reset()
		return domain.MenuMessage(welcomeText)
	case domain.ActionConnect:
		return e.startConnect(s)
	case domain.ActionWithdraw:
		return e.startWithdraw(s)
	case domain.ActionBalance:
		return e.showBalances()
	case domain.ActionBack:
		s.Reset()
		return domain.MenuMessage(mainMenuText)
	default:
		e.logger.DebugContext(ctx, "Unknown button", slog.String("data", ev.Data))
		return withMainMenu(domain.ErrorMessage(domain.ErrUnknownAction, unknownActionText))
	}
}

func (e *ConversationEngine) onText(ctx context.Context, s *domain.Session, text string) domain.OutboundMessage {
	switch s.State {
	case domain.StateAwaitingAPIKey:
		return e.acceptAPIKey(s, text)
	case domain.StateAwaitingAPISecret:
		return e.acceptAPISecret(ctx, s, text)
	case domain.StateAwaitingAssetChoice:
		return domain.MenuMessage(chooseAssetText).WithButtons(domain.AssetMenuButtons())
	case domain.StateAwaitingAmount:
		return e.acceptAmount(s, text)
	case domain.StateAwaitingAddress:
		return e.acceptAddress(ctx, s, text)
	default:
		return domain.MenuMessage(idleHintText)
	}
}

func (e *ConversationEngine) startConnect(s *domain.Session) domain.OutboundMessage {
	s.Reset()
	if e.ledger.IsConnected() {
		return domain.MenuMessage(alreadyConnectedText(e.ledger.Balances()))
	}

	s.AwaitAPIKey()
	return domain.TextMessage(apiKeyPromptText)
}

func (e *ConversationEngine) acceptAPIKey(s *domain.Session, text string) domain.OutboundMessage {
	key, err := e.validator.ValidateCredential(text)
	if err != nil {
		return domain.TextMessage(apiKeyPromptText)
	}

	s.AwaitAPISecret(key)
	return domain.TextMessage(apiSecretPromptText)
}

func (e *ConversationEngine) acceptAPISecret(ctx context.Context, s *domain.Session, text string) domain.OutboundMessage {
	key := s.PendingAPIKey
	s.Reset()

	wasConnected := e.ledger.IsConnected()
	if err := e.ledger.Connect(ctx, key, text); err != nil {
		e.logger.WarnContext(ctx, "API connection failed",
			slog.String("user_id", s.UserID),
			slog.String("error", err.Error()))
		return withMainMenu(domain.ErrorMessage(err, connectionFailedText))
	}

	balances := e.ledger.Balances()
	if wasConnected {
		return domain.MenuMessage(alreadyConnectedText(balances))
	}
	e.recordBalances(balances)
	e.logger.InfoContext(ctx, "API connected", slog.String("user_id", s.UserID))

	return domain.MenuMessage(connectedText(balances))
}

func (e *ConversationEngine) startWithdraw(s *domain.Session) domain.OutboundMessage {
	s.Reset()
	if !e.ledger.IsConnected() {
		return notConnectedMessage(connectFirstText)
	}

	s.AwaitAssetChoice()
	return domain.MenuMessage(withdrawMenuText(e.ledger.Balances())).WithButtons(domain.AssetMenuButtons())
}

func (e *ConversationEngine) selectAsset(s *domain.Session, asset domain.AssetSymbol) domain.OutboundMessage {
	s.Reset()
	if !e.ledger.IsConnected() {
		return notConnectedMessage(connectFirstText)
	}
	if !asset.IsSupported() {
		return withMainMenu(domain.ErrorMessage(domain.ErrUnsupportedAsset, unsupportedAssetText(asset)))
	}

	available, err := e.ledger.Balance(asset)
	if err != nil {
		return withMainMenu(domain.ErrorMessage(err, withdrawalFailedText(err)))
	}

	s.AwaitAmount(asset)
	return domain.TextMessage(amountPromptText(asset, available))
}

// acceptAmount leaves the session untouched on every rejection so the user
// can simply retry.
func (e *ConversationEngine) acceptAmount(s *domain.Session, text string) domain.OutboundMessage {
	amount, err := e.validator.ParseAmount(text)
	if err != nil {
		if errors.Is(err, domain.ErrNonPositiveAmount) {
			return domain.ErrorMessage(err, nonPositiveAmountText)
		}
		return domain.ErrorMessage(err, invalidNumberText)
	}

	available, err := e.ledger.Balance(s.SelectedAsset)
	if err != nil {
		s.Reset()
		return withMainMenu(domain.ErrorMessage(err, withdrawalFailedText(err)))
	}
	if err := e.validator.CheckAvailable(amount, available, s.SelectedAsset); err != nil {
		return domain.ErrorMessage(err, insufficientBalanceText(s.SelectedAsset, available, amount))
	}

	s.AwaitAddress(amount)
	return domain.TextMessage(addressPromptText(s.SelectedAsset, amount))
}

func (e *ConversationEngine) acceptAddress(ctx context.Context, s *domain.Session, text string) domain.OutboundMessage {
	address, err := e.validator.ValidateAddress(text)
	if err != nil {
		return domain.ErrorMessage(err, invalidAddressText)
	}
	if s.SelectedAsset == "" || !s.PendingAmount.Valid {
		panic("engine: awaiting address without a selected asset and amount")
	}

	asset, amount := s.SelectedAsset, s.PendingAmount.Decimal
	s.Reset()

	w, err := e.withdrawer.ProcessWithdrawal(ctx, s.UserID, asset, amount, address)
	if err != nil {
		return withMainMenu(domain.ErrorMessage(err, withdrawalFailedText(err)))
	}

	return domain.MenuMessage(withdrawalSucceededText(w))
}

func (e *ConversationEngine) showBalances() domain.OutboundMessage {
	if !e.ledger.IsConnected() {
		return notConnectedMessage(notConnectedBalanceText)
	}

	balances := e.ledger.Balances()
	if len(balances) == 0 {
		return domain.MenuMessage(noBalancesText)
	}
	return domain.MenuMessage(balancesText(balances))
}

func notConnectedMessage(text string) domain.OutboundMessage {
	return withMainMenu(domain.ErrorMessage(domain.ErrNotConnected, text))
}

func withMainMenu(msg domain.OutboundMessage) domain.OutboundMessage {
	return msg.WithButtons(domain.MainMenuButtons())
}
