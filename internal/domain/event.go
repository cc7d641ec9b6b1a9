package domain

import "strings"

type EventKind string

const (
	EventButton EventKind = "button"
	EventText   EventKind = "text"
)

const (
	ActionStart    = "start"
	ActionConnect  = "connect"
	ActionWithdraw = "withdraw"
	ActionBalance  = "balance"
	ActionBack     = "back"

	withdrawAssetPrefix = "withdraw:"
)

// Event is a user input already demultiplexed by the transport.
type Event struct {
	Kind EventKind `json:"type"`
	Data string    `json:"data"`
}

func ButtonEvent(data string) Event {
	return Event{Kind: EventButton, Data: data}
}

func TextInput(text string) Event {
	return Event{Kind: EventText, Data: text}
}

func WithdrawAssetAction(asset AssetSymbol) string {
	return withdrawAssetPrefix + strings.ToLower(string(asset))
}

// WithdrawAsset reports the asset carried by a "withdraw:<asset>" button.
func (e Event) WithdrawAsset() (AssetSymbol, bool) {
	if e.Kind != EventButton || !strings.HasPrefix(e.Data, withdrawAssetPrefix) {
		return "", false
	}
	return ParseAsset(strings.TrimPrefix(e.Data, withdrawAssetPrefix)), true
}

type MessageKind string

const (
	ShowMenu  MessageKind = "show_menu"
	ShowText  MessageKind = "show_text"
	ShowError MessageKind = "show_error"
)

type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// OutboundMessage is what the engine asks the transport to render. Buttons is
// a suggested keyboard, one button per row.
type OutboundMessage struct {
	Kind    MessageKind `json:"kind"`
	Text    string      `json:"text"`
	Code    string      `json:"code,omitempty"`
	Buttons []Button    `json:"buttons,omitempty"`
}

func MainMenuButtons() []Button {
	return []Button{
		{Label: "Connect API", Data: ActionConnect},
		{Label: "Withdraw", Data: ActionWithdraw},
		{Label: "Check Balance", Data: ActionBalance},
	}
}

func AssetMenuButtons() []Button {
	buttons := make([]Button, 0, len(SupportedAssets)+1)
	for _, asset := range SupportedAssets {
		buttons = append(buttons, Button{Label: string(asset), Data: WithdrawAssetAction(asset)})
	}
	return append(buttons, Button{Label: "Back", Data: ActionBack})
}

func MenuMessage(text string) OutboundMessage {
	return OutboundMessage{Kind: ShowMenu, Text: text, Buttons: MainMenuButtons()}
}

func TextMessage(text string) OutboundMessage {
	return OutboundMessage{Kind: ShowText, Text: text}
}

func ErrorMessage(err error, text string) OutboundMessage {
	return OutboundMessage{Kind: ShowError, Text: text, Code: ErrorCode(err)}
}

func (m OutboundMessage) WithButtons(buttons []Button) OutboundMessage {
	m.Buttons = buttons
	return m
}
