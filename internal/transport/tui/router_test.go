package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"withdraw_bot/internal/domain"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		line string
		want domain.Event
	}{
		{"/start", domain.ButtonEvent(domain.ActionStart)},
		{"  /Connect ", domain.ButtonEvent(domain.ActionConnect)},
		{"/withdraw", domain.ButtonEvent(domain.ActionWithdraw)},
		{"/balance now", domain.ButtonEvent(domain.ActionBalance)},
		{"/back", domain.ButtonEvent(domain.ActionBack)},
		{"/btc", domain.ButtonEvent("withdraw:btc")},
		{"/ETH", domain.ButtonEvent("withdraw:eth")},
		{"/doge", domain.ButtonEvent("doge")},
		{"/", domain.TextInput("/")},
		{"0.3", domain.TextInput("0.3")},
		{" demo_key ", domain.TextInput(" demo_key ")},
		{"", domain.TextInput("")},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInput(tt.line))
		})
	}
}

func TestCommandFor_RoundTrips(t *testing.T) {
	buttons := append(domain.MainMenuButtons(), domain.AssetMenuButtons()...)

	for _, b := range buttons {
		assert.Equal(t, domain.ButtonEvent(b.Data), ParseInput(CommandFor(b)), b.Label)
	}
	assert.Equal(t, "/btc", CommandFor(domain.Button{Label: "BTC", Data: "withdraw:btc"}))
}
