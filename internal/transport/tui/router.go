package tui

import (
	"strings"

	"withdraw_bot/internal/domain"
)

const commandPrefix = "/"

// ParseInput turns a line typed in the terminal into an engine event. Slash
// commands press buttons; everything else is free text for the current step.
func ParseInput(line string) domain.Event {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, commandPrefix) || len(trimmed) == 1 {
		return domain.TextInput(line)
	}

	command := strings.ToLower(strings.Fields(trimmed[len(commandPrefix):])[0])
	switch command {
	case domain.ActionStart, domain.ActionConnect, domain.ActionWithdraw, domain.ActionBalance, domain.ActionBack:
		return domain.ButtonEvent(command)
	}

	if asset := domain.ParseAsset(command); asset.IsSupported() {
		return domain.ButtonEvent(domain.WithdrawAssetAction(asset))
	}
	return domain.ButtonEvent(command)
}

// CommandFor is the slash command that presses b.
func CommandFor(b domain.Button) string {
	ev := domain.ButtonEvent(b.Data)
	if asset, ok := ev.WithdrawAsset(); ok {
		return commandPrefix + strings.ToLower(string(asset))
	}
	return commandPrefix + b.Data
}
