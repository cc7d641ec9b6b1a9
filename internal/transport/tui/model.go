// Package tui is a terminal chat front end for the conversation engine. It
// plays the role a messaging platform plays in production: one local user,
// buttons rendered as slash commands.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"withdraw_bot/internal/domain"
)

const maxTranscript = 200

type Conversation interface {
	HandleEvent(ctx context.Context, userID string, ev domain.Event) domain.OutboundMessage
}

type entry struct {
	fromUser bool
	kind     domain.MessageKind
	text     string
}

// replyMsg carries the engine's answer back into the update loop.
type replyMsg struct {
	reply domain.OutboundMessage
}

type Model struct {
	ctx          context.Context
	conversation Conversation
	userID       string
	input        textinput.Model
	transcript   []entry
	buttons      []domain.Button
	width        int
	quitting     bool
}

func NewModel(ctx context.Context, conversation Conversation, userID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message or /start"
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	return Model{
		ctx:          ctx,
		conversation: conversation,
		userID:       userID,
		input:        ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.send(domain.ButtonEvent(domain.ActionStart)))
}

func (m Model) send(ev domain.Event) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{reply: m.conversation.HandleEvent(m.ctx, m.userID, ev)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			m.appendEntry(entry{fromUser: true, text: line})
			return m, m.send(ParseInput(line))
		}

	case replyMsg:
		m.appendEntry(entry{kind: msg.reply.Kind, text: msg.reply.Text})
		m.buttons = msg.reply.Buttons
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) appendEntry(e entry) {
	m.transcript = append(m.transcript, e)
	if len(m.transcript) > maxTranscript {
		m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
	}
}

func (m Model) View() string {
	if m.quitting {
		return mutedStyle.Render("Bye.") + "\n"
	}

	var b strings.Builder
	for _, e := range m.transcript {
		b.WriteString(renderEntry(e))
		b.WriteString("\n\n")
	}

	if len(m.buttons) > 0 {
		commands := make([]string, 0, len(m.buttons))
		for _, btn := range m.buttons {
			commands = append(commands, buttonStyle.Render(CommandFor(btn))+" "+mutedStyle.Render(btn.Label))
		}
		b.WriteString(strings.Join(commands, "   "))
		b.WriteString("\n")
	}

	b.WriteString(inputBorder.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter to send, esc to quit"))
	return b.String()
}

func renderEntry(e entry) string {
	if e.fromUser {
		return userStyle.Render("you: ") + e.text
	}
	if e.kind == domain.ShowError {
		return messageBlock.Render(errorStyle.Render(e.text))
	}
	return messageBlock.Render(botStyle.Render(e.text))
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, conversation Conversation, userID string) error {
	p := tea.NewProgram(NewModel(ctx, conversation, userID), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
