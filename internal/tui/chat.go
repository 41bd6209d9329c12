package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LineMsg is one rendered chat line pushed into the view.
type LineMsg string

// DisconnectedMsg signals that the relay connection ended.
type DisconnectedMsg struct{}

// ChatModel is the bubbletea model for the room chat view. Outbound text
// goes through the send callback; inbound lines arrive on the events
// channel, already formatted by the caller. The model does not echo sent
// messages locally: the relay broadcasts chat back to the sender, so the
// sender's own lines come in like everyone else's.
type ChatModel struct {
	room   string
	events <-chan string
	send   func(text string) error

	viewport viewport.Model
	input    textinput.Model
	lines    []string
	ready    bool
	width    int
	height   int
}

// NewChat creates the chat view for a room.
func NewChat(room string, events <-chan string, send func(string) error) ChatModel {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 512
	input.Focus()

	return ChatModel{
		room:   room,
		events: events,
		send:   send,
		input:  input,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForLine(m.events))
}

// waitForLine blocks on the events channel and resolves to the next line.
func waitForLine(events <-chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-events
		if !ok {
			return DisconnectedMsg{}
		}
		return LineMsg(line)
	}
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - 4
		if contentHeight < 1 {
			contentHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentHeight
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case LineMsg:
		m.lines = append(m.lines, string(msg))
		m.refresh()
		return m, waitForLine(m.events)

	case DisconnectedMsg:
		m.lines = append(m.lines, SystemStyle.Render("* disconnected from server"))
		m.refresh()
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			if err := m.send(text); err != nil {
				m.lines = append(m.lines, ErrorStyle.Render("! send failed: "+err.Error()))
				m.refresh()
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m ChatModel) View() string {
	if !m.ready {
		return SystemStyle.Render("connecting...")
	}

	title := TitleStyle.Render("room: " + m.room)
	footer := MutedStyle.Render("enter to send · esc to leave")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		m.input.View(),
		footer,
	)
}
