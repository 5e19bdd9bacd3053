package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	ProcessTurn(ctx context.Context, sessionID, userInput string) (string, error)
}

// tuiSessionID keys the single conversation owned by the terminal UI.
const tuiSessionID = "tui"

type transcriptLine struct {
	speaker string
	text    string
}

// answerMsg carries the result of an asynchronous turn back into Update.
type answerMsg struct {
	answer string
	err    error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service  ChatPort
	input    textinput.Model
	viewport viewport.Model
	lines    []transcriptLine
	status   string
	ready    bool
	waiting  bool
}

// New creates a new TUI model instance.
func New(service ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, status: "Ready. Type a message; \"exit\" quits."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if text == "exit" {
				return m, tea.Quit
			}
			m.input.Reset()
			m.lines = append(m.lines, transcriptLine{speaker: "you", text: text})
			m.status = "Thinking..."
			m.waiting = true
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.askCmd(text)
		}
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Ready."
			m.lines = append(m.lines, transcriptLine{speaker: "docchat", text: msg.answer})
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the turn off the UI goroutine.
func (m Model) askCmd(text string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		answer, err := service.ProcessTurn(context.Background(), tuiSessionID, text)
		return answerMsg{answer: answer, err: err}
	}
}

// View renders the TUI layout and conversation transcript.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docchat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.lines) == 0 {
		return "No messages yet. Ask something about your documents."
	}
	parts := make([]string, len(m.lines))
	for i, line := range m.lines {
		label := userLabelStyle.Render(line.speaker + ":")
		if line.speaker != "you" {
			label = botLabelStyle.Render(line.speaker + ":")
		}
		parts[i] = label + " " + line.text
	}
	return strings.Join(parts, "\n\n")
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userLabelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	botLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
