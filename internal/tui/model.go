package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Asker is the TUI-facing subset of the API client.
type Asker interface {
	Ask(ctx context.Context, query, language string, topK int) (*AskResponse, error)
}

type entry struct {
	query string
	resp  *AskResponse
	err   error
}

type answerMsg struct {
	query string
	resp  *AskResponse
	err   error
}

// Model is the Bubble Tea model for the interactive chat client.
type Model struct {
	client   Asker
	language string
	topK     int
	input    textinput.Model
	viewport viewport.Model
	history  []entry
	status   string
	waiting  bool
	ready    bool
}

// New creates a chat model. language may be "en", "hi", "mr" or "auto".
func New(client Asker, language string, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a legal question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		client:   client,
		language: language,
		topK:     topK,
		input:    ti,
		viewport: vp,
		status:   "Connected. Ask in English, Hindi or Marathi.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.input.Reset()
				m.waiting = true
				m.status = "Thinking..."
				return m, m.askCmd(q)
			}
		}
	case answerMsg:
		m.waiting = false
		m.history = append(m.history, entry{query: msg.query, resp: msg.resp, err: msg.err})
		if msg.err != nil {
			m.status = "Request failed: " + msg.err.Error()
		} else if !msg.resp.Success {
			m.status = "The service could not answer this question."
		} else {
			m.status = fmt.Sprintf("Answered in %s.", msg.resp.Language)
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the HTTP call off the update loop so typing stays responsive.
func (m Model) askCmd(query string) tea.Cmd {
	client, language, topK := m.client, m.language, m.topK
	return func() tea.Msg {
		resp, err := client.Ask(context.Background(), query, language, topK)
		return answerMsg{query: query, resp: resp, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("NyayaBot — Legal Q&A")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, e := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + e.query))
		b.WriteString("\n")
		switch {
		case e.err != nil:
			b.WriteString(errorStyle.Render("Error: " + e.err.Error()))
		case !e.resp.Success:
			b.WriteString(errorStyle.Render("Service error: " + e.resp.Error))
		default:
			b.WriteString("Bot: " + e.resp.Answer)
			if e.resp.Degraded != "" {
				b.WriteString("\n" + errorStyle.Render("(degraded response: "+e.resp.Degraded+")"))
			}
			for _, src := range e.resp.Sources {
				b.WriteString("\n" + sourceStyle.Render(fmt.Sprintf("  [%s, score %.3f] %s", src.Document, src.Score, src.Text)))
			}
		}
	}
	return b.String()
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
