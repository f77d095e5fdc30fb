package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-rag-chat/internal/models"
)

// QueryPort is the TUI-facing subset of the pipeline.
type QueryPort interface {
	Query(ctx context.Context, question string) (*models.Answer, error)
}

// exit sentinels accepted in the input box, alongside ctrl+c/esc
var exitCommands = map[string]struct{}{
	"q":    {},
	"quit": {},
	"exit": {},
}

// Model is the Bubble Tea model for the chat loop.
type Model struct {
	pipeline QueryPort
	input    textinput.Model
	viewport viewport.Model
	status   string
	header   string
	ready    bool
}

// New creates the chat model. The header lists the loaded documents.
func New(pipeline QueryPort, loadedFiles []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question (q, quit or exit to leave)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline: pipeline,
		input:    ti,
		viewport: vp,
		header:   "Documents: " + strings.Join(loadedFiles, ", "),
		status:   "Ready. Type a question and press Enter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header + status + question frame + spacer
		vh := msg.Height - reserved - ah
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			if _, ok := exitCommands[strings.ToLower(question)]; ok {
				return m, tea.Quit
			}
			m.input.Reset()
			answer, err := m.pipeline.Query(context.Background(), question)
			if err != nil {
				// query-level failure: show it and keep the loop alive
				m.status = errorStyle.Render("Error: " + err.Error())
				return m, nil
			}
			m.status = statusStyle.Render(fmt.Sprintf("Answered %q", question))
			m.viewport.SetContent(renderAnswer(answer))
			m.viewport.GotoTop()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("RAG Chat") + "  " + dimStyle.Render(m.header)
	answer := answerBoxStyle.Render(m.viewport.View())
	question := questionBoxStyle.Render(m.input.View())
	return header + "\n" + answer + "\n" + question + "\n" + m.status
}

func renderAnswer(answer *models.Answer) string {
	var b strings.Builder
	b.WriteString(answer.Content)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Sources:"))
		for _, s := range answer.Sources {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s (page %d)", s.Source, s.PageNumber)))
		}
	}
	return b.String()
}

var (
	headerStyle      = lipgloss.NewStyle().Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
