package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docrag/internal/domain"
	"docrag/internal/textproc"
)

// QAPort is the TUI-facing subset of the RAG service.
type QAPort interface {
	AnswerQuestion(ctx context.Context, query string, topK int) (string, []domain.IndexedChunk, error)
}

// answerMsg carries the outcome of one question back into Update.
type answerMsg struct {
	query  string
	answer string
	chunks []domain.IndexedChunk
	err    error
}

// Model is the Bubble Tea model for the interactive query session.
type Model struct {
	service   QAPort
	dataset   string
	topK      int
	timeout   time.Duration
	input     textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	answer    string
	chunks    []domain.IndexedChunk
	status    string
	cursor    int // 0 shows the answer, i > 0 shows chunk i-1
	busy      bool
	ready     bool
	lastQuery string
}

// New creates a TUI model that asks service for topK chunks per question.
// A zero timeout means no per-question deadline.
func New(service QAPort, dataset string, topK int, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		service:  service,
		dataset:  dataset,
		topK:     topK,
		timeout:  timeout,
		input:    ti,
		spinner:  sp,
		viewport: vp,
		status:   "Ready. Up/Down switches between the answer and its sources, Ctrl+C quits.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if m.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}
		answer, chunks, err := m.service.AnswerQuestion(ctx, q, m.topK)
		return answerMsg{query: q, answer: answer, chunks: chunks, err: err}
	}
}

// Update handles key, window and answer events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, resultFrame := resultBoxStyle.GetFrameSize()
		_, inputFrame := queryBoxStyle.GetFrameSize()
		reserved := 3 + inputFrame // header, input line, status
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-resultFrame)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer, m.chunks = "", nil
		} else {
			m.status = fmt.Sprintf("Answer for %q from %d source(s)", msg.query, len(msg.chunks))
			m.answer, m.chunks = msg.answer, msg.chunks
			m.lastQuery = msg.query
		}
		m.cursor = 0
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = fmt.Sprintf("Searching %s...", m.dataset)
				m.input.SetValue("")
				return m, tea.Batch(m.ask(q), m.spinner.Tick)
			}
		case "down":
			if len(m.chunks) > 0 {
				m.cursor = (m.cursor + 1) % (len(m.chunks) + 1)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if len(m.chunks) > 0 {
				m.cursor = (m.cursor - 1 + len(m.chunks) + 1) % (len(m.chunks) + 1)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View stacks header, result box, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docrag · " + m.dataset)
	input := queryBoxStyle.Render(m.input.View())
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	status = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if m.answer == "" && len(m.chunks) == 0 {
		return "No answer yet."
	}
	if m.cursor == 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render("Answer"))
		b.WriteString("\n\n")
		b.WriteString(m.answer)
		if len(m.chunks) > 0 {
			b.WriteString("\n\n")
			b.WriteString(titleStyle.Render("Sources"))
			for _, c := range m.chunks {
				fmt.Fprintf(&b, "\n  %s (chunk %d)", c.Source, c.ChunkID)
			}
		}
		return b.String()
	}
	c := m.chunks[m.cursor-1]
	title := titleStyle.Render(fmt.Sprintf("Source %d/%d  %s", m.cursor, len(m.chunks), c.Source))
	return title + "\n\n" + highlightBestSentence(c.Text, m.lastQuery)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence renders text with the sentence that shares the most
// query terms emphasized. The first such sentence wins ties.
func highlightBestSentence(text, query string) string {
	sentences := textproc.SentencesWithTail(text)
	terms := textproc.TermSet(query)
	best, bestOverlap := -1, 0
	for i, sent := range sentences {
		if n := textproc.Overlap(terms, sent); n > bestOverlap {
			best, bestOverlap = i, n
		}
	}
	parts := make([]string, len(sentences))
	for i, sent := range sentences {
		parts[i] = sent
		if i == best {
			parts[i] = highlightStyle.Render(sent)
		}
	}
	return strings.Join(parts, " ")
}
