package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sparsevec/internal/domain"
)

// QueryPort is the TUI-facing subset of the cluster service.
type QueryPort interface {
	Query(ctx context.Context, text string, topK int) (*domain.QueryResult, error)
}

type mode int

const (
	browseClusters mode = iota
	browseResults
)

// Model is the Bubble Tea model for browsing clusters and query results.
type Model struct {
	service  QueryPort
	topK     int
	input    textinput.Model
	viewport viewport.Model
	clusters []domain.Cluster
	result   *domain.QueryResult
	mode     mode
	cursor   int
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New(service QueryPort, clusters []domain.Cluster, topK int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter, Esc for clusters"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		topK:     topK,
		input:    ti,
		viewport: vp,
		clusters: clusters,
		status:   fmt.Sprintf("%d clusters. Up/Down to browse.", len(clusters)),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, cluster bar, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m = m.runQuery(q)
				return m, nil
			}
		case "esc":
			m.mode, m.cursor = browseClusters, 0
			m.status = fmt.Sprintf("%d clusters. Up/Down to browse.", len(m.clusters))
			m.viewport.SetContent(m.renderCurrent())
			return m, nil
		case "down":
			if n := m.items(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := m.items(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runQuery(q string) Model {
	res, err := m.service.Query(context.Background(), q, m.topK)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.result = nil
	} else {
		m.result = res
		m.mode, m.cursor = browseResults, 0
		if res.Cluster >= 0 {
			m.status = fmt.Sprintf("Results for %q, nearest cluster %q", q, res.Label)
		} else {
			m.status = fmt.Sprintf("Results for %q (lexical)", q)
		}
	}
	m.viewport.SetContent(m.renderCurrent())
	return m
}

func (m Model) items() int {
	if m.mode == browseResults && m.result != nil {
		return len(m.result.Matches)
	}
	return len(m.clusters)
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Sparse Vector Clusters")
	bar := dimStyle.Render(m.clusterBar())
	body := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + bar + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) clusterBar() string {
	parts := make([]string, len(m.clusters))
	for i, c := range m.clusters {
		label := fmt.Sprintf("[%d] %s (%d)", i, c.Label, len(c.Passages))
		if m.mode == browseClusters && i == m.cursor {
			label = highlightStyle.Render(label)
		}
		parts[i] = label
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderCurrent() string {
	if m.mode == browseResults && m.result != nil {
		return m.renderMatch()
	}
	if len(m.clusters) == 0 {
		return "No clusters."
	}
	c := m.clusters[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Cluster %d/%d  %s\n", m.cursor+1, len(m.clusters), highlightStyle.Render(c.Label))
	if c.Center != nil {
		fmt.Fprintf(&b, "center %s\n", dimStyle.Render(c.Center.TopString(8)))
	}
	for _, p := range c.Passages {
		b.WriteString("\n• ")
		b.WriteString(p.Text)
	}
	return b.String()
}

func (m Model) renderMatch() string {
	if len(m.result.Matches) == 0 {
		return "No results."
	}
	r := m.result.Matches[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.4f  tag=%s", m.cursor+1, len(m.result.Matches), r.Score, r.Tag)
	return title + "\n\n" + r.Passage.Text
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
