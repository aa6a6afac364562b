// Package pager is the interactive scrollback viewer: a Bubble Tea viewport
// over a history scroll with fuzzy search, match navigation and line-range
// copy to the system clipboard.
package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrollkeep/internal/cell"
	"scrollkeep/internal/history"
	"scrollkeep/internal/search"
)

type Options struct {
	Scroll history.Scroll
	Title  string
}

type Model struct {
	scroll history.Scroll
	title  string

	viewport viewport.Model
	input    textinput.Model

	searching bool
	query     string
	matches   []search.Match
	matchIdx  int

	selecting bool
	selStart  int // anchor line of the selection

	status string
	width  int
	height int
	ready  bool
}

func New(opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 0
	title := opts.Title
	if title == "" {
		title = "scrollkeep"
	}
	return &Model{
		scroll:   opts.Scroll,
		title:    title,
		input:    ti,
		matchIdx: -1,
		selStart: -1,
	}
}

// Run drives the pager to completion on the attached terminal.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := msg.Height - 2 // header + status
		if body < 1 {
			body = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, body)
			m.ready = true
			m.refresh()
			m.viewport.GotoBottom()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = body
		}
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearchInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "n":
		m.gotoMatch(m.matchIdx + 1)
		return m, nil
	case "N":
		m.gotoMatch(m.matchIdx - 1)
		return m, nil
	case "v":
		if m.selecting {
			m.selecting = false
			m.selStart = -1
			m.status = ""
		} else {
			m.selecting = true
			m.selStart = m.viewport.YOffset
			m.status = fmt.Sprintf("select from line %d", m.selStart)
		}
		return m, nil
	case "y":
		return m, m.copySelection()
	case "esc":
		m.selecting = false
		m.selStart = -1
		m.matches = nil
		m.matchIdx = -1
		m.query = ""
		m.status = ""
		return m, nil
	case "g":
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		m.runSearch(m.input.Value())
		return m, nil
	case "esc":
		m.searching = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runSearch(query string) {
	m.query = strings.TrimSpace(query)
	m.matches = nil
	m.matchIdx = -1
	if m.query == "" {
		m.status = ""
		return
	}
	matches, err := search.Lines(m.scroll, m.query, 0)
	if err != nil {
		m.status = fmt.Sprintf("search failed: %v", err)
		return
	}
	m.matches = matches
	if len(matches) == 0 {
		m.status = fmt.Sprintf("no matches for %q", m.query)
		return
	}
	m.gotoMatch(0)
}

func (m *Model) gotoMatch(idx int) {
	if len(m.matches) == 0 {
		m.status = "no active search"
		return
	}
	if idx < 0 {
		idx = len(m.matches) - 1
	}
	if idx >= len(m.matches) {
		idx = 0
	}
	m.matchIdx = idx
	match := m.matches[idx]
	m.viewport.SetYOffset(match.Line)
	m.status = fmt.Sprintf("match %d/%d at line %d", idx+1, len(m.matches), match.Line)
}

// copySelection copies the selected line range (anchor to current offset,
// inclusive) as plain text.
func (m *Model) copySelection() tea.Cmd {
	if !m.selecting || m.selStart < 0 {
		m.status = "nothing selected (press v first)"
		return nil
	}
	from, to := m.selStart, m.viewport.YOffset
	if from > to {
		from, to = to, from
	}
	if to >= m.scroll.Lines() {
		to = m.scroll.Lines() - 1
	}
	var b strings.Builder
	for i := from; i <= to; i++ {
		text, err := search.Text(m.scroll, i)
		if err != nil {
			m.status = fmt.Sprintf("copy failed: %v", err)
			return nil
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	m.selecting = false
	m.selStart = -1
	if err := clipboard.WriteAll(b.String()); err != nil {
		m.status = fmt.Sprintf("clipboard: %v", err)
		return nil
	}
	m.status = fmt.Sprintf("copied %d lines", to-from+1)
	return nil
}

// refresh re-renders the whole scroll into the viewport.
func (m *Model) refresh() {
	lines := make([]string, m.scroll.Lines())
	for i := range lines {
		n, err := m.scroll.LineLen(i)
		if err != nil {
			lines[i] = "~"
			continue
		}
		cells := make([]cell.Cell, n)
		if err := m.scroll.Cells(i, 0, cells); err != nil {
			lines[i] = "~"
			continue
		}
		lines[i] = renderCells(cells)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s — %d lines", m.title, m.scroll.Lines()))
	var footer string
	if m.searching {
		footer = m.input.View()
	} else {
		footer = statusLine(m.status, m.query, m.width)
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func statusLine(status, query string, width int) string {
	parts := []string{"q quit", "/ search", "v select", "y copy"}
	if query != "" {
		parts = append([]string{fmt.Sprintf("search: %q", query)}, parts...)
	}
	if status != "" {
		parts = append([]string{status}, parts...)
	}
	w := width
	if w < 20 {
		w = 20
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		Padding(0, 1).
		Width(w).
		Render(strings.Join(parts, " • "))
}
