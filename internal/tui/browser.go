package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/execsum/internal/batch"
	"github.com/amishk599/execsum/internal/model"
)

// Entry is one candidate row shown in the results browser.
type Entry struct {
	Name   string
	Result model.Result
}

// Entries pairs each output row's name with its result.
func Entries(out *batch.Output, nameColumn string) []Entry {
	entries := make([]Entry, len(out.Results))
	for i, r := range out.Results {
		name := out.Table.Cell(i, nameColumn).String()
		if name == "" {
			name = fmt.Sprintf("Row %d", i+1)
		}
		entries[i] = Entry{Name: name, Result: r}
	}
	return entries
}

type browserModel struct {
	entries    []Entry
	list       viewport.Model
	summary    viewport.Model
	cursor     int
	activePane int // 0=list, 1=summary
	width      int
	height     int
	ready      bool
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "left", "right":
			m.activePane = 1 - m.activePane
			return m, nil
		case "up", "k":
			if m.activePane == 0 {
				m.moveCursor(-1)
				return m, nil
			}
		case "down", "j":
			if m.activePane == 0 {
				m.moveCursor(1)
				return m, nil
			}
		}

		// Forward other keys (pgup/pgdn/home/end and summary scrolling) to the active viewport.
		var cmd tea.Cmd
		if m.activePane == 0 {
			m.list, cmd = m.list.Update(msg)
		} else {
			m.summary, cmd = m.summary.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.entries)-1, 0))
	m.recalcContent()
	m.summary.SetYOffset(0)

	if m.cursor < m.list.YOffset {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m *browserModel) recalcLayout() {
	// Left pane gets a third of the width; 2 border chars per pane + 1 gap.
	listWidth := max((m.width-5)/3, 20)
	summaryWidth := max(m.width-5-listWidth, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(listWidth, paneHeight)
		m.summary = viewport.New(summaryWidth, paneHeight)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = listWidth, paneHeight
		m.summary.Width, m.summary.Height = summaryWidth, paneHeight
	}
	m.recalcContent()
}

func (m *browserModel) recalcContent() {
	m.list.SetContent(renderEntries(m.entries, m.cursor))
	if len(m.entries) == 0 {
		m.summary.SetContent("  (no candidates)")
		return
	}
	text := m.entries[m.cursor].Result.String()
	m.summary.SetContent(summaryStyle.Render(wordWrap(text, max(m.summary.Width-2, 20))))
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	leftHeader := fmt.Sprintf(" Candidates (%d)", len(m.entries))
	rightHeader := " Executive Summary"
	if len(m.entries) > 0 {
		rightHeader = " " + m.entries[m.cursor].Name
	}

	leftHeaderStyle, rightHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == 1 {
		leftHeaderStyle, rightHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.list.Width+2).Render(leftHeaderStyle.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(m.summary.Width+2).Render(rightHeaderStyle.Render(rightHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Width(m.list.Width).Render(m.list.View()),
		" ",
		rightBorder.Width(m.summary.Width).Render(m.summary.View()),
	)

	failed := 0
	for _, e := range m.entries {
		if e.Result.Failed() {
			failed++
		}
	}
	statusText := fmt.Sprintf(" %d candidates | %d failed    ←/→/Tab switch  ↑/↓ move  q quit", len(m.entries), failed)
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderEntries(entries []Entry, cursor int) string {
	if len(entries) == 0 {
		return "  (no candidates)"
	}

	var b strings.Builder
	for i, e := range entries {
		mark := okStyle.Render("✓")
		if e.Result.Failed() {
			mark = failStyle.Render("✗")
		}
		if i == cursor {
			b.WriteString("> " + mark + " " + selectedCandidateStyle.Render(e.Name))
		} else {
			b.WriteString("  " + mark + " " + candidateStyle.Render(e.Name))
		}
		if i < len(entries)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wordWrap wraps each paragraph of text to width, keeping blank lines
// between paragraphs.
func wordWrap(text string, width int) string {
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// RunBrowser launches the split-pane results browser in the alt screen.
func RunBrowser(entries []Entry) error {
	p := tea.NewProgram(browserModel{entries: entries}, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
