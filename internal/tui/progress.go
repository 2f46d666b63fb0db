package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/execsum/internal/batch"
)

// RunFunc executes a batch, reporting each progress update through onProgress.
type RunFunc func(ctx context.Context, onProgress func(batch.Progress)) (*batch.Output, error)

type progressMsg batch.Progress

type runDoneMsg struct {
	out *batch.Output
	err error
}

type progressModel struct {
	source     string
	bar        progress.Model
	updates    <-chan batch.Progress
	last       batch.Progress
	cancel     context.CancelFunc
	cancelling bool
	out        *batch.Output
	err        error
	done       bool
}

func newProgressModel(source string, updates <-chan batch.Progress, cancel context.CancelFunc) progressModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 50
	return progressModel{
		source:  source,
		bar:     bar,
		updates: updates,
		cancel:  cancel,
		last:    batch.Progress{Status: "Starting..."},
	}
}

func waitForProgress(updates <-chan batch.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return progressMsg(p)
	}
}

func (m progressModel) Init() tea.Cmd {
	return waitForProgress(m.updates)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = clamp(msg.Width-4, 10, 80)
		return m, nil
	case progressMsg:
		m.last = batch.Progress(msg)
		return m, waitForProgress(m.updates)
	case runDoneMsg:
		m.out = msg.out
		m.err = msg.err
		m.done = true
		if m.out != nil {
			m.last.Completed, m.last.Total = m.out.Report.Total, m.out.Report.Total
			m.last.Done = true
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.cancelling {
			// The runner stops before the next row and still returns its output.
			m.cancelling = true
			m.cancel()
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Generating executive summaries for " + m.source))
	b.WriteString("\n  ")
	b.WriteString(m.bar.ViewAs(m.last.Fraction()))
	b.WriteString("\n\n  ")
	b.WriteString(m.last.Status)
	if m.last.Total > 0 {
		b.WriteString(fmt.Sprintf("\n  %d of %d done", m.last.Completed, m.last.Total))
	}
	b.WriteByte('\n')
	switch {
	case m.done:
	case m.cancelling:
		b.WriteString(hintStyle.Render("cancelling after the current candidate..."))
	default:
		b.WriteString(hintStyle.Render("ctrl+c cancel (finished summaries are kept)"))
	}
	return b.String()
}

// RunProgress runs fn in the background while rendering a live progress bar.
// ctrl+c cancels the context handed to fn; fn's output is returned either way.
func RunProgress(ctx context.Context, source string, fn RunFunc) (*batch.Output, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan batch.Progress, 16)
	m := newProgressModel(source, updates, cancel)

	p := tea.NewProgram(m)
	go func() {
		out, err := fn(ctx, func(pr batch.Progress) { updates <- pr })
		close(updates)
		p.Send(runDoneMsg{out: out, err: err})
	}()

	result, err := p.Run()
	if err != nil {
		cancel()
		for range updates {
		}
		return nil, err
	}
	final := result.(progressModel)
	return final.out, final.err
}
