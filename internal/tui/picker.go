package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/execsum/internal/model"
)

type pickerStage int

const (
	stageName pickerStage = iota
	stageCompetencies
)

// pickerModel walks the operator through the name column (single choice)
// and then the competency columns (multi choice, preset with defaults).
type pickerModel struct {
	columns []string
	stage   pickerStage
	cursor  int
	name    string
	chosen  []string // competencies in selection order
	errMsg  string
	done    bool
	quit    bool
}

func newPickerModel(columns []string, defaults model.Selection) pickerModel {
	m := pickerModel{
		columns: columns,
		name:    defaults.NameColumn,
		chosen:  append([]string(nil), defaults.Competencies...),
	}
	if i := slices.Index(columns, defaults.NameColumn); i >= 0 {
		m.cursor = i
	}
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.columns)-1, 0))
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.columns)-1, 0))
	case " ", "x":
		if m.stage == stageCompetencies && len(m.columns) > 0 {
			m.toggle(m.columns[m.cursor])
			m.errMsg = ""
		}
	case "esc", "backspace":
		if m.stage == stageCompetencies {
			m.stage = stageName
			m.cursor = max(slices.Index(m.columns, m.name), 0)
			m.errMsg = ""
		}
	case "enter":
		if len(m.columns) == 0 {
			return m, nil
		}
		if m.stage == stageName {
			m.name = m.columns[m.cursor]
			m.stage = stageCompetencies
			m.cursor = 0
			return m, nil
		}
		if len(m.chosen) == 0 {
			m.errMsg = "⚠ " + model.ErrEmptySelection.Error()
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *pickerModel) toggle(col string) {
	if i := slices.Index(m.chosen, col); i >= 0 {
		m.chosen = slices.Delete(m.chosen, i, i+1)
		return
	}
	m.chosen = append(m.chosen, col)
}

func (m pickerModel) selection() model.Selection {
	return model.Selection{NameColumn: m.name, Competencies: slices.Clone(m.chosen)}
}

func (m pickerModel) View() string {
	var b strings.Builder
	if m.stage == stageName {
		b.WriteString(titleStyle.Render("Step 1 of 2: select the candidate name column"))
	} else {
		b.WriteString(titleStyle.Render("Step 2 of 2: select the competency columns"))
	}
	b.WriteByte('\n')

	for i, col := range m.columns {
		label := col
		if m.stage == stageCompetencies {
			mark := "[ ]"
			if n := slices.Index(m.chosen, col); n >= 0 {
				mark = fmt.Sprintf("[%d]", n+1)
			}
			label = mark + " " + col
		} else if col == m.name {
			label = col + " (default)"
		}
		if i == m.cursor {
			b.WriteString(selectedItemStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(itemStyle.Render(label) + "\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	if m.stage == stageName {
		b.WriteString(hintStyle.Render("↑/↓/j/k navigate  enter select  q quit"))
	} else {
		b.WriteString(hintStyle.Render("↑/↓/j/k navigate  space toggle  enter confirm  esc back  q quit"))
	}
	return b.String()
}

// RunColumnPicker shows the interactive column confirmation preset with
// defaults. ok is false if the operator quit without confirming.
func RunColumnPicker(columns []string, defaults model.Selection) (sel model.Selection, ok bool, err error) {
	p := tea.NewProgram(newPickerModel(columns, defaults))
	result, err := p.Run()
	if err != nil {
		return model.Selection{}, false, err
	}
	final := result.(pickerModel)
	if !final.done {
		return model.Selection{}, false, nil
	}
	return final.selection(), true, nil
}
