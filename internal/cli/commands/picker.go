package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/dbdiff/pkg/compare"
)

// field indexes
const (
	fieldPathA = iota
	fieldPathB
	fieldCount
)

// pathsModel is the bubbletea model for the database path prompt shown when
// the compare command is invoked without arguments on a terminal.
type pathsModel struct {
	inputs    []textinput.Model
	focused   int
	statusMsg string
	pathA     string
	pathB     string
	done      bool
	cancelled bool
}

func newPathsModel() pathsModel {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldPathA] = textinput.New()
	inputs[fieldPathA].Placeholder = "before.db"
	inputs[fieldPathA].CharLimit = 512
	inputs[fieldPathA].Focus()

	inputs[fieldPathB] = textinput.New()
	inputs[fieldPathB].Placeholder = "after.db"
	inputs[fieldPathB].CharLimit = 512

	return pathsModel{
		inputs:  inputs,
		focused: fieldPathA,
	}
}

func (m pathsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.cancelled = true
			return m, tea.Quit

		case "tab", "down":
			m.focused = (m.focused + 1) % fieldCount
			return m, m.updateFocus()

		case "shift+tab", "up":
			m.focused--
			if m.focused < fieldPathA {
				m.focused = fieldPathB
			}
			return m, m.updateFocus()

		case "enter":
			if m.focused == fieldPathA {
				m.focused = fieldPathB
				return m, m.updateFocus()
			}
			return m.submit()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m pathsModel) submit() (tea.Model, tea.Cmd) {
	pathA := strings.TrimSpace(m.inputs[fieldPathA].Value())
	pathB := strings.TrimSpace(m.inputs[fieldPathB].Value())

	if msg := checkDatabasePath(compare.LabelA, pathA); msg != "" {
		m.statusMsg = msg
		m.focused = fieldPathA
		return m, m.updateFocus()
	}
	if msg := checkDatabasePath(compare.LabelB, pathB); msg != "" {
		m.statusMsg = msg
		m.focused = fieldPathB
		return m, m.updateFocus()
	}

	m.pathA = pathA
	m.pathB = pathB
	m.done = true
	return m, tea.Quit
}

func (m pathsModel) View() string {
	var b strings.Builder

	b.WriteString(promptTitleStyle.Render("Select databases to compare") + "\n\n")

	labels := []string{compare.LabelA + " path", compare.LabelB + " path"}
	for i := fieldPathA; i < fieldCount; i++ {
		cursor := "  "
		if i == m.focused {
			cursor = promptHighlightStyle.Render("> ")
		}
		label := fmt.Sprintf("%-10s ", labels[i])
		b.WriteString(cursor + promptDimStyle.Render(label) + m.inputs[i].View() + "\n")
	}

	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(promptErrStyle.Render("  "+m.statusMsg) + "\n")
	}
	b.WriteString(promptDimStyle.Render("  Press Enter on the second path to compare • tab/shift-tab to navigate • esc to cancel\n"))

	return b.String()
}

func (m *pathsModel) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, fieldCount)
	for i := fieldPathA; i < fieldCount; i++ {
		if i == m.focused {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func checkDatabasePath(label, path string) string {
	if path == "" {
		return fmt.Sprintf("%s path is required", label)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("%s: %v", label, err)
	}
	if info.IsDir() {
		return fmt.Sprintf("%s: %s is a directory", label, path)
	}
	return ""
}

// promptForSources asks for the two database paths interactively.
func promptForSources() (string, string, error) {
	p := tea.NewProgram(newPathsModel())

	finalModel, err := p.Run()
	if err != nil {
		return "", "", fmt.Errorf("running path prompt: %w", err)
	}

	m := finalModel.(pathsModel)
	if m.cancelled || m.pathA == "" {
		return "", "", fmt.Errorf("cancelled")
	}

	return m.pathA, m.pathB, nil
}

// styles
var (
	promptTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	promptHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	promptDimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptErrStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
