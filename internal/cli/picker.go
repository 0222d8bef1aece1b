package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mplug-cli/mplug/internal/catalog"
)

// pickCandidate resolves an ambiguous identifier interactively. Off a
// terminal, or under --yes, the candidates are listed and the command fails
// so the caller can rerun with an exact id.
func pickCandidate(cmd *cobra.Command, ambiguous *catalog.AmbiguousError) (string, error) {
	if assumeYes(cmd) || !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", ambiguous
	}

	model := pickerModel{
		title:      fmt.Sprintf("Multiple plugins are named %q:", ambiguous.Identifier),
		candidates: ambiguous.Candidates,
	}
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}

	result := final.(pickerModel)
	if result.aborted {
		return "", fmt.Errorf("%q: no plugin selected", ambiguous.Identifier)
	}
	return result.candidates[result.cursor].ID, nil
}

// pickerModel is a minimal Bubble Tea list: arrows move, enter selects,
// q/esc aborts.
type pickerModel struct {
	title      string
	candidates []catalog.Entry
	cursor     int
	chosen     bool
	aborted    bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "esc", "ctrl+c":
		m.aborted = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}

	case "enter":
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteString("\n\n")
	for i, candidate := range m.candidates {
		line := fmt.Sprintf("%s  %s", candidate.ID, fadedStyle.Render(firstLine(candidate.Desc)))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(fadedStyle.Render("\nenter: install  q: cancel\n"))
	return b.String()
}

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
