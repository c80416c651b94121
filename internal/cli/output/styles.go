package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by text rendering.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style

	// StatusSuccess and StatusFailed carry their verdict glyphs; render
	// them with String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

func newStyles(colored bool) Styles {
	if !colored {
		plain := lipgloss.NewStyle()
		return Styles{
			Header1:       plain,
			Header2:       plain,
			Bold:          plain,
			Muted:         plain,
			Error:         plain,
			Warning:       plain,
			Info:          plain,
			Success:       plain,
			StatusSuccess: lipgloss.NewStyle().SetString("✓"),
			StatusFailed:  lipgloss.NewStyle().SetString("✗"),
		}
	}

	return Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		StatusSuccess: lipgloss.NewStyle().SetString("✓").Foreground(lipgloss.Color("82")),
		StatusFailed:  lipgloss.NewStyle().SetString("✗").Foreground(lipgloss.Color("196")),
	}
}
