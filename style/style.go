package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-chat/markdown"
)

// Colors of the active theme. Set by SetTheme.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Error     lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Dim       lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
)

// Styles derived from the active theme.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style
	Hint      lipgloss.Style

	// Header
	HeaderTitle  lipgloss.Style
	HeaderDetail lipgloss.Style

	// Prompt
	PromptChar lipgloss.Style

	// Chat units
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	ErrorLabel     lipgloss.Style
	UnitUser       lipgloss.Style
	UnitAssistant  lipgloss.Style
	UnitSystem     lipgloss.Style
	UnitError      lipgloss.Style

	// Typing indicator
	SpinnerStyle lipgloss.Style

	// Status line
	StatusBar          lipgloss.Style
	StatusConnected    lipgloss.Style
	StatusConnecting   lipgloss.Style
	StatusDisconnected lipgloss.Style

	// Overlays (theme picker, command palette)
	OverlayBorder lipgloss.Style
)

func init() {
	apply(darkTheme)
}

// SetTheme switches the palette. Unknown names fall back to dark. The
// markdown style follows the theme.
func SetTheme(name string) {
	t, ok := Themes[name]
	if !ok {
		t = darkTheme
	}
	apply(t)
	markdown.SetStyle(t.Markdown)
}

func apply(t Theme) {
	CurrentThemeName = t.Name
	Primary, Secondary, Success, Warning, Error = t.Primary, t.Secondary, t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border

	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Hint = lipgloss.NewStyle().Foreground(Dim)

	HeaderTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	HeaderDetail = lipgloss.NewStyle().
		Foreground(Muted)

	PromptChar = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	UserLabel = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	AssistantLabel = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	ErrorLabel = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	unit := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		PaddingLeft(1)
	UnitUser = unit.BorderForeground(t.UnitUser)
	UnitAssistant = unit.BorderForeground(t.UnitAssistant)
	UnitSystem = unit.BorderForeground(t.UnitSystem).Foreground(Muted)
	UnitError = unit.BorderForeground(t.UnitError).Foreground(Error)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(Primary)

	StatusBar = lipgloss.NewStyle().
		Foreground(Muted).
		PaddingLeft(1)
	StatusConnected = lipgloss.NewStyle().Foreground(Success)
	StatusConnecting = lipgloss.NewStyle().Foreground(Warning)
	StatusDisconnected = lipgloss.NewStyle().Foreground(Error)

	OverlayBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
}
