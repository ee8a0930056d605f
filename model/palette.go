package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-chat/style"
)

// PaletteExecuteMsg is sent when the user selects a command.
type PaletteExecuteMsg struct {
	Command string
}

// PaletteDismissMsg is sent when the user closes the palette.
type PaletteDismissMsg struct{}

// PaletteItem is a single entry in the command palette.
type PaletteItem struct {
	Name        string // e.g. "/help"
	Description string // e.g. "Show available commands"
}

func (p PaletteItem) filterValue() string {
	return strings.ToLower(p.Name + " " + p.Description)
}

var (
	paletteUp      = key.NewBinding(key.WithKeys("up", "ctrl+p"))
	paletteDown    = key.NewBinding(key.WithKeys("down", "ctrl+n"))
	paletteSelect  = key.NewBinding(key.WithKeys("enter"))
	paletteDismiss = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
)

// PaletteModel is a filterable list of local commands.
type PaletteModel struct {
	active   bool
	filter   textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	cursor   int
	width    int
}

// NewPalette constructs a PaletteModel.
func NewPalette() PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	return PaletteModel{filter: ti}
}

// Open shows the palette with items.
func (m *PaletteModel) Open(items []PaletteItem, width int) tea.Cmd {
	m.active = true
	m.items = items
	m.filtered = items
	m.cursor = 0
	m.width = width
	m.filter.SetValue("")
	m.filter.PromptStyle = lipgloss.NewStyle().Foreground(style.Primary)
	return m.filter.Focus()
}

// IsActive reports whether the palette is visible.
func (m PaletteModel) IsActive() bool { return m.active }

// Filtered returns the items matching the current filter.
func (m PaletteModel) Filtered() []PaletteItem { return m.filtered }

// Update handles keyboard events for the palette.
func (m PaletteModel) Update(msg tea.Msg) (PaletteModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, paletteDismiss):
			m.close()
			return m, func() tea.Msg { return PaletteDismissMsg{} }

		case key.Matches(k, paletteSelect):
			if m.cursor < len(m.filtered) {
				cmd := m.filtered[m.cursor].Name
				m.close()
				return m, func() tea.Msg { return PaletteExecuteMsg{Command: cmd} }
			}
			return m, nil

		case key.Matches(k, paletteUp):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(k, paletteDown):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PaletteModel) close() {
	m.active = false
	m.filter.Blur()
}

// applyFilter filters items by substring match on the filter value.
func (m *PaletteModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.cursor = 0
	if query == "" {
		m.filtered = m.items
		return
	}
	var results []PaletteItem
	for _, item := range m.items {
		if strings.Contains(item.filterValue(), query) {
			results = append(results, item)
		}
	}
	m.filtered = results
}

// View renders the palette box.
func (m PaletteModel) View() string {
	if !m.active {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("Commands"))
	sb.WriteByte('\n')
	sb.WriteString(m.filter.View())
	sb.WriteByte('\n')

	if len(m.filtered) == 0 {
		sb.WriteString(style.Faint.Render("  No matching commands"))
	}
	for i, item := range m.filtered {
		name := lipgloss.NewStyle().Foreground(style.Secondary)
		desc := style.Hint
		marker := "  "
		if i == m.cursor {
			marker = lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("> ")
			name = name.Bold(true)
			desc = style.Faint
		}
		sb.WriteString(marker + name.Render(item.Name) + desc.Render("  "+item.Description))
		if i < len(m.filtered)-1 {
			sb.WriteByte('\n')
		}
	}

	box := style.OverlayBorder
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	return box.Render(sb.String())
}
