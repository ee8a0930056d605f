package model

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-chat/style"
)

// PickerItem is a single entry in the theme picker.
type PickerItem struct {
	Name   string
	Active bool
}

// PickerChoice is emitted when the user selects a theme.
type PickerChoice struct {
	Name string
}

// PickerCancel is emitted when the user presses Esc.
type PickerCancel struct{}

// PickerModel renders a vertical list of themes with arrow-key navigation.
type PickerModel struct {
	items  []PickerItem
	cursor int
	active bool
	width  int
}

// NewPicker returns an inactive PickerModel.
func NewPicker() PickerModel {
	return PickerModel{}
}

// SetItems populates the picker, puts the cursor on the active item and
// shows the picker.
func (m *PickerModel) SetItems(items []PickerItem) {
	m.items = items
	m.cursor = 0
	m.active = true
	for i, item := range items {
		if item.Active {
			m.cursor = i
			break
		}
	}
}

// Clear hides the picker.
func (m *PickerModel) Clear() {
	m.active = false
	m.items = nil
	m.cursor = 0
}

// IsActive reports whether the picker is currently visible.
func (m PickerModel) IsActive() bool {
	return m.active
}

// SetWidth constrains the picker to the terminal width.
func (m *PickerModel) SetWidth(w int) {
	m.width = w
}

// Update handles keyboard input when the picker is active.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	if !m.active || len(m.items) == 0 {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		m.cursor = (m.cursor - 1 + len(m.items)) % len(m.items)

	case tea.KeyDown:
		m.cursor = (m.cursor + 1) % len(m.items)

	case tea.KeyEnter:
		item := m.items[m.cursor]
		m.Clear()
		return m, func() tea.Msg { return PickerChoice{Name: item.Name} }

	case tea.KeyEsc, tea.KeyCtrlC:
		m.Clear()
		return m, func() tea.Msg { return PickerCancel{} }
	}

	return m, nil
}

// View renders the picker panel.
func (m PickerModel) View() string {
	if !m.active || len(m.items) == 0 {
		return ""
	}

	var sb strings.Builder
	header := lipgloss.NewStyle().
		Foreground(style.Primary).
		Bold(true).
		Render("◈ Select Theme")
	hint := style.Faint.Render("  ↑↓ navigate · Enter select · Esc cancel")
	sb.WriteString(header + hint + "\n\n")

	for i, item := range m.items {
		sb.WriteString(renderPickerItem(item, i == m.cursor))
		if i < len(m.items)-1 {
			sb.WriteString("\n")
		}
	}

	box := style.OverlayBorder
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	return box.Render(sb.String())
}

func renderPickerItem(item PickerItem, isCursor bool) string {
	cursor := "    "
	if isCursor {
		cursor = lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("  > ")
	}

	marker := lipgloss.NewStyle().Foreground(style.Muted).Render("○")
	if item.Active {
		marker = lipgloss.NewStyle().Foreground(style.Success).Render("●")
	}

	nameStyle := lipgloss.NewStyle()
	if isCursor {
		nameStyle = nameStyle.Bold(true)
	}
	return cursor + marker + " " + nameStyle.Render(item.Name)
}
