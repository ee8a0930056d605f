package model

import (
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/miosa/osa-chat/style"
)

// ToastLevel classifies toast severity.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastWarning
	ToastError
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
)

type notice struct {
	text  string
	level ToastLevel
	until time.Time
}

// ToastsModel holds short-lived connection notices shown above the input.
type ToastsModel struct {
	items []notice
	now   func() time.Time
}

func NewToasts() *ToastsModel {
	return &ToastsModel{now: time.Now}
}

// Add shows text for toastTTL. Repeating a notice restarts it instead of
// stacking a copy; past maxToasts the oldest goes.
func (m *ToastsModel) Add(text string, level ToastLevel) {
	m.items = slices.DeleteFunc(m.items, func(n notice) bool { return n.text == text })
	m.items = append(m.items, notice{text: text, level: level, until: m.now().Add(toastTTL)})
	if over := len(m.items) - maxToasts; over > 0 {
		m.items = slices.Delete(m.items, 0, over)
	}
}

// Tick drops expired notices. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.now()
	m.items = slices.DeleteFunc(m.items, func(n notice) bool { return !now.Before(n.until) })
}

func (m *ToastsModel) Len() int { return len(m.items) }

// View stacks the notices against the right edge, newest at the bottom.
func (m *ToastsModel) View(width int) string {
	if len(m.items) == 0 {
		return ""
	}
	lines := make([]string, len(m.items))
	for i, n := range m.items {
		lines[i] = noticeStyle(n.level).Render(noticeIcon(n.level) + " " + n.text)
	}
	block := lipgloss.JoinVertical(lipgloss.Right, lines...)
	if width <= lipgloss.Width(block) {
		return block
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

func noticeIcon(level ToastLevel) string {
	switch level {
	case ToastWarning:
		return "\u26A0" // ⚠
	case ToastError:
		return "\u2718" // ✘
	}
	return "\u2713" // ✓
}

// noticeStyle is built per render so a theme switch recolors live notices.
func noticeStyle(level ToastLevel) lipgloss.Style {
	color := style.Success
	switch level {
	case ToastWarning:
		color = style.Warning
	case ToastError:
		color = style.Error
	}
	return lipgloss.NewStyle().Foreground(color).Padding(0, 1)
}
