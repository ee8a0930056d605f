package model

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/osa-chat/style"
)

// ActivityModel is the typing indicator: a spinner and the time spent
// waiting for the assistant.
type ActivityModel struct {
	sp        spinner.Model
	active    bool
	startTime time.Time
	now       func() time.Time
}

// NewActivity constructs an ActivityModel with a Dot spinner.
func NewActivity() ActivityModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.SpinnerStyle
	return ActivityModel{sp: sp, now: time.Now}
}

// Start shows the indicator and resets the elapsed timer.
func (m *ActivityModel) Start() {
	if m.active {
		return
	}
	m.active = true
	m.startTime = m.now()
}

// Stop hides the indicator.
func (m *ActivityModel) Stop() {
	m.active = false
}

// IsActive reports whether the indicator is shown.
func (m ActivityModel) IsActive() bool { return m.active }

// Elapsed returns the time since Start.
func (m ActivityModel) Elapsed() time.Duration {
	if !m.active {
		return 0
	}
	return m.now().Sub(m.startTime)
}

// Tick starts the spinner animation.
func (m ActivityModel) Tick() tea.Cmd {
	return m.sp.Tick
}

// Update advances the spinner. Ticks stop being re-armed once the indicator is
// hidden.
func (m ActivityModel) Update(teaMsg tea.Msg) (ActivityModel, tea.Cmd) {
	tick, ok := teaMsg.(spinner.TickMsg)
	if !ok || !m.active {
		return m, nil
	}
	var cmd tea.Cmd
	m.sp, cmd = m.sp.Update(tick)
	return m, cmd
}

// View renders the indicator line. Returns "" when inactive.
//
//	⣾ Thinking… 3s
func (m ActivityModel) View() string {
	if !m.active {
		return ""
	}
	return m.sp.View() + " " + style.Faint.Render(fmt.Sprintf("Thinking… %s", formatElapsed(m.Elapsed())))
}

// formatElapsed renders a duration as a concise string.
// Examples: 3s, 1m 23s
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%dm %ds", m, s)
}
