package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/osa-chat/session"
	"github.com/miosa/osa-chat/style"
)

const (
	placeholderReady    = "Type a message, or / for commands…"
	placeholderDisabled = "Waiting…"
)

// InputModel is the text-input bar with history navigation and command
// autocomplete. It implements session.Input: the session enables and disables
// it, and clears it once a message has been accepted.
//
// History navigation:
//   - Up arrow: walk backwards through submitted inputs
//   - Down arrow: walk forwards (towards the present)
//
// Autocomplete:
//   - Tab when the buffer starts with "/" cycles through matching commands
type InputModel struct {
	ti         textinput.Model
	enabled    bool
	pending    tea.Cmd // cursor blink started by the last focus
	history    []string
	historyIdx int // points one past the last entry when not navigating

	commands   []string // local slash commands, e.g. ["/help", "/clear"]
	tabIdx     int      // current autocomplete cursor (-1 = none)
	tabMatches []string // current autocomplete candidate list
}

var _ session.Input = (*InputModel)(nil)

// NewInput returns a disabled InputModel.
func NewInput() *InputModel {
	ti := textinput.New()
	ti.Placeholder = placeholderDisabled
	ti.CharLimit = 4096
	ti.Prompt = ""
	return &InputModel{
		ti:     ti,
		tabIdx: -1,
	}
}

// SetCommands replaces the command list used for Tab autocomplete.
func (m *InputModel) SetCommands(cmds []string) {
	m.commands = cmds
}

// SetWidth sets the visible width of the field.
func (m *InputModel) SetWidth(w int) {
	if w > 4 {
		m.ti.Width = w - 4
	}
}

// SetEnabled focuses (true) or blurs (false) the input. A disabled input
// ignores keys.
func (m *InputModel) SetEnabled(enabled bool) {
	m.enabled = enabled
	if enabled {
		m.ti.Placeholder = placeholderReady
		m.pending = m.ti.Focus()
		return
	}
	m.ti.Placeholder = placeholderDisabled
	m.ti.Blur()
}

// Enabled reports whether the input accepts keys.
func (m *InputModel) Enabled() bool { return m.enabled }

// Pending returns, once, the command produced by the last focus.
func (m *InputModel) Pending() tea.Cmd {
	cmd := m.pending
	m.pending = nil
	return cmd
}

// Value returns the current raw text in the input field.
func (m *InputModel) Value() string {
	return m.ti.Value()
}

// History returns submitted inputs, oldest first.
func (m *InputModel) History() []string { return m.history }

// Reset clears the input field and resets autocomplete state.
func (m *InputModel) Reset() {
	m.historyIdx = len(m.history)
	m.ti.SetValue("")
	m.resetTab()
}

// Commit appends text to history and then clears the field.
func (m *InputModel) Commit(text string) {
	if text != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != text) {
		m.history = append(m.history, text)
	}
	m.Reset()
}

// resetTab clears autocomplete state.
func (m *InputModel) resetTab() {
	m.tabIdx = -1
	m.tabMatches = nil
}

// Update intercepts Up/Down for history and Tab for autocomplete before
// delegating remaining keys to the underlying textinput.
func (m *InputModel) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		if !m.enabled {
			return nil
		}
		switch k.Type {
		case tea.KeyUp:
			m.navigateHistory(-1)
			return nil

		case tea.KeyDown:
			m.navigateHistory(+1)
			return nil

		case tea.KeyTab:
			m.cycleComplete()
			return nil

		default:
			// Any other key resets tab state so the next Tab starts fresh.
			m.resetTab()
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return cmd
}

// View renders the prompt character followed by the textinput view.
func (m *InputModel) View() string {
	prompt := style.PromptChar.Render("❯ ")
	if !m.enabled {
		prompt = style.Faint.Render("❯ ")
	}
	return prompt + m.ti.View()
}

// navigateHistory moves the history cursor by delta (-1 = older, +1 = newer).
func (m *InputModel) navigateHistory(delta int) {
	if len(m.history) == 0 {
		return
	}

	next := m.historyIdx + delta

	switch {
	case next < 0:
		next = 0
	case next > len(m.history):
		next = len(m.history)
	}

	m.historyIdx = next

	if next == len(m.history) {
		// Moved past the newest entry: restore blank field.
		m.ti.SetValue("")
	} else {
		m.ti.SetValue(m.history[next])
		m.ti.CursorEnd()
	}
}

// cycleComplete advances through autocomplete candidates.
// It only activates when the current buffer starts with "/".
func (m *InputModel) cycleComplete() {
	current := m.ti.Value()

	if !strings.HasPrefix(current, "/") {
		return
	}

	// Build the candidate list on the first Tab press.
	if m.tabIdx == -1 || m.tabMatches == nil {
		m.tabMatches = matchCommands(m.commands, current)
		if len(m.tabMatches) == 0 {
			return
		}
		m.tabIdx = 0
	} else {
		m.tabIdx = (m.tabIdx + 1) % len(m.tabMatches)
	}

	m.ti.SetValue(m.tabMatches[m.tabIdx])
	m.ti.CursorEnd()
}

// matchCommands returns all commands that have prefix as a prefix.
func matchCommands(commands []string, prefix string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
