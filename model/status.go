package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/miosa/osa-chat/style"
)

// ConnPhase is the connection state shown in the status line.
type ConnPhase int

const (
	PhaseConnecting ConnPhase = iota
	PhaseConnected
	PhaseReconnecting
	PhaseOffline // reconnect attempts exhausted
)

func (p ConnPhase) String() string {
	switch p {
	case PhaseConnecting:
		return "Connecting..."
	case PhaseConnected:
		return "Connected"
	case PhaseReconnecting:
		return "Disconnected"
	case PhaseOffline:
		return "Disconnected"
	default:
		return "unknown"
	}
}

// StatusModel renders the bottom status line:
//
//	● Connected · session 3f2a9c1e · last reply 182 tokens
//	● Disconnected · retry 2/5 in 3s
type StatusModel struct {
	phase       ConnPhase
	attempt     int
	maxAttempts int
	retryAt     time.Time
	sessionID   string
	tokens      int
	exact       bool
	busy        string // set while a response is in flight
	now         func() time.Time
}

// NewStatus returns a StatusModel in the connecting phase.
func NewStatus() *StatusModel {
	return &StatusModel{now: time.Now}
}

// SetPhase updates the connection phase.
func (m *StatusModel) SetPhase(p ConnPhase) {
	m.phase = p
	if p != PhaseReconnecting {
		m.attempt, m.maxAttempts = 0, 0
		m.retryAt = time.Time{}
	}
}

// SetReconnect records a scheduled reconnect.
func (m *StatusModel) SetReconnect(attempt, max int, delay time.Duration) {
	m.phase = PhaseReconnecting
	m.attempt = attempt
	m.maxAttempts = max
	m.retryAt = m.now().Add(delay)
}

// Phase returns the current connection phase.
func (m *StatusModel) Phase() ConnPhase { return m.phase }

// SetSession sets the session identifier shown in the line.
func (m *StatusModel) SetSession(id string) { m.sessionID = id }

// SetTokens records the token count of the last completed reply.
func (m *StatusModel) SetTokens(n int, exact bool) {
	m.tokens = n
	m.exact = exact
}

// SetBusy sets the in-flight label; "" when idle.
func (m *StatusModel) SetBusy(label string) { m.busy = label }

// View renders the status line.
func (m *StatusModel) View() string {
	parts := []string{m.phaseView()}
	if m.phase == PhaseReconnecting && m.maxAttempts > 0 {
		wait := m.retryAt.Sub(m.now()).Round(time.Second)
		if wait < 0 {
			wait = 0
		}
		parts = append(parts, fmt.Sprintf("retry %d/%d in %s", m.attempt, m.maxAttempts, wait))
	}
	if m.phase == PhaseOffline {
		parts = append(parts, "ctrl+r to reconnect")
	}
	if m.sessionID != "" {
		parts = append(parts, "session "+shortID(m.sessionID))
	}
	if m.busy != "" {
		parts = append(parts, m.busy)
	} else if m.tokens > 0 {
		approx := ""
		if !m.exact {
			approx = "~"
		}
		parts = append(parts, fmt.Sprintf("last reply %s%s tokens", approx, formatTokens(m.tokens)))
	}
	return style.StatusBar.Render(strings.Join(parts, style.Faint.Render(" · ")))
}

func (m *StatusModel) phaseView() string {
	var st = style.StatusConnecting
	switch m.phase {
	case PhaseConnected:
		st = style.StatusConnected
	case PhaseReconnecting, PhaseOffline:
		st = style.StatusDisconnected
	}
	return st.Render("● " + m.phase.String())
}

// formatTokens renders 1234 as 1.2k.
func formatTokens(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// shortID trims an identifier for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
