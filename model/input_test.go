package model

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func typeText(m *InputModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInput_DisabledIgnoresKeys(t *testing.T) {
	m := NewInput()
	assert.False(t, m.Enabled())

	typeText(m, "hi")
	assert.Empty(t, m.Value())

	m.SetEnabled(true)
	typeText(m, "hi")
	assert.Equal(t, "hi", m.Value())
}

func TestInput_CommitRecordsHistory(t *testing.T) {
	m := NewInput()
	m.SetEnabled(true)

	typeText(m, "first")
	m.Commit("first")
	assert.Empty(t, m.Value())

	m.Commit("second")
	m.Commit("second")
	assert.Equal(t, []string{"first", "second"}, m.History())

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "second", m.Value())
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "first", m.Value())
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "first", m.Value())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.Value())
}

func TestInput_TabCompletesCommands(t *testing.T) {
	m := NewInput()
	m.SetEnabled(true)
	m.SetCommands([]string{"/help", "/clear", "/session", "/reconnect"})

	typeText(m, "/se")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/session", m.Value())

	m.Reset()
	typeText(m, "/")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/help", m.Value())
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/clear", m.Value())
}

func TestInput_PendingIsReturnedOnce(t *testing.T) {
	m := NewInput()
	m.SetEnabled(true)
	m.Pending()
	assert.Nil(t, m.Pending())
}
