package model

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPicker_StartsOnActiveAndWraps(t *testing.T) {
	p := NewPicker()
	p.SetItems([]PickerItem{{Name: "dark"}, {Name: "light", Active: true}, {Name: "catppuccin"}})
	require.True(t, p.IsActive())
	assert.Equal(t, 1, p.cursor)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, p.cursor)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, p.IsActive())
	require.NotNil(t, cmd)
	assert.Equal(t, PickerChoice{Name: "dark"}, cmd())
}

func TestPicker_Escape(t *testing.T) {
	p := NewPicker()
	p.SetItems([]PickerItem{{Name: "dark"}})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, p.IsActive())
	assert.Equal(t, PickerCancel{}, cmd())
	assert.Empty(t, p.View())
}

func TestPalette_FilterAndSelect(t *testing.T) {
	p := NewPalette()
	p.Open([]PaletteItem{
		{Name: "/help", Description: "Show commands"},
		{Name: "/reconnect", Description: "Open a new connection"},
		{Name: "/clear", Description: "Clear the conversation"},
	}, 60)
	require.True(t, p.IsActive())

	for _, r := range "conn" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	require.Len(t, p.Filtered(), 1)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, p.IsActive())
	assert.Equal(t, PaletteExecuteMsg{Command: "/reconnect"}, cmd())
}
