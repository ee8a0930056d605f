package model

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestToasts_ExpireAndDedupe(t *testing.T) {
	now := time.Now()
	m := NewToasts()
	m.now = func() time.Time { return now }

	m.Add("Connection lost", ToastWarning)
	m.Add("Connection lost", ToastWarning)
	assert.Equal(t, 1, m.Len())

	for _, s := range []string{"a", "b", "c"} {
		m.Add(s, ToastInfo)
	}
	assert.Equal(t, maxToasts, m.Len())
	assert.NotContains(t, m.View(80), "Connection lost")

	now = now.Add(toastTTL + time.Millisecond)
	m.Tick()
	assert.Zero(t, m.Len())
	assert.Empty(t, m.View(80))
}

func TestToasts_RepeatRestartsAndAlignsRight(t *testing.T) {
	now := time.Now()
	m := NewToasts()
	m.now = func() time.Time { return now }

	m.Add("Connection lost", ToastWarning)
	m.Add("Reconnected", ToastInfo)
	now = now.Add(toastTTL - time.Second)
	m.Add("Connection lost", ToastWarning)

	now = now.Add(2 * time.Second)
	m.Tick()
	assert.Equal(t, 1, m.Len(), "the repeated notice got a fresh TTL")

	view := m.View(40)
	assert.Contains(t, view, "Connection lost")
	assert.Equal(t, 40, lipgloss.Width(view))
	assert.True(t, strings.HasPrefix(view, " "))
}
