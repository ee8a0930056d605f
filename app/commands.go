package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/miosa/osa-chat/model"
	"github.com/miosa/osa-chat/session"
	"github.com/miosa/osa-chat/style"
)

// command is a slash command handled by the client itself.
type command struct {
	name string
	desc string
	run  func(m *Model, arg string) tea.Cmd
}

var commands []command

func init() {
	commands = []command{
		{"/help", "Show commands and keys", (*Model).cmdHelp},
		{"/clear", "Clear the conversation on screen", (*Model).cmdClear},
		{"/session", "Show the session id", (*Model).cmdSession},
		{"/reconnect", "Open a new connection", (*Model).cmdReconnect},
		{"/theme", "Pick a color theme (/theme <name> to set)", (*Model).cmdTheme},
		{"/exit", "Quit", (*Model).cmdQuit},
		{"/quit", "Quit", (*Model).cmdQuit},
	}
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func paletteItems() []model.PaletteItem {
	items := make([]model.PaletteItem, len(commands))
	for i, c := range commands {
		items[i] = model.PaletteItem{Name: c.name, Description: c.desc}
	}
	return items
}

// lookupCommand returns the local command text invokes, if any. Any other
// text, including unknown /words, is for the server.
func lookupCommand(text string) (command, string, bool) {
	if !strings.HasPrefix(text, "/") {
		return command{}, "", false
	}
	name, arg, _ := strings.Cut(text, " ")
	for _, c := range commands {
		if c.name == name {
			return c, strings.TrimSpace(arg), true
		}
	}
	return command{}, "", false
}

func (m *Model) cmdHelp(string) tea.Cmd {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.name, c.desc)
	}
	b.WriteString("\nKeys:\n")
	for _, k := range m.keys.Help() {
		h := k.Help()
		fmt.Fprintf(&b, "  %-12s %s\n", h.Key, h.Desc)
	}
	b.WriteString("\nAnything else is sent to the assistant.")
	m.chat.AddSystemMessage(b.String())
	return nil
}

func (m *Model) cmdClear(string) tea.Cmd {
	m.chat.Clear(m.controller.Phase() == session.Streaming)
	return nil
}

func (m *Model) cmdSession(string) tea.Cmd {
	current := m.controller.SessionID()
	if current == "" {
		current = "(not assigned yet)"
	}
	text := "Current session: " + current
	if prev := m.controller.StoredID(); prev != "" && prev != m.controller.SessionID() {
		text += "\nPrevious session: " + prev
	}
	m.chat.AddSystemMessage(text)
	return nil
}

func (m *Model) cmdReconnect(string) tea.Cmd {
	m.reconnect()
	return nil
}

func (m *Model) cmdTheme(arg string) tea.Cmd {
	if arg == "" {
		items := make([]model.PickerItem, len(style.ThemeNames))
		for i, name := range style.ThemeNames {
			items[i] = model.PickerItem{Name: name, Active: name == style.CurrentThemeName}
		}
		m.picker.SetItems(items)
		m.state = StatePicker
		return nil
	}
	if _, ok := style.Themes[arg]; !ok {
		m.chat.AddSystemMessage(fmt.Sprintf("Unknown theme %q. Available: %s", arg, strings.Join(style.ThemeNames, ", ")))
		return nil
	}
	return m.applyTheme(arg)
}

func (m *Model) cmdQuit(string) tea.Cmd {
	return tea.Quit
}
