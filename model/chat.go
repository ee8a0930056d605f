package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/miosa/osa-chat/markdown"
	"github.com/miosa/osa-chat/session"
	"github.com/miosa/osa-chat/style"
)

type unitKind int

const (
	kindUser unitKind = iota
	kindAssistant
	kindError
	kindSystem
)

func kindOf(r session.Role) unitKind {
	switch r {
	case session.RoleUser:
		return kindUser
	case session.RoleError:
		return kindError
	default:
		return kindAssistant
	}
}

// Unit is one rendered entry of the conversation.
type Unit struct {
	ID        string
	Kind      unitKind
	Content   string
	Timestamp time.Time

	rendered string
	width    int // width rendered was produced for; 0 = stale
}

// ChatModel is a scrollable viewport that displays the conversation. It
// implements session.Renderer; system notes added with AddSystemMessage are
// never the target of AppendToLast.
type ChatModel struct {
	vp       viewport.Model
	units    []*Unit
	last     *Unit // most recent unit created by AppendMessage
	activity ActivityModel
	width    int
	height   int
	wrap     int
	follow   bool // keep the view pinned to the bottom
}

var _ session.Renderer = (*ChatModel)(nil)

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) *ChatModel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	m := &ChatModel{
		vp:       vp,
		activity: NewActivity(),
		width:    width,
		height:   height,
		wrap:     markdown.DefaultWidth,
		follow:   true,
	}
	m.refresh()
	return m
}

// AppendMessage adds a unit for role and scrolls to the bottom.
func (m *ChatModel) AppendMessage(role session.Role, text string) string {
	u := &Unit{
		ID:        uuid.NewString(),
		Kind:      kindOf(role),
		Content:   text,
		Timestamp: time.Now(),
	}
	m.units = append(m.units, u)
	m.last = u
	m.follow = true
	m.refresh()
	return u.ID
}

// AppendToLast appends text to the unit created by the latest AppendMessage.
func (m *ChatModel) AppendToLast(text string) {
	if m.last == nil || text == "" {
		return
	}
	m.last.Content += text
	m.last.width = 0
	m.refresh()
}

// ShowIndicator displays the typing indicator below the last unit. Call
// Tick afterwards to animate it.
func (m *ChatModel) ShowIndicator() {
	m.activity.Start()
	m.refresh()
}

// HideIndicator removes the typing indicator.
func (m *ChatModel) HideIndicator() {
	if !m.activity.IsActive() {
		return
	}
	m.activity.Stop()
	m.refresh()
}

// IndicatorVisible reports whether the typing indicator is shown.
func (m *ChatModel) IndicatorVisible() bool { return m.activity.IsActive() }

// Tick starts the indicator animation.
func (m *ChatModel) Tick() tea.Cmd { return m.activity.Tick() }

// AddSystemMessage appends a dimmed, client-generated note.
func (m *ChatModel) AddSystemMessage(text string) {
	m.units = append(m.units, &Unit{
		ID:        uuid.NewString(),
		Kind:      kindSystem,
		Content:   text,
		Timestamp: time.Now(),
	})
	m.follow = true
	m.refresh()
}

// Units returns the conversation in display order.
func (m *ChatModel) Units() []*Unit { return m.units }

// Last returns the unit AppendToLast writes to, or nil.
func (m *ChatModel) Last() *Unit { return m.last }

// Clear removes every unit. With keepLast the unit AppendToLast writes to
// survives, so a reply still streaming keeps rendering. The indicator state
// is kept.
func (m *ChatModel) Clear(keepLast bool) {
	m.units = nil
	if keepLast && m.last != nil {
		m.units = []*Unit{m.last}
	} else {
		m.last = nil
	}
	m.refresh()
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// SetWordWrap sets the maximum markdown wrap width.
func (m *ChatModel) SetWordWrap(n int) {
	if n > 0 {
		m.wrap = n
		m.invalidate()
	}
}

// Restyle re-renders every unit, e.g. after a theme change.
func (m *ChatModel) Restyle() {
	m.invalidate()
}

func (m *ChatModel) invalidate() {
	for _, u := range m.units {
		u.width = 0
	}
	m.refresh()
}

// Update forwards spinner ticks to the indicator and scroll keys and mouse
// events to the viewport.
func (m *ChatModel) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		if m.activity.IsActive() {
			m.refresh()
		}
		return cmd
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	m.follow = m.vp.AtBottom()
	return cmd
}

// View returns the rendered viewport content.
func (m *ChatModel) View() string {
	return m.vp.View()
}

// refresh re-renders the conversation into the viewport, following the
// bottom unless the user scrolled up.
func (m *ChatModel) refresh() {
	m.vp.SetContent(m.renderAll())
	if m.follow {
		m.vp.GotoBottom()
	}
}

// renderAll builds the full string of all rendered units.
func (m *ChatModel) renderAll() string {
	if len(m.units) == 0 && !m.activity.IsActive() {
		return style.Faint.Render("  No messages yet. Type below to get started.")
	}

	width := m.contentWidth()
	var sb strings.Builder
	for i, u := range m.units {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if u.width != width {
			u.rendered = renderUnit(u, width)
			u.width = width
		}
		sb.WriteString(u.rendered)
	}
	if m.activity.IsActive() {
		if len(m.units) > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("  " + m.activity.View())
	}
	return sb.String()
}

// contentWidth is the markdown wrap width inside a unit's left border.
func (m *ChatModel) contentWidth() int {
	w := m.width - 4
	if w > m.wrap {
		w = m.wrap
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderUnit converts a single unit to a display string.
func renderUnit(u *Unit, width int) string {
	switch u.Kind {
	case kindUser:
		return style.UnitUser.Render(style.UserLabel.Render("❯ You") + "\n" + u.Content)

	case kindAssistant:
		body := markdown.RenderPartial(u.Content, width)
		return style.UnitAssistant.Render(style.AssistantLabel.Render("◈ Assistant") + "\n" + body)

	case kindError:
		return style.UnitError.Render(style.ErrorLabel.Render("✘ Error") + "\n" + u.Content)

	case kindSystem:
		return style.UnitSystem.Render(u.Content)

	default:
		return u.Content
	}
}
