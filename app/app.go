// Package app wires the chat session to the terminal: it owns the bubbletea
// model, relays transport events to the session controller and handles keys
// and local commands.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/miosa/osa-chat/client"
	"github.com/miosa/osa-chat/config"
	"github.com/miosa/osa-chat/model"
	"github.com/miosa/osa-chat/msg"
	"github.com/miosa/osa-chat/session"
	"github.com/miosa/osa-chat/store"
	"github.com/miosa/osa-chat/style"
)

// Transport is the part of client.Transport the UI drives.
type Transport interface {
	Events() <-chan client.Event
	Done() <-chan struct{}
	Send(text string) error
	State() client.State
	Connect()
	URL() string
}

// HealthChecker probes the server's health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) (*client.HealthResponse, error)
}

// TokenCounter counts tokens in a completed response.
type TokenCounter interface {
	Count(text string) (n int, exact bool)
}

// Options configures New. Transport and Store are required.
type Options struct {
	Transport  Transport
	Store      store.Store
	Health     HealthChecker
	Tokens     TokenCounter
	Logger     *zap.Logger
	Version    string
	ProfileDir string
	Config     config.Config
}

type Model struct {
	chat       *model.ChatModel
	input      *model.InputModel
	status     *model.StatusModel
	toasts     *model.ToastsModel
	banner     model.BannerModel
	picker     model.PickerModel
	palette    model.PaletteModel
	controller *session.Controller
	transport  Transport
	health     HealthChecker
	tokens     TokenCounter
	logger     *zap.Logger
	profileDir string
	cfg        config.Config
	state      State
	keys       KeyMap
	width      int
	height     int
	everUp     bool // a connection has opened at least once
	cutOff     bool // the connection dropped while a reply was in flight
	confirm    bool // Ctrl+C pressed once on an empty input
}

func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chat := model.NewChat(80, 20)
	if opts.Config.WordWrap > 0 {
		chat.SetWordWrap(opts.Config.WordWrap)
	}
	input := model.NewInput()
	input.SetCommands(commandNames())

	m := &Model{
		chat:       chat,
		input:      input,
		status:     model.NewStatus(),
		toasts:     model.NewToasts(),
		banner:     model.NewBanner(opts.Version),
		picker:     model.NewPicker(),
		palette:    model.NewPalette(),
		transport:  opts.Transport,
		health:     opts.Health,
		tokens:     opts.Tokens,
		logger:     logger.With(zap.String("component", "app")),
		profileDir: opts.ProfileDir,
		cfg:        opts.Config,
		keys:       DefaultKeyMap(),
		width:      80,
		height:     24,
	}
	m.controller = session.NewController(chat, opts.Store, opts.Transport, input, logger)
	m.controller.Start()
	m.banner.SetEndpoint(opts.Transport.URL())
	m.banner.SetPrevious(m.controller.StoredID())
	return m
}

// Controller exposes the session controller.
func (m *Model) Controller() *session.Controller { return m.controller }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.tickCmd(), m.checkHealth(), tea.WindowSize())
}

func (m *Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(rawMsg)
	m.layout()
	return m, cmd
}

func (m *Model) update(rawMsg tea.Msg) tea.Cmd {
	switch v := rawMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.input.SetWidth(v.Width)
		m.banner.SetWidth(v.Width)
		m.picker.SetWidth(v.Width)
		return nil
	case tea.KeyMsg:
		return m.handleKey(v)
	case msg.TransportEvent:
		return m.handleTransport(v.Event)
	case msg.TransportStopped:
		m.logger.Debug("transport stopped, listener exits")
		return nil
	case msg.HealthResult:
		if v.Err != nil {
			m.logger.Warn("health check failed", zap.Error(v.Err))
			m.toasts.Add("Health check failed", model.ToastWarning)
			return nil
		}
		m.logger.Debug("health check", zap.String("status", v.Status))
		return nil
	case msg.TokenCount:
		m.status.SetTokens(v.Count, v.Exact)
		return nil
	case msg.TickMsg:
		m.toasts.Tick()
		return m.tickCmd()
	case msg.ThemeSaved:
		if v.Err != nil {
			m.logger.Warn("save theme", zap.Error(v.Err))
			m.toasts.Add("Could not save theme", model.ToastError)
			return nil
		}
		m.toasts.Add("Theme: "+v.Name, model.ToastInfo)
		return nil
	case model.PickerChoice:
		m.state = StateChat
		return m.applyTheme(v.Name)
	case model.PickerCancel:
		m.state = StateChat
		return nil
	case model.PaletteExecuteMsg:
		m.state = StateChat
		if c, arg, ok := lookupCommand(v.Command); ok {
			return c.run(m, arg)
		}
		return nil
	case model.PaletteDismissMsg:
		m.state = StateChat
		return nil
	}

	// Cursor blinks, spinner ticks and mouse events.
	if m.state == StatePalette {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(rawMsg)
		return tea.Batch(cmd, m.chat.Update(rawMsg))
	}
	return tea.Batch(m.input.Update(rawMsg), m.chat.Update(rawMsg))
}

func (m *Model) handleTransport(ev client.Event) tea.Cmd {
	wasIndicator := m.chat.IndicatorVisible()
	m.controller.HandleEvent(ev)

	cmds := []tea.Cmd{m.listen()}
	switch ev := ev.(type) {
	case client.ConnectedEvent:
		if m.everUp {
			m.toasts.Add("Reconnected", model.ToastInfo)
		}
		m.everUp = true
		m.status.SetPhase(model.PhaseConnected)
	case client.DisconnectedEvent:
		m.logger.Info("input disabled until reconnect", zap.Bool("final", ev.Final))
		if m.controller.Processing() && !m.cutOff {
			m.cutOff = true
			m.logger.Warn("connection lost mid-reply, input stays locked until it ends",
				zap.Stringer("phase", m.controller.Phase()))
			m.toasts.Add("Reply interrupted", model.ToastWarning)
		}
		if ev.Final {
			m.status.SetPhase(model.PhaseOffline)
			m.toasts.Add("Disconnected. Press Ctrl+R to reconnect.", model.ToastError)
		} else {
			m.status.SetPhase(model.PhaseReconnecting)
			if m.everUp {
				m.toasts.Add("Connection lost", model.ToastWarning)
			} else {
				m.toasts.Add("Cannot reach server", model.ToastWarning)
			}
		}
	case client.ReconnectingEvent:
		m.status.SetReconnect(ev.Attempt, ev.Max, ev.Delay)
	case client.MessageEvent:
		switch ev.Message.Type {
		case client.TypeSessionID:
			m.status.SetSession(ev.Message.SessionID)
		case client.TypeStreamEnd:
			cmds = append(cmds, m.countTokens(m.controller.LastResponse()))
		}
	}

	if m.controller.Phase() == session.Idle {
		m.cutOff = false
	}
	m.status.SetBusy(m.busyLabel())
	if !wasIndicator && m.chat.IndicatorVisible() {
		cmds = append(cmds, m.chat.Tick())
	}
	cmds = append(cmds, m.input.Pending())
	return tea.Batch(cmds...)
}

func (m *Model) busyLabel() string {
	p := m.controller.Phase()
	if m.cutOff && p != session.Idle {
		return "reply interrupted, input locked until it ends"
	}
	switch p {
	case session.Awaiting:
		return "waiting for reply"
	case session.Streaming:
		return "receiving reply"
	default:
		return ""
	}
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	if m.confirm {
		if key.Matches(k, m.keys.Cancel) {
			return tea.Quit
		}
		m.confirm = false
		return nil
	}
	switch m.state {
	case StatePicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(k)
		return cmd
	case StatePalette:
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return cmd
	}

	switch {
	case key.Matches(k, m.keys.Cancel):
		if m.input.Value() == "" {
			m.confirm = true
			return nil
		}
		m.input.Reset()
		return nil
	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return tea.Quit
		}
		return nil
	case key.Matches(k, m.keys.Escape):
		m.input.Reset()
		return nil
	case key.Matches(k, m.keys.Reconnect):
		m.reconnect()
		return nil
	case key.Matches(k, m.keys.Palette):
		m.state = StatePalette
		return m.palette.Open(paletteItems(), m.overlayWidth())
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		return m.chat.Update(k)
	case key.Matches(k, m.keys.Submit):
		return m.submit(m.input.Value())
	}
	return m.input.Update(k)
}

// submit runs a local command or hands text to the session's gate.
func (m *Model) submit(raw string) tea.Cmd {
	text := strings.TrimSpace(raw)
	if c, arg, ok := lookupCommand(text); ok {
		m.input.Commit(text)
		return c.run(m, arg)
	}
	if m.controller.Gate().Submit(text) {
		m.status.SetBusy(m.busyLabel())
	}
	return m.input.Pending()
}

// reconnect replaces the connection, cancelling any pending retry.
func (m *Model) reconnect() {
	m.logger.Info("manual reconnect")
	m.status.SetPhase(model.PhaseConnecting)
	m.toasts.Add("Reconnecting...", model.ToastInfo)
	m.transport.Connect()
}

func (m *Model) applyTheme(name string) tea.Cmd {
	style.SetTheme(name)
	m.chat.Restyle()
	m.cfg.Theme = name
	if m.profileDir == "" {
		return nil
	}
	dir, cfg := m.profileDir, m.cfg
	return func() tea.Msg {
		return msg.ThemeSaved{Name: name, Err: config.Save(dir, cfg)}
	}
}

func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.banner.View())
	sections = append(sections, m.chat.View())
	if t := m.toasts.View(m.width); t != "" {
		sections = append(sections, t)
	}
	if o := m.overlayView(); o != "" {
		sections = append(sections, o)
	}
	sections = append(sections, m.status.View())
	sections = append(sections, m.rule())
	sections = append(sections, m.input.View())
	if m.confirm {
		sections = append(sections, "  Press Ctrl+C again to quit, or any key to cancel.")
	}
	return strings.Join(sections, "\n")
}

func (m *Model) overlayView() string {
	switch m.state {
	case StatePicker:
		return m.picker.View()
	case StatePalette:
		return m.palette.View()
	}
	return ""
}

func (m *Model) overlayWidth() int {
	w := m.width / 2
	if w < 50 {
		w = 50
	}
	if w > m.width {
		w = m.width
	}
	return w
}

func (m *Model) rule() string {
	return lipgloss.NewStyle().Foreground(style.Border).Render(strings.Repeat("─", max(m.width, 1)))
}

// layout gives the chat viewport whatever the other sections leave.
func (m *Model) layout() {
	reserved := 1 + 1 + 1 + 1 // header, status, rule, input
	reserved += countLines(m.toasts.View(m.width))
	reserved += countLines(m.overlayView())
	if m.confirm {
		reserved++
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.chat.SetSize(m.width, h)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// listen waits for the next transport event. It is re-armed after every
// event, so events are handled one at a time and in order.
func (m *Model) listen() tea.Cmd {
	t := m.transport
	return func() tea.Msg {
		select {
		case ev := <-t.Events():
			return msg.TransportEvent{Event: ev}
		case <-t.Done():
			return msg.TransportStopped{}
		}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}

func (m *Model) checkHealth() tea.Cmd {
	h := m.health
	if h == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := h.Health(ctx)
		if err != nil {
			return msg.HealthResult{Err: err}
		}
		if resp.Status != "ok" {
			return msg.HealthResult{Status: resp.Status, Err: fmt.Errorf("status %q", resp.Status)}
		}
		return msg.HealthResult{Status: resp.Status}
	}
}

func (m *Model) countTokens(text string) tea.Cmd {
	c := m.tokens
	if c == nil || text == "" {
		return nil
	}
	return func() tea.Msg {
		n, exact := c.Count(text)
		return msg.TokenCount{Count: n, Exact: exact}
	}
}
