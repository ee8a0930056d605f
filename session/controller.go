package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/miosa/osa-chat/client"
	"github.com/miosa/osa-chat/store"
)

// SendFailedText is rendered when a submission could not be written.
const SendFailedText = "Failed to send message. Please try again."

// Phase is the Controller's position in the request cycle.
type Phase int

const (
	Idle      Phase = iota // processing=false, no active response
	Awaiting               // processing=true, no active response yet
	Streaming              // processing=true, active response present
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Controller interprets transport events and server frames, tracks session
// identity and the processing flag, and drives the Renderer and the Gate.
// It is not safe for concurrent use; feed it from a single loop.
type Controller struct {
	renderer Renderer
	store    store.Store
	sender   Sender
	input    Input
	logger   *zap.Logger
	gate     *Gate

	sessionID  string
	storedID   string
	processing bool
	active     *ActiveResponse
	last       string
}

func NewController(r Renderer, st store.Store, s Sender, in Input, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		renderer: r,
		store:    st,
		sender:   s,
		input:    in,
		logger:   logger.With(zap.String("component", "session")),
	}
	c.gate = &Gate{c: c}
	return c
}

// Start reads the identifier left by a previous run and leaves the gate
// disabled until the transport reports a connection.
func (c *Controller) Start() {
	c.gate.Disable()
	id, err := c.store.Load()
	switch {
	case err == nil:
		c.storedID = id
		c.logger.Info("previous session", zap.String("session_id", id))
	case errors.Is(err, store.ErrNotFound):
	default:
		c.logger.Warn("read stored session id", zap.Error(err))
	}
}

func (c *Controller) Gate() *Gate { return c.gate }

// Processing reports whether a response is in flight.
func (c *Controller) Processing() bool { return c.processing }

// Active returns the response being streamed, or nil.
func (c *Controller) Active() *ActiveResponse { return c.active }

// SessionID returns the identifier assigned on the current connection.
func (c *Controller) SessionID() string { return c.sessionID }

// StoredID returns the identifier read at startup.
func (c *Controller) StoredID() string { return c.storedID }

// LastResponse returns the text of the most recently completed response.
func (c *Controller) LastResponse() string { return c.last }

func (c *Controller) Phase() Phase {
	switch {
	case c.active != nil:
		return Streaming
	case c.processing:
		return Awaiting
	default:
		return Idle
	}
}

// HandleEvent applies one transport event.
func (c *Controller) HandleEvent(ev client.Event) {
	switch ev := ev.(type) {
	case client.ConnectedEvent:
		c.gate.Enable()
	case client.DisconnectedEvent:
		c.gate.Disable()
	case client.ReconnectingEvent:
		c.logger.Debug("reconnect pending", zap.Int("attempt", ev.Attempt), zap.Duration("delay", ev.Delay))
	case client.MessageEvent:
		c.HandleMessage(ev.Message)
	}
}

// HandleMessage applies one server frame.
func (c *Controller) HandleMessage(m client.Message) {
	if !m.Type.Known() {
		c.logger.Info("ignoring unknown message type", zap.String("type", string(m.Type)))
		return
	}
	switch m.Type {
	case client.TypeSessionID:
		c.sessionID = m.SessionID
		if err := c.store.Save(m.SessionID); err != nil {
			c.logger.Warn("persist session id", zap.Error(err))
		}
		c.logger.Info("session assigned", zap.String("session_id", m.SessionID))

	case client.TypeInitialMessage:
		c.renderer.AppendMessage(RoleAssistant, m.Content)

	case client.TypeMessageReceived:
		if c.active != nil {
			c.logger.Warn("message_received while streaming, ignored")
			return
		}
		c.processing = true
		c.renderer.ShowIndicator()

	case client.TypeStream:
		if c.active == nil {
			c.renderer.HideIndicator()
			c.active = &ActiveResponse{UnitID: c.renderer.AppendMessage(RoleAssistant, "")}
			if !c.processing {
				c.processing = true
				c.gate.Disable()
			}
		}
		c.active.append(m.Content)
		c.renderer.AppendToLast(m.Content)

	case client.TypeStreamEnd:
		if c.active != nil {
			c.last = c.active.Text()
			c.logger.Debug("response complete", zap.Int("chunks", c.active.Chunks), zap.Int("bytes", len(c.last)))
		}
		c.renderer.HideIndicator()
		c.finish()

	case client.TypeError:
		c.logger.Warn("server error", zap.String("message", m.Text))
		c.renderer.HideIndicator()
		c.renderer.AppendMessage(RoleError, m.Text)
		c.finish()
	}
}

// finish returns to Idle and re-enables input.
func (c *Controller) finish() {
	c.active = nil
	c.processing = false
	c.gate.Enable()
}

func (c *Controller) sendFailed(err error) {
	c.logger.Error("send failed", zap.Error(err))
	c.renderer.AppendMessage(RoleError, SendFailedText)
	c.processing = false
	c.gate.Enable()
}
