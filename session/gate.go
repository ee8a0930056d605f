package session

import (
	"strings"

	"go.uber.org/zap"

	"github.com/miosa/osa-chat/client"
)

// Gate is the only path from the input buffer to the transport. It is enabled
// and disabled by the Controller in response to transport and protocol events.
type Gate struct {
	c       *Controller
	enabled bool
}

// Enabled reports whether submissions are currently accepted.
func (g *Gate) Enabled() bool { return g.enabled }

// Submit sends text to the server. It is a no-op returning false when the
// trimmed text is blank, a response is in flight, the gate is disabled or the
// connection is not open. Otherwise the text is echoed as a user unit, the
// input is cleared, the gate disables itself and the text is sent. Submit
// returns true when the send succeeded; a failed send is rendered as a local
// error unit and re-enables the gate.
func (g *Gate) Submit(text string) bool {
	text = strings.TrimSpace(text)
	c := g.c
	switch {
	case text == "":
		return false
	case c.processing:
		c.logger.Debug("submit ignored, response in flight")
		return false
	case !g.enabled:
		c.logger.Debug("submit ignored, input disabled")
		return false
	case c.sender.State() != client.StateOpen:
		c.logger.Debug("submit ignored, connection not open", zap.Stringer("state", c.sender.State()))
		return false
	}

	c.renderer.AppendMessage(RoleUser, text)
	c.input.Commit(text)
	g.Disable()

	if err := c.sender.Send(text); err != nil {
		c.sendFailed(err)
		return false
	}
	c.processing = true
	return true
}

// Enable accepts submissions again and focuses the input.
func (g *Gate) Enable() {
	g.enabled = true
	g.c.input.SetEnabled(true)
}

func (g *Gate) Disable() {
	g.enabled = false
	g.c.input.SetEnabled(false)
}
