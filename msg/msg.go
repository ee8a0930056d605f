// Package msg defines the tea.Msg types dispatched within the chat client.
package msg

import "github.com/miosa/osa-chat/client"

// -- Transport --

// TransportEvent carries one event read from the transport's event channel.
type TransportEvent struct {
	Event client.Event
}

// TransportStopped is delivered once the transport has been stopped; the
// listener is not re-armed after it.
type TransportStopped struct{}

// -- Lifecycle --

// HealthResult from GET /health.
type HealthResult struct {
	Status string
	Err    error
}

// TickMsg drives once-per-second housekeeping (toasts, reconnect countdown).
type TickMsg struct{}

// -- Derived data --

// TokenCount of the most recently completed response.
type TokenCount struct {
	Count int
	Exact bool
}

// ThemeSaved reports the outcome of persisting a theme choice.
type ThemeSaved struct {
	Name string
	Err  error
}
