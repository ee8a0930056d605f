// Package session holds the chat session state machine: the Controller that
// classifies server frames and the Gate that guards user submissions.
package session

import "github.com/miosa/osa-chat/client"

// Role of a rendered display unit.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleError // assistant unit rendered highlighted
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleError:
		return "error"
	default:
		return "unknown"
	}
}

// Renderer presents the conversation. The Controller never touches the
// presentation any other way.
type Renderer interface {
	// AppendMessage adds a new display unit and returns its id.
	AppendMessage(role Role, text string) string
	// AppendToLast appends text to the most recent display unit.
	AppendToLast(text string)
	ShowIndicator()
	HideIndicator()
}

// Sender is the outbound half of the transport.
type Sender interface {
	Send(text string) error
	State() client.State
}

// Input is the editable input buffer behind the Gate.
type Input interface {
	// Commit clears the buffer after text has been accepted for sending.
	Commit(text string)
	// SetEnabled toggles editing; enabling also focuses the input.
	SetEnabled(enabled bool)
}
