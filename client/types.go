package client

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates server frames.
type MessageType string

const (
	TypeSessionID       MessageType = "session_id"
	TypeInitialMessage  MessageType = "initial_message"
	TypeMessageReceived MessageType = "message_received"
	TypeStream          MessageType = "stream"
	TypeStreamEnd       MessageType = "stream_end"
	TypeError           MessageType = "error"
)

// Known reports whether t is one of the frame types the client understands.
func (t MessageType) Known() bool {
	switch t {
	case TypeSessionID, TypeInitialMessage, TypeMessageReceived,
		TypeStream, TypeStreamEnd, TypeError:
		return true
	}
	return false
}

// Message is a parsed server frame. Only the fields required by Type are
// guaranteed to be meaningful.
type Message struct {
	Type      MessageType
	SessionID string // session_id, optionally stream_end
	Content   string // initial_message, stream
	Text      string // error
	Status    string // message_received
}

// ClientMessage is the only frame the client sends.
type ClientMessage struct {
	Message string `json:"message"`
}

// HealthResponse from GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse for API errors (FastAPI style).
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// rawMessage keeps presence information so required fields can be checked.
type rawMessage struct {
	Type      *string `json:"type"`
	SessionID *string `json:"session_id"`
	Content   *string `json:"content"`
	Message   *string `json:"message"`
	Status    *string `json:"status"`
}

// ParseMessage decodes one server frame. Frames that are not JSON objects,
// carry no string "type", or miss a field required by their type are reported
// as ErrMalformedMessage. Unknown types decode without error.
func ParseMessage(data []byte) (Message, error) {
	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if raw.Type == nil {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}

	m := Message{
		Type:      MessageType(*raw.Type),
		SessionID: deref(raw.SessionID),
		Content:   deref(raw.Content),
		Text:      deref(raw.Message),
		Status:    deref(raw.Status),
	}

	switch m.Type {
	case TypeSessionID:
		if raw.SessionID == nil {
			return Message{}, missingField(m.Type, "session_id")
		}
	case TypeInitialMessage, TypeStream:
		if raw.Content == nil {
			return Message{}, missingField(m.Type, "content")
		}
	case TypeError:
		if raw.Message == nil {
			return Message{}, missingField(m.Type, "message")
		}
	}
	return m, nil
}

func missingField(t MessageType, field string) error {
	return fmt.Errorf("%w: %s without %s", ErrMalformedMessage, t, field)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
