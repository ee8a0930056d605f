package client

import (
	"fmt"
	"net/url"
	"strings"
)

// ChatPath is the well-known WebSocket endpoint on the chat server.
const ChatPath = "/ws/chat"

// WebSocketURL derives the chat endpoint from the server's base URL: the
// scheme is upgraded (https→wss, anything else→ws), host and port are kept
// and the path is replaced by ChatPath.
func WebSocketURL(base string) (string, error) {
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse server url %q: missing host", base)
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = ChatPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}
