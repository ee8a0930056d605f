package client

import "errors"

var (
	// ErrNotOpen is returned by Send when no connection is open.
	ErrNotOpen = errors.New("connection not open")

	// ErrMalformedMessage wraps every frame that ParseMessage rejects.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrStopped is returned by Start after Stop has been called.
	ErrStopped = errors.New("transport stopped")
)
