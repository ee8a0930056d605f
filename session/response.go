package session

import "strings"

// ActiveResponse is the assistant reply currently being streamed.
type ActiveResponse struct {
	UnitID string
	Chunks int

	buf strings.Builder
}

func (r *ActiveResponse) append(chunk string) {
	r.buf.WriteString(chunk)
	r.Chunks++
}

// Text returns the concatenation of all chunks received so far.
func (r *ActiveResponse) Text() string {
	return r.buf.String()
}
