package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miosa/osa-chat/client"
)

type unit struct {
	id   string
	role Role
	text string
}

type fakeRenderer struct {
	units     []unit
	indicator bool
}

func (r *fakeRenderer) AppendMessage(role Role, text string) string {
	id := fmt.Sprintf("u%d", len(r.units)+1)
	r.units = append(r.units, unit{id: id, role: role, text: text})
	return id
}

func (r *fakeRenderer) AppendToLast(text string) {
	if len(r.units) == 0 {
		return
	}
	r.units[len(r.units)-1].text += text
}

func (r *fakeRenderer) ShowIndicator() { r.indicator = true }
func (r *fakeRenderer) HideIndicator() { r.indicator = false }

func (r *fakeRenderer) last() unit { return r.units[len(r.units)-1] }

func (r *fakeRenderer) containing(s string) int {
	n := 0
	for _, u := range r.units {
		if strings.Contains(u.text, s) {
			n++
		}
	}
	return n
}

type fakeSender struct {
	state client.State
	sent  []string
	err   error
}

func (s *fakeSender) Send(text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSender) State() client.State { return s.state }

type fakeInput struct {
	buffer    string
	enabled   bool
	focused   int
	committed []string
}

func (in *fakeInput) Commit(text string) {
	in.committed = append(in.committed, text)
	in.buffer = ""
}

func (in *fakeInput) SetEnabled(enabled bool) {
	in.enabled = enabled
	if enabled {
		in.focused++
	}
}

type failingStore struct{}

func (failingStore) Load() (string, error) { return "", errors.New("disk on fire") }
func (failingStore) Save(string) error     { return errors.New("disk on fire") }
func (failingStore) Clear() error          { return nil }
