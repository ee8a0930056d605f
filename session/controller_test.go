package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/miosa/osa-chat/client"
	"github.com/miosa/osa-chat/store"
)

type harness struct {
	c    *Controller
	r    *fakeRenderer
	s    *fakeSender
	in   *fakeInput
	st   *store.Memory
	logs *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		r:    &fakeRenderer{},
		s:    &fakeSender{state: client.StateOpen},
		in:   &fakeInput{},
		st:   &store.Memory{},
		logs: logs,
	}
	h.c = NewController(h.r, h.st, h.s, h.in, zap.New(core))
	h.c.Start()
	h.c.HandleEvent(client.ConnectedEvent{URL: "ws://localhost:8000/ws/chat"})
	return h
}

func (h *harness) recv(msgs ...client.Message) {
	for _, m := range msgs {
		h.c.HandleEvent(client.MessageEvent{Message: m})
	}
}

func stream(s string) client.Message {
	return client.Message{Type: client.TypeStream, Content: s}
}

var (
	received  = client.Message{Type: client.TypeMessageReceived, Status: "processing"}
	streamEnd = client.Message{Type: client.TypeStreamEnd}
)

func TestController_HelloScenario(t *testing.T) {
	h := newHarness(t)

	require.True(t, h.c.Gate().Submit("hi"))
	assert.Equal(t, []string{"hi"}, h.s.sent)
	assert.Equal(t, Awaiting, h.c.Phase())
	assert.False(t, h.c.Gate().Enabled())

	h.recv(received)
	assert.True(t, h.r.indicator)

	h.recv(stream("He"))
	assert.False(t, h.r.indicator)
	assert.Equal(t, Streaming, h.c.Phase())
	require.NotNil(t, h.c.Active())

	h.recv(stream("llo"), streamEnd)

	require.Len(t, h.r.units, 2)
	assert.Equal(t, unit{id: "u1", role: RoleUser, text: "hi"}, h.r.units[0])
	assert.Equal(t, RoleAssistant, h.r.last().role)
	assert.Equal(t, "Hello", h.r.last().text)
	assert.False(t, h.c.Processing())
	assert.Nil(t, h.c.Active())
	assert.True(t, h.c.Gate().Enabled())
	assert.True(t, h.in.enabled)
	assert.Equal(t, "Hello", h.c.LastResponse())
}

func TestController_ChunksConcatenateInOrder(t *testing.T) {
	chunks := []string{"The ", "quick ", "", "brown ", "fox", "\n```go\n", "x := 1\n", "```"}
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("go"))
	h.recv(received)

	want := ""
	for _, c := range chunks {
		h.recv(stream(c))
		want += c
		assert.Equal(t, want, h.c.Active().Text())
	}
	unitID := h.c.Active().UnitID
	h.recv(streamEnd)

	assert.Equal(t, want, h.r.last().text)
	assert.Equal(t, unitID, h.r.last().id)
	assert.Len(t, h.r.units, 2, "one user echo and one assistant unit")
}

func TestController_SubmitWhileProcessingIsNoop(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("first"))
	h.recv(received, stream("partial"))

	h.in.buffer = "second"
	units := len(h.r.units)
	active := h.c.Active()

	// Force the gate open to check that the processing flag alone blocks.
	h.c.Gate().Enable()
	assert.False(t, h.c.Gate().Submit("second"))

	assert.Equal(t, "second", h.in.buffer)
	assert.Len(t, h.r.units, units)
	assert.Equal(t, []string{"first"}, h.s.sent)
	assert.Same(t, active, h.c.Active())
}

func TestController_BlankSubmitIsNoop(t *testing.T) {
	h := newHarness(t)
	for _, text := range []string{"", "   ", "\t\n"} {
		assert.False(t, h.c.Gate().Submit(text))
	}
	assert.Empty(t, h.s.sent)
	assert.Empty(t, h.r.units)
	assert.Empty(t, h.in.committed)
	assert.True(t, h.c.Gate().Enabled())
}

func TestController_SubmitTrimsText(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("  hello there \n"))
	assert.Equal(t, []string{"hello there"}, h.s.sent)
	assert.Equal(t, "hello there", h.r.last().text)
}

func TestController_SubmitRequiresOpenConnection(t *testing.T) {
	h := newHarness(t)
	for _, state := range []client.State{client.StateConnecting, client.StateClosed} {
		h.s.state = state
		assert.False(t, h.c.Gate().Submit("hi"), state.String())
	}
	assert.Empty(t, h.s.sent)
	assert.Empty(t, h.r.units)
}

func TestController_SubmitWhileDisabledIsNoop(t *testing.T) {
	h := newHarness(t)
	h.c.HandleEvent(client.DisconnectedEvent{Err: errors.New("eof")})
	assert.False(t, h.c.Gate().Enabled())
	assert.False(t, h.in.enabled)

	assert.False(t, h.c.Gate().Submit("hi"))
	assert.Empty(t, h.s.sent)

	h.c.HandleEvent(client.ConnectedEvent{})
	assert.True(t, h.c.Gate().Enabled())
	assert.True(t, h.c.Gate().Submit("hi"))
}

func TestController_SendFailure(t *testing.T) {
	h := newHarness(t)
	h.s.err = errors.New("broken pipe")

	assert.False(t, h.c.Gate().Submit("hi"))

	require.Len(t, h.r.units, 2)
	assert.Equal(t, RoleUser, h.r.units[0].role)
	assert.Equal(t, unit{id: "u2", role: RoleError, text: SendFailedText}, h.r.units[1])
	assert.False(t, h.c.Processing())
	assert.True(t, h.c.Gate().Enabled())
	assert.Equal(t, 1, h.logs.FilterMessage("send failed").Len())
}

func TestController_SessionIDIsPersisted(t *testing.T) {
	h := newHarness(t)
	h.recv(client.Message{Type: client.TypeSessionID, SessionID: "old"})
	h.recv(client.Message{Type: client.TypeSessionID, SessionID: "abc123"})

	id, err := h.st.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "abc123", h.c.SessionID())
	assert.Empty(t, h.s.sent, "the identifier is never sent back")
}

func TestController_StartReadsStoredID(t *testing.T) {
	st := &store.Memory{}
	require.NoError(t, st.Save("from-last-run"))

	c := NewController(&fakeRenderer{}, st, &fakeSender{}, &fakeInput{}, zaptest.NewLogger(t))
	c.Start()
	assert.Equal(t, "from-last-run", c.StoredID())
	assert.False(t, c.Gate().Enabled(), "input stays disabled until connected")
}

func TestController_StoreFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewController(&fakeRenderer{}, failingStore{}, &fakeSender{}, &fakeInput{}, zap.New(core))
	c.Start()
	c.HandleMessage(client.Message{Type: client.TypeSessionID, SessionID: "abc123"})

	assert.Equal(t, "abc123", c.SessionID())
	assert.Equal(t, 1, logs.FilterMessage("read stored session id").Len())
	assert.Equal(t, 1, logs.FilterMessage("persist session id").Len())
}

func TestController_InitialMessage(t *testing.T) {
	h := newHarness(t)
	h.recv(client.Message{Type: client.TypeInitialMessage, Content: "Hello! How can I help you today?"})

	require.Len(t, h.r.units, 1)
	assert.Equal(t, RoleAssistant, h.r.last().role)
	assert.Equal(t, Idle, h.c.Phase())
}

func TestController_ErrorWhileStreaming(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("hi"))
	h.recv(received, stream("par"), stream("tial"))
	before := len(h.r.units)

	h.recv(client.Message{Type: client.TypeError, Text: "boom"})

	assert.Nil(t, h.c.Active())
	assert.False(t, h.c.Processing())
	assert.True(t, h.c.Gate().Enabled())
	assert.False(t, h.r.indicator)
	assert.Len(t, h.r.units, before+1)
	assert.Equal(t, 1, h.r.containing("boom"))
	assert.Equal(t, RoleError, h.r.last().role)
	assert.Equal(t, "partial", h.r.units[before-1].text, "partial response stays rendered")
}

func TestController_ErrorWhileAwaitingHidesIndicator(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("hi"))
	h.recv(received)
	require.True(t, h.r.indicator)

	h.recv(client.Message{Type: client.TypeError, Text: "LLM processing error."})
	assert.False(t, h.r.indicator)
	assert.Equal(t, Idle, h.c.Phase())
}

func TestController_MessageReceivedWhileStreamingIsIgnored(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("hi"))
	h.recv(received, stream("a"))
	active := h.c.Active()

	h.recv(received)
	assert.Same(t, active, h.c.Active())
	assert.False(t, h.r.indicator)
	assert.Equal(t, Streaming, h.c.Phase())
}

func TestController_UnsolicitedStreamStartsResponse(t *testing.T) {
	h := newHarness(t)
	h.recv(stream("surprise"))

	assert.Equal(t, Streaming, h.c.Phase())
	assert.False(t, h.c.Gate().Enabled())
	h.recv(streamEnd)
	assert.Equal(t, "surprise", h.r.last().text)
	assert.Equal(t, Idle, h.c.Phase())
}

func TestController_UnknownTypeIsIgnored(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("hi"))
	phase := h.c.Phase()
	units := len(h.r.units)

	h.recv(client.Message{Type: "typing"})

	assert.Equal(t, phase, h.c.Phase())
	assert.Len(t, h.r.units, units)
	assert.Equal(t, 1, h.logs.FilterMessage("ignoring unknown message type").Len())
}

func TestController_DisconnectKeepsResponseState(t *testing.T) {
	h := newHarness(t)
	require.True(t, h.c.Gate().Submit("hi"))
	h.recv(received, stream("He"))

	h.c.HandleEvent(client.DisconnectedEvent{Err: errors.New("eof")})
	h.c.HandleEvent(client.ReconnectingEvent{Attempt: 1, Max: 5})
	assert.Equal(t, Streaming, h.c.Phase())

	h.c.HandleEvent(client.ConnectedEvent{})
	h.recv(stream("llo"), streamEnd)
	assert.Equal(t, "Hello", h.r.last().text)
	assert.Equal(t, Idle, h.c.Phase())
}

func TestController_EnableFocusesInput(t *testing.T) {
	h := newHarness(t)
	focused := h.in.focused
	require.True(t, h.c.Gate().Submit("hi"))
	h.recv(received, stream("x"), streamEnd)
	assert.Equal(t, focused+1, h.in.focused)
	assert.Equal(t, []string{"hi"}, h.in.committed)
}
