package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State is the lifecycle state of the current connection.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Options configures a Transport.
type Options struct {
	// URL is the ws:// or wss:// chat endpoint, see WebSocketURL.
	URL string

	Backoff          Backoff
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// EventBuffer sizes the event channel. Default: 64.
	EventBuffer int

	Logger *zap.Logger
}

// Transport owns the WebSocket connection to the chat server: it dials,
// reconnects with capped exponential backoff, parses inbound frames and
// publishes everything that happens as Events on a single channel.
//
// Every Connect starts a new connection generation. Goroutines belonging to an
// older generation may still finish, but their results are discarded, so at
// most one socket is live at a time.
type Transport struct {
	url          string
	dialer       *websocket.Dialer
	backoff      Backoff
	writeTimeout time.Duration
	logger       *zap.Logger

	events chan Event
	done   chan struct{}

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	dialCancel context.CancelFunc
	stopWatch  func() bool
	conn       *websocket.Conn
	state      State
	attempts   int
	gen        uint64
	timer      *time.Timer
	stopped    bool

	wmu sync.Mutex     // gorilla/websocket allows a single concurrent writer
	wg  sync.WaitGroup // dial and read goroutines
}

// New creates a Transport. It does not connect; call Start or Connect.
func New(opts Options) *Transport {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		url: opts.URL,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		backoff:      opts.Backoff.withDefaults(),
		writeTimeout: opts.WriteTimeout,
		logger:       logger.With(zap.String("component", "transport")),
		events:       make(chan Event, opts.EventBuffer),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Events returns the channel on which all transport events are delivered in
// order. It is never closed; select on Done as well.
func (t *Transport) Events() <-chan Event { return t.events }

// Done is closed once Stop has been called.
func (t *Transport) Done() <-chan struct{} { return t.done }

// URL returns the chat endpoint.
func (t *Transport) URL() string { return t.url }

// Backoff returns the reconnect policy in effect.
func (t *Transport) Backoff() Backoff { return t.backoff }

// State returns the current connection state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Attempts returns the number of reconnects scheduled since the last
// successful connection.
func (t *Transport) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Start connects and ties the transport's lifetime to ctx: cancelling ctx
// stops it.
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return ErrStopped
	}
	if t.stopWatch == nil {
		t.stopWatch = context.AfterFunc(ctx, t.Stop)
	}
	t.mu.Unlock()

	t.Connect()
	return nil
}

// Connect opens a new connection, replacing the current one. A pending
// reconnect timer is cancelled and an in-flight dial is abandoned. The dial
// itself runs in the background; its outcome arrives as a ConnectedEvent or
// DisconnectedEvent.
func (t *Transport) Connect() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopTimerLocked()
	if t.dialCancel != nil {
		t.dialCancel()
	}
	old := t.conn
	t.conn = nil
	t.gen++
	gen := t.gen
	t.state = StateConnecting
	dialCtx, cancel := context.WithCancel(t.ctx)
	t.dialCancel = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		closeConn(old)
	}
	t.logger.Info("connecting", zap.String("url", t.url), zap.Uint64("generation", gen))
	go t.dial(dialCtx, gen)
}

// Send transmits one user message. It fails with ErrNotOpen unless the
// current connection is open. Write failures are returned as is and do not
// trigger a reconnect.
func (t *Transport) Send(text string) error {
	t.mu.Lock()
	conn, state := t.conn, t.state
	t.mu.Unlock()
	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if err := conn.WriteJSON(ClientMessage{Message: text}); err != nil {
		t.logger.Error("send failed", zap.Error(err))
		return fmt.Errorf("send message: %w", err)
	}
	t.logger.Debug("message sent", zap.Int("bytes", len(text)))
	return nil
}

// Stop closes the connection, cancels any pending reconnect and waits for the
// transport's goroutines to exit. It is safe to call more than once.
func (t *Transport) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.stopTimerLocked()
	conn := t.conn
	t.conn = nil
	t.state = StateClosed
	t.gen++
	stopWatch := t.stopWatch
	close(t.done)
	t.cancel()
	t.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	if conn != nil {
		closeConn(conn)
	}
	t.wg.Wait()
	t.logger.Info("stopped")
}

func (t *Transport) dial(ctx context.Context, gen uint64) {
	defer t.wg.Done()

	conn, resp, err := t.dialer.DialContext(ctx, t.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		t.logger.Warn("dial failed", zap.Error(err), zap.Uint64("generation", gen))
		t.handleClose(gen, err)
		return
	}

	t.mu.Lock()
	if gen != t.gen || t.stopped {
		t.mu.Unlock()
		closeConn(conn)
		return
	}
	t.conn = conn
	t.state = StateOpen
	t.attempts = 0
	t.wg.Add(1)
	t.mu.Unlock()

	t.logger.Info("connected", zap.String("url", t.url), zap.Uint64("generation", gen))
	t.emit(ConnectedEvent{URL: t.url})
	go t.readLoop(conn, gen)
}

func (t *Transport) readLoop(conn *websocket.Conn, gen uint64) {
	defer t.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.handleClose(gen, err)
			return
		}
		m, err := ParseMessage(data)
		if err != nil {
			t.logger.Warn("dropping message", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}
		if !t.current(gen) {
			return
		}
		t.emit(MessageEvent{Message: m})
	}
}

// handleClose runs when the connection of generation gen is gone, whether it
// dropped or never opened. Closes of superseded generations are ignored.
func (t *Transport) handleClose(gen uint64, cause error) {
	t.mu.Lock()
	if gen != t.gen || t.stopped {
		t.mu.Unlock()
		return
	}
	conn := t.conn
	t.conn = nil
	t.state = StateClosed
	attempt, delay, ok := t.backoff.Next(t.attempts)
	if ok {
		t.attempts = attempt
	}
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if websocket.IsUnexpectedCloseError(cause, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		t.logger.Warn("connection lost", zap.Error(cause))
	} else {
		t.logger.Info("connection closed", zap.Error(cause))
	}

	t.emit(DisconnectedEvent{Err: cause, Final: !ok})
	if !ok {
		t.logger.Error("giving up after reconnect attempts", zap.Int("max", t.backoff.MaxAttempts))
		return
	}
	t.emit(ReconnectingEvent{Attempt: attempt, Max: t.backoff.MaxAttempts, Delay: delay})

	// Armed only after the events above are queued so a fast reconnect can
	// never overtake its own Disconnected/Reconnecting events.
	t.mu.Lock()
	if gen == t.gen && !t.stopped {
		t.logger.Info("reconnect scheduled", zap.Int("attempt", attempt), zap.Duration("delay", delay))
		t.timer = time.AfterFunc(delay, func() { t.reconnect(gen) })
	}
	t.mu.Unlock()
}

func (t *Transport) reconnect(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.stopped {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	t.Connect()
}

func (t *Transport) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen && !t.stopped
}

func (t *Transport) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

func (t *Transport) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func closeConn(conn *websocket.Conn) {
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = conn.Close()
}
