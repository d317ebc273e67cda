/*
Package reconnect implements the client-side reconnection controller.

The controller owns one logical connection to a relay and drives it through
Idle → Connecting → Open, re-entering Connecting through Reconnecting with
linear backoff on abnormal closure, and giving up in the terminal Failed
state once the attempt budget is spent. Connect requests pass a debounce
gate so rapid upstream triggers coalesce into a single attempt.

Timers come from an injectable source, so backoff and debounce are
deterministically testable without wall-clock delays.
*/
package reconnect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fadechat/internal/app/room"
	"fadechat/internal/app/wire"
	"fadechat/internal/pkg/logx"
)

// State is the controller's lifecycle state.
type State int32

const (
	// StateIdle means no connection exists and none is being attempted.
	StateIdle State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateOpen means the connection is established.
	StateOpen

	// StateReconnecting means a backoff timer is running toward the next
	// attempt.
	StateReconnecting

	// StateFailed is terminal: the attempt budget is spent and the
	// controller will not reconnect on its own.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	// DefaultBaseDelay is the backoff unit: attempt n retries after n times
	// this delay.
	DefaultBaseDelay = 1000 * time.Millisecond

	// DefaultMaxAttempts is the connection attempt budget before Failed.
	DefaultMaxAttempts = 5

	// DefaultDebounceWindow is the quiet window connect requests must
	// survive before a dial actually starts.
	DefaultDebounceWindow = 500 * time.Millisecond
)

// Transport is the controller's view of an established connection.
// *websocket.Conn satisfies it.
type Transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer establishes transports. The production implementation dials the
// relay over WebSocket; tests substitute scripted outcomes.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}

// Config parameterizes a Controller. Zero durations and counts take the
// package defaults.
type Config struct {
	RoomID   string
	Nickname string

	Dialer Dialer

	// OnEvent receives every decoded envelope, including the single
	// terminal error emitted when the controller gives up.
	OnEvent func(env wire.Envelope)

	BaseDelay      time.Duration
	MaxAttempts    int
	DebounceWindow time.Duration
}

// Controller is the reconnection state machine.
type Controller struct {
	cfg Config

	// after is the timer source, replaceable in tests.
	after func(d time.Duration, fn func()) *time.Timer

	mu            sync.Mutex
	state         State
	attempts      int
	transport     Transport
	debounceTimer *time.Timer
	stopped       bool

	logger zerolog.Logger
}

// NewController builds a controller in StateIdle.
func NewController(cfg Config) *Controller {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}

	return &Controller{
		cfg:   cfg,
		after: time.AfterFunc,
		state: StateIdle,
		logger: logx.Logger().With().
			Str("component", "ReconnectController").
			Str("room_id", cfg.RoomID).
			Str("nickname", cfg.Nickname).
			Logger(),
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect requests a connection. Requests are debounced: only the last one
// inside the quiet window starts a dial, and only when no attempt is in
// flight and the connection is not already open. An explicit request also
// revives a Failed controller with a fresh attempt budget.
func (c *Controller) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if c.state == StateFailed {
		c.state = StateIdle
		c.attempts = 0
	}

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}

	c.debounceTimer = c.after(c.cfg.DebounceWindow, func() {
		c.mu.Lock()
		busy := c.stopped ||
			c.state == StateConnecting ||
			c.state == StateOpen ||
			c.state == StateReconnecting
		c.mu.Unlock()

		if !busy {
			c.tryConnect()
		}
	})
}

// Disconnect closes the connection and stops all pending attempts. The
// controller cannot be reused afterwards.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	c.state = StateIdle
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	t := c.transport
	c.transport = nil
	c.mu.Unlock()

	if t != nil {
		t.Close()
	}
}

// Send delivers a chat message over the open connection.
func (c *Controller) Send(m room.Message) error {
	c.mu.Lock()
	t := c.transport
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || t == nil {
		return fmt.Errorf("connection is not open")
	}

	env := wire.NewMessageEvent(c.cfg.RoomID, m)
	frame, err := env.Encode()
	if err != nil {
		return err
	}

	return t.WriteMessage(websocket.TextMessage, frame)
}

// tryConnect performs one connection attempt.
func (c *Controller) tryConnect() {
	c.mu.Lock()
	if c.stopped || c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	attempt := c.attempts
	c.mu.Unlock()

	c.logger.Info().Int("attempt", attempt).Msg("Dialing relay.")

	t, err := c.cfg.Dialer.Dial(context.Background())
	if err != nil {
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("Dial failed.")
		c.handleFailure()
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		t.Close()
		return
	}
	c.transport = t
	c.state = StateOpen
	c.attempts = 0
	c.mu.Unlock()

	c.logger.Info().Msg("Connection open.")

	go c.readLoop(t)
}

// readLoop decodes inbound envelopes until the transport fails, then
// classifies the closure.
func (c *Controller) readLoop(t Transport) {
	for {
		_, frame, err := t.ReadMessage()
		if err != nil {
			c.handleClosure(t, err)
			return
		}

		env, decodeErr := wire.Decode(frame)
		if decodeErr != nil {
			c.logger.Warn().Err(decodeErr).Msg("Dropping undecodable frame from relay.")
			continue
		}

		c.emit(env)
	}
}

// handleClosure routes a read failure: deliberate disconnects and clean
// closures return to Idle, everything else re-enters backoff. A normal
// closure carrying the throttle reason counts as abnormal, since the
// rejection is transient and retrying after backoff is the intended
// recovery.
func (c *Controller) handleClosure(t Transport, err error) {
	c.mu.Lock()
	if c.stopped || c.transport != t {
		c.mu.Unlock()
		return
	}
	c.transport = nil
	c.mu.Unlock()

	t.Close()

	if isCleanClosure(err) {
		c.logger.Info().Err(err).Msg("Connection closed normally.")
		c.mu.Lock()
		if c.state == StateOpen {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return
	}

	c.logger.Warn().Err(err).Msg("Connection lost.")
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	c.handleFailure()
}

// handleFailure spends the reconnect budget: increment the attempt number
// and schedule the next attempt after baseDelay times that number, or
// transition to Failed and emit the single terminal error once the budget
// is gone. Reaching Failed is the only path that emits the terminal error,
// and Failed is never re-entered without an explicit Connect, so the error
// fires at most once.
func (c *Controller) handleFailure() {
	c.mu.Lock()

	if c.stopped {
		c.mu.Unlock()
		return
	}

	if c.attempts >= c.cfg.MaxAttempts {
		c.state = StateFailed
		c.mu.Unlock()

		c.logger.Error().
			Int("attempts", c.cfg.MaxAttempts).
			Msg("Reconnect budget exhausted, giving up.")

		c.emit(wire.NewErrorEvent(fmt.Sprintf(
			"Connection failed after %d attempts. Please reload.", c.cfg.MaxAttempts)))
		return
	}

	c.attempts++
	delay := c.cfg.BaseDelay * time.Duration(c.attempts)
	c.state = StateReconnecting
	c.mu.Unlock()

	c.logger.Info().Dur("delay", delay).Msg("Scheduling reconnect.")
	c.after(delay, c.tryConnect)
}

func (c *Controller) emit(env wire.Envelope) {
	if c.cfg.OnEvent != nil {
		c.cfg.OnEvent(env)
	}
}

// isCleanClosure reports whether err is a closure that should not trigger
// reconnection: a plain normal closure or a deliberate replacement. The
// throttle rejection arrives with a normal code but is retryable.
func isCleanClosure(err error) bool {
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return false
	}

	if ce, ok := err.(*websocket.CloseError); ok {
		return ce.Text != wire.CloseReasonTooFrequent
	}

	return true
}
