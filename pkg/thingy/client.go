// Package thingy is the high-level client for a Nordic Thingy:52 peripheral.
// It owns the single connection session, its lifecycle state machine and the
// auto-reconnect supervisor, and exposes typed sensor reads and actuator
// writes on top of the transport and codec layers.
package thingy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/pkg/transport"
)

// ConnectionState is the observable lifecycle state of the client.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateManualDisconnect
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateManualDisconnect:
		return "manual_disconnect"
	default:
		return "unknown"
	}
}

// ReconnectPolicy controls the auto-reconnect supervisor. It is immutable
// while a reconnect run is active and may be reconfigured between runs.
type ReconnectPolicy struct {
	Enabled      bool
	MaxAttempts  int // 0 = unbounded
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultReconnectPolicy mirrors the defaults the device's reference clients
// ship with.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Enabled:      true,
		MaxAttempts:  10,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Options configures a Client.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration // per-notification wait
	Reconnect      ReconnectPolicy
}

// DefaultOptions returns the defaults used when Options is nil.
func DefaultOptions() *Options {
	return &Options{
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    5 * time.Second,
		Reconnect:      DefaultReconnectPolicy(),
	}
}

// session is one live link to the peripheral. It is created on successful
// connect and invalidated (dropped from the client) on disconnect; in-flight
// operations keep their own reference, whose link fails with ErrNotConnected
// once the session is torn down.
type session struct {
	link    transport.Link
	addr    string
	timeout time.Duration
}

// Client is the connection manager for a single Thingy:52.
type Client struct {
	dialer transport.Dialer
	logger *logrus.Logger

	connectTimeout time.Duration
	readTimeout    time.Duration

	mu               sync.Mutex
	sess             *session
	lastAddr         string
	connecting       bool
	manualDisconnect bool
	policy           ReconnectPolicy
	reconnecting     bool
	reconnectCancel  context.CancelFunc
	reconnectDone    chan struct{}

	charMu    sync.Mutex
	charLocks map[string]*sync.Mutex

	// sleep is the clock seam for backoff delays and device settle pauses;
	// tests substitute a recording implementation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client over the given dialer. A nil opts uses
// DefaultOptions; a nil logger falls back to a default one.
func NewClient(dialer transport.Dialer, opts *Options, logger *logrus.Logger) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		dialer:         dialer,
		logger:         logger,
		connectTimeout: opts.ConnectTimeout,
		readTimeout:    opts.ReadTimeout,
		policy:         opts.Reconnect,
		charLocks:      make(map[string]*sync.Mutex),
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect dials the peripheral at addr. Any active reconnect run is cancelled
// and fully stopped before the new attempt proceeds. On success the session
// is stored and the manual-disconnect flag cleared; on failure the client
// stays disconnected.
func (c *Client) Connect(ctx context.Context, addr string) error {
	c.cancelReconnect()

	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: disconnect first", transport.ErrAlreadyConnected)
	}
	if c.connecting {
		c.mu.Unlock()
		return fmt.Errorf("connect already in progress")
	}
	c.connecting = true
	timeout := c.connectTimeout
	c.mu.Unlock()

	link, err := c.dialer.Dial(ctx, addr, timeout)

	c.mu.Lock()
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.WithFields(logrus.Fields{
			"address": addr,
			"error":   err,
		}).Error("Failed to connect")
		return fmt.Errorf("connect %q: %w", addr, err)
	}
	s := &session{link: link, addr: addr, timeout: timeout}
	c.sess = s
	c.lastAddr = addr
	c.manualDisconnect = false
	c.mu.Unlock()

	go c.watch(s)

	c.logger.WithField("address", addr).Info("Connected")
	return nil
}

// Disconnect tears down the current session. The manual-disconnect flag
// suppresses auto-reconnect, and any active reconnect run is fully stopped
// before Disconnect returns. Idempotent: disconnecting while already
// disconnected succeeds.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.manualDisconnect = true
	c.mu.Unlock()

	c.cancelReconnect()

	c.mu.Lock()
	s := c.sess
	c.sess = nil
	c.mu.Unlock()

	if s == nil {
		c.logger.Info("Already disconnected")
		return nil
	}

	if err := s.link.Close(); err != nil {
		c.logger.WithError(err).Warn("Disconnected with errors")
		return err
	}
	c.logger.WithField("address", s.addr).Info("Disconnected (manual)")
	return nil
}

// State derives the current connection state. It has no side effects.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.sess != nil:
		return StateConnected
	case c.connecting:
		return StateConnecting
	case c.reconnecting:
		return StateReconnecting
	case c.manualDisconnect:
		return StateManualDisconnect
	default:
		return StateDisconnected
	}
}

// Address returns the address of the current or last connected peripheral.
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAddr
}

// IsConnected reports whether a live session exists.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// SetReconnectPolicy reconfigures the reconnect policy. It fails while a
// reconnect run is active; the policy of a running supervisor is immutable.
func (c *Client) SetReconnectPolicy(p ReconnectPolicy) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconnecting {
		return fmt.Errorf("reconnect run active: policy cannot change until it stops")
	}
	c.policy = p
	return nil
}

// ReconnectPolicy returns the currently configured policy.
func (c *Client) ReconnectPolicy() ReconnectPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// session returns the live session or ErrNotConnected.
func (c *Client) session() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil, fmt.Errorf("%w: connect to a device first", transport.ErrNotConnected)
	}
	return c.sess, nil
}

// watch blocks until the session's link drops, then routes the event to the
// unexpected-disconnect handler. Manual disconnects swap the session out
// first, which makes this watcher a no-op.
func (c *Client) watch(s *session) {
	<-s.link.Disconnected()

	c.mu.Lock()
	if c.sess != s {
		// Already torn down by Disconnect or replaced by Connect.
		c.mu.Unlock()
		return
	}
	c.sess = nil
	addr := c.lastAddr
	start := !c.manualDisconnect && c.policy.Enabled && !c.reconnecting && addr != ""
	if start {
		c.startReconnectLocked(addr)
	}
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"address":   addr,
		"reconnect": start,
	}).Warn("Device disconnected unexpectedly")
}

// startReconnectLocked spawns the reconnect supervisor. Callers must hold mu.
func (c *Client) startReconnectLocked(addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.reconnecting = true
	c.reconnectCancel = cancel
	c.reconnectDone = done
	go c.reconnectLoop(ctx, addr, done)
}

// cancelReconnect stops any active reconnect run and waits for the
// supervisor goroutine to fully exit, so callers observe that no reconnect
// is in flight before proceeding.
func (c *Client) cancelReconnect() {
	c.mu.Lock()
	cancel := c.reconnectCancel
	done := c.reconnectDone
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// reconnectLoop is the supervisor: sleep for the backoff delay, attempt a
// connect, double the delay (capped) on failure, until success, attempt
// exhaustion or cancellation. Both suspension points honor ctx.
func (c *Client) reconnectLoop(ctx context.Context, addr string, done chan struct{}) {
	defer close(done)
	defer func() {
		c.mu.Lock()
		if c.reconnectDone == done {
			c.reconnecting = false
			c.reconnectCancel = nil
			c.reconnectDone = nil
		}
		c.mu.Unlock()
	}()

	c.mu.Lock()
	policy := c.policy
	timeout := c.connectTimeout
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"address":      addr,
		"max_attempts": policy.MaxAttempts,
	}).Info("Starting auto-reconnect")

	delay := policy.InitialDelay
	for attempt := 0; ; attempt++ {
		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			c.logger.WithFields(logrus.Fields{
				"address":  addr,
				"attempts": attempt,
			}).Error("Auto-reconnect gave up: attempt limit reached")
			return
		}

		c.logger.WithFields(logrus.Fields{
			"address": addr,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Info("Waiting before reconnection attempt")

		if err := c.sleep(ctx, delay); err != nil {
			c.logger.WithField("address", addr).Info("Auto-reconnect cancelled")
			return
		}

		link, err := c.dialer.Dial(ctx, addr, timeout)
		if err == nil {
			c.mu.Lock()
			if ctx.Err() != nil || c.manualDisconnect || c.sess != nil {
				// A manual connect or disconnect won the race; this late
				// success must not clobber their state.
				c.mu.Unlock()
				_ = link.Close()
				return
			}
			s := &session{link: link, addr: addr, timeout: timeout}
			c.sess = s
			c.mu.Unlock()

			go c.watch(s)
			c.logger.WithFields(logrus.Fields{
				"address":  addr,
				"attempts": attempt + 1,
			}).Info("Reconnected")
			return
		}

		if ctx.Err() != nil {
			c.logger.WithField("address", addr).Info("Auto-reconnect cancelled")
			return
		}

		c.logger.WithFields(logrus.Fields{
			"address": addr,
			"attempt": attempt + 1,
			"error":   err,
		}).Warn("Reconnection attempt failed")

		delay *= 2
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}
}
