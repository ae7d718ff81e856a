// Package transport abstracts the GATT-level operations the Thingy client
// needs from a BLE stack: dial a peripheral, read and write characteristics,
// subscribe to notifications, and observe unexpected link loss. The
// production implementation sits on go-ble; tests substitute in-memory fakes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NotFoundError reports a characteristic the connected peripheral does not
// expose.
type NotFoundError struct {
	Resource string // "service" or "characteristic"
	UUID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.UUID)
}

// State is the specific kind of connection-state failure.
type State string

const (
	StateNotConnected     State = "not_connected"
	StateAlreadyConnected State = "already_connected"
)

// ConnectionError represents any connection-related problem.
type ConnectionError struct {
	State State
	Msg   string
}

func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State.
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors.
var (
	ErrNotConnected     = &ConnectionError{State: StateNotConnected}
	ErrAlreadyConnected = &ConnectionError{State: StateAlreadyConnected}

	ErrTimeout = errors.New("timeout")
)

// IsNotConnected reports whether err denotes an operation against a link
// that is not (or no longer) connected.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// NotificationHandler receives one notification payload. The slice is only
// valid for the duration of the call; handlers must copy it to retain it.
type NotificationHandler func(data []byte)

// Link is one live connection to a peripheral. All characteristic arguments
// are UUID strings; implementations normalize case and dashes. After Close,
// or after the peripheral drops the link, every operation fails with
// ErrNotConnected.
type Link interface {
	// Addr returns the peripheral address the link was dialed to.
	Addr() string

	// Read performs a plain characteristic read.
	Read(char string) ([]byte, error)

	// Write writes a characteristic value, acknowledged when withResponse
	// is true.
	Write(char string, data []byte, withResponse bool) error

	// Subscribe enables notifications on a characteristic. Only one handler
	// per characteristic may be active at a time.
	Subscribe(char string, h NotificationHandler) error

	// Unsubscribe disables notifications on a characteristic.
	Unsubscribe(char string) error

	// Disconnected returns a channel that is closed once the link is gone,
	// whether by Close or by the peripheral dropping it.
	Disconnected() <-chan struct{}

	// Close tears the link down. Idempotent.
	Close() error
}

// Dialer establishes links to peripherals.
type Dialer interface {
	Dial(ctx context.Context, addr string, timeout time.Duration) (Link, error)
}
