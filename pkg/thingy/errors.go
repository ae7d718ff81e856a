package thingy

import (
	"errors"

	"github.com/srg/thingy52/pkg/transport"
)

// Sentinel errors re-exported from the transport layer so callers of this
// package do not need to import it for errors.Is checks.
var (
	ErrNotConnected     = transport.ErrNotConnected
	ErrAlreadyConnected = transport.ErrAlreadyConnected
	ErrTimeout          = transport.ErrTimeout
)

// IsTimeout reports whether err is a notification or connect timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, transport.ErrTimeout)
}

// IsNotConnected reports whether err denotes a missing or torn-down session.
func IsNotConnected(err error) bool {
	return errors.Is(err, transport.ErrNotConnected)
}
