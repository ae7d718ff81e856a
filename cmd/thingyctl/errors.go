package main

import (
	"errors"

	"github.com/srg/thingy52/pkg/codec"
	"github.com/srg/thingy52/pkg/transport"
)

// FormatUserError maps internal errors to messages that make sense to a
// person at a terminal. Unrecognized errors pass through unchanged.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return "the device did not respond in time - check that it is powered on and in range"
	case errors.Is(err, transport.ErrNotConnected):
		return "not connected to a device - " + err.Error()
	case errors.Is(err, transport.ErrAlreadyConnected):
		return "already connected - " + err.Error()
	case codec.IsInvalidParameter(err):
		return err.Error()
	case codec.IsMalformedFrame(err):
		return "the device sent an unexpected response: " + err.Error()
	default:
		return err.Error()
	}
}
