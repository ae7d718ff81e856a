// Package codec implements the Thingy:52 characteristic wire formats:
// stateless, total functions between raw byte frames and typed sensor or
// actuator values. Decode functions validate buffer lengths before indexing
// and report *MalformedFrameError instead of panicking; encode functions
// validate caller-supplied domains and report *InvalidParameterError instead
// of truncating. All multi-byte integers are little-endian.
package codec

import (
	"errors"
	"fmt"
)

// MalformedFrameError reports a frame whose length does not match the
// characteristic's fixed layout.
type MalformedFrameError struct {
	What     string // quantity being decoded, e.g. "temperature"
	Expected int    // required frame length in bytes
	Actual   int    // received frame length in bytes
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed %s frame: expected %d bytes, got %d", e.What, e.Expected, e.Actual)
}

// Is allows errors.Is(err, &MalformedFrameError{}) style comparisons by type.
func (e *MalformedFrameError) Is(target error) bool {
	_, ok := target.(*MalformedFrameError)
	return ok
}

// InvalidParameterError reports a caller-supplied value outside the domain
// the device accepts.
type InvalidParameterError struct {
	Param  string
	Value  int
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %d (%s)", e.Param, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	_, ok := target.(*InvalidParameterError)
	return ok
}

// IsMalformedFrame reports whether err is (or wraps) a MalformedFrameError.
func IsMalformedFrame(err error) bool {
	var mfe *MalformedFrameError
	return errors.As(err, &mfe)
}

// IsInvalidParameter reports whether err is (or wraps) an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var ipe *InvalidParameterError
	return errors.As(err, &ipe)
}

func checkLen(what string, b []byte, want int) error {
	if len(b) < want {
		return &MalformedFrameError{What: what, Expected: want, Actual: len(b)}
	}
	return nil
}
