package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/thingy52/pkg/codec"
	"github.com/srg/thingy52/pkg/transport"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "timeout",
			err:      transport.ErrTimeout,
			expected: "the device did not respond in time - check that it is powered on and in range",
		},
		{
			name:     "wrapped timeout",
			err:      fmt.Errorf("read temperature: %w", transport.ErrTimeout),
			expected: "the device did not respond in time - check that it is powered on and in range",
		},
		{
			name:     "not connected",
			err:      transport.ErrNotConnected,
			expected: "not connected to a device - " + transport.ErrNotConnected.Error(),
		},
		{
			name:     "already connected",
			err:      transport.ErrAlreadyConnected,
			expected: "already connected - " + transport.ErrAlreadyConnected.Error(),
		},
		{
			name:     "invalid parameter passes through",
			err:      &codec.InvalidParameterError{Param: "gas mode", Value: 9, Reason: "must be 1, 2 or 3"},
			expected: "invalid gas mode: 9 (must be 1, 2 or 3)",
		},
		{
			name:     "malformed frame",
			err:      &codec.MalformedFrameError{What: "temperature", Expected: 2, Actual: 1},
			expected: "the device sent an unexpected response: malformed temperature frame: expected 2 bytes, got 1",
		},
		{
			name:     "unrecognized error unchanged",
			err:      errors.New("boom"),
			expected: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatUserError(tt.err))
		})
	}
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "v0.1.0-rc1", formatVersion("0.1.0-rc1"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}
