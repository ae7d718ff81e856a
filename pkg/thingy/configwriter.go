package thingy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/pkg/codec"
)

// EnvironmentConfigResult reports the outcome of an environment
// configuration write. ReadFallbackUsed is a warning, not a failure: the
// device record could not be read, so unspecified fields were taken from
// the documented defaults instead of the device.
type EnvironmentConfigResult struct {
	Config           codec.EnvironmentConfig
	ReadFallbackUsed bool
}

// MotionConfigResult is the motion counterpart of EnvironmentConfigResult.
type MotionConfigResult struct {
	Config           codec.MotionConfig
	ReadFallbackUsed bool
}

// ConfigureEnvironment updates the environment configuration record with a
// read-modify-write: read the current record, overlay only the fields set in
// u, write the full record back. Unset fields keep their device-side value.
// The device always receives a complete, valid-length record.
func (c *Client) ConfigureEnvironment(ctx context.Context, u codec.EnvironmentConfigUpdate) (EnvironmentConfigResult, error) {
	s, err := c.session()
	if err != nil {
		return EnvironmentConfigResult{}, err
	}
	return c.configureEnvironment(ctx, s, u)
}

func (c *Client) configureEnvironment(_ context.Context, s *session, u codec.EnvironmentConfigUpdate) (EnvironmentConfigResult, error) {
	current := codec.DefaultEnvironmentConfig()
	fallback := true
	if raw, err := s.link.Read(profile.EnvironmentConfigUUID); err != nil {
		c.logger.WithError(err).Warn("Could not read environment config, using defaults")
	} else if cfg, err := codec.DecodeEnvironmentConfig(raw); err != nil {
		c.logger.WithError(err).Warn("Environment config record unreadable, using defaults")
	} else {
		current = cfg
		fallback = false
	}

	patched, err := current.Apply(u)
	if err != nil {
		return EnvironmentConfigResult{}, err
	}
	frame, err := patched.Encode()
	if err != nil {
		return EnvironmentConfigResult{}, err
	}

	if err := s.link.Write(profile.EnvironmentConfigUUID, frame, false); err != nil {
		return EnvironmentConfigResult{}, fmt.Errorf("write environment config: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"temp_ms":     patched.TemperatureIntervalMs,
		"pressure_ms": patched.PressureIntervalMs,
		"humidity_ms": patched.HumidityIntervalMs,
		"color_ms":    patched.ColorIntervalMs,
		"gas_mode":    patched.GasMode,
		"fallback":    fallback,
	}).Info("Environment sensors configured")

	return EnvironmentConfigResult{Config: patched, ReadFallbackUsed: fallback}, nil
}

// ConfigureMotion updates the motion configuration record with the same
// read-modify-write pattern as ConfigureEnvironment.
func (c *Client) ConfigureMotion(ctx context.Context, u codec.MotionConfigUpdate) (MotionConfigResult, error) {
	s, err := c.session()
	if err != nil {
		return MotionConfigResult{}, err
	}
	return c.configureMotion(ctx, s, u)
}

func (c *Client) configureMotion(_ context.Context, s *session, u codec.MotionConfigUpdate) (MotionConfigResult, error) {
	current := codec.DefaultMotionConfig()
	fallback := true
	if raw, err := s.link.Read(profile.MotionConfigUUID); err != nil {
		c.logger.WithError(err).Warn("Could not read motion config, using defaults")
	} else if cfg, err := codec.DecodeMotionConfig(raw); err != nil {
		c.logger.WithError(err).Warn("Motion config record unreadable, using defaults")
	} else {
		current = cfg
		fallback = false
	}

	patched, err := current.Apply(u)
	if err != nil {
		return MotionConfigResult{}, err
	}
	frame, err := patched.Encode()
	if err != nil {
		return MotionConfigResult{}, err
	}

	if err := s.link.Write(profile.MotionConfigUUID, frame, false); err != nil {
		return MotionConfigResult{}, fmt.Errorf("write motion config: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"step_ms":  patched.StepIntervalMs,
		"freq_hz":  patched.FrequencyHz,
		"wake":     patched.WakeOnMotion,
		"fallback": fallback,
	}).Info("Motion sensors configured")

	return MotionConfigResult{Config: patched, ReadFallbackUsed: fallback}, nil
}
