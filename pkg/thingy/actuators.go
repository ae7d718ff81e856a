package thingy

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/pkg/codec"
)

// Settle pauses after actuator writes. The firmware drops back-to-back LED
// and speaker commands without them.
const (
	ledClearPause     = 150 * time.Millisecond
	ledSettlePause    = 50 * time.Millisecond
	speakerConfPause  = 200 * time.Millisecond
	speakerQueuePause = 100 * time.Millisecond
)

// SetLED drives the lightwell. For every mode except off, the LED is first
// turned off with an acknowledged write so the new color does not mix with
// the previous state. Off and constant-mode writes are acknowledged; breathe
// and one-shot are fire-and-forget.
func (c *Client) SetLED(ctx context.Context, cmd codec.LEDCommand) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	frame, err := codec.EncodeLED(cmd)
	if err != nil {
		return err
	}

	if cmd.Mode != codec.LEDOff {
		off, _ := codec.EncodeLED(codec.LEDCommand{Mode: codec.LEDOff})
		if err := s.link.Write(profile.LEDUUID, off, true); err != nil {
			return fmt.Errorf("clear led state: %w", err)
		}
		if err := c.sleep(ctx, ledClearPause); err != nil {
			return err
		}
	}

	acked := cmd.Mode == codec.LEDOff || cmd.Mode == codec.LEDConstant
	if err := s.link.Write(profile.LEDUUID, frame, acked); err != nil {
		return fmt.Errorf("write led: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"mode":      cmd.Mode.String(),
		"intensity": cmd.Intensity,
		"acked":     acked,
	}).Info("LED updated")

	return c.sleep(ctx, ledSettlePause)
}

// TurnOffLED turns the lightwell off.
func (c *Client) TurnOffLED(ctx context.Context) error {
	return c.SetLED(ctx, codec.LEDCommand{Mode: codec.LEDOff})
}

// ReadLED reads back the current LED setting.
func (c *Client) ReadLED(ctx context.Context) (codec.LEDState, error) {
	s, err := c.session()
	if err != nil {
		return codec.LEDState{}, err
	}
	data, err := s.link.Read(profile.LEDUUID)
	if err != nil {
		return codec.LEDState{}, fmt.Errorf("read led: %w", err)
	}
	return codec.DecodeLED(data)
}

// ConfigureSpeaker writes the sound service configuration record with an
// acknowledged write.
func (c *Client) ConfigureSpeaker(ctx context.Context, cfg codec.SpeakerConfig) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	frame, err := cfg.Encode()
	if err != nil {
		return err
	}
	if err := s.link.Write(profile.SpeakerConfigUUID, frame, true); err != nil {
		return fmt.Errorf("write speaker config: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"speaker_mode": cfg.Speaker,
		"mic_mode":     cfg.Microphone,
	}).Info("Speaker configured")

	return c.sleep(ctx, speakerConfPause)
}

// PlaySoundSample plays one of the eight preset firmware samples. The
// speaker is switched to sample mode first; the trigger itself is
// fire-and-forget. Sample playback runs at a fixed volume.
func (c *Client) PlaySoundSample(ctx context.Context, id int) error {
	trigger, err := codec.EncodeSoundSample(id)
	if err != nil {
		return err
	}

	s, err := c.session()
	if err != nil {
		return err
	}

	if err := c.ConfigureSpeaker(ctx, codec.DefaultSpeakerConfig()); err != nil {
		return fmt.Errorf("configure speaker for sample mode: %w", err)
	}
	if err := c.sleep(ctx, speakerQueuePause); err != nil {
		return err
	}

	if err := s.link.Write(profile.SpeakerDataUUID, trigger, false); err != nil {
		return fmt.Errorf("trigger sound sample: %w", err)
	}

	c.logger.WithField("sound_id", id).Info("Sound sample triggered")
	return nil
}
