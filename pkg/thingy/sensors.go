package thingy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/srg/thingy52/internal/profile"
	"github.com/srg/thingy52/pkg/codec"
	"github.com/srg/thingy52/pkg/transport"
)

// Settle pauses the firmware needs after configuration writes before the
// corresponding sensors start notifying.
const (
	gasWarmupPause    = 1500 * time.Millisecond
	motionSetupPause  = 500 * time.Millisecond
	defaultTapTimeout = 10 * time.Second
)

// ReadTemperature reads the temperature sensor in degrees Celsius.
func (c *Client) ReadTemperature(ctx context.Context) (float64, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.TemperatureUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	return codec.DecodeTemperature(data)
}

// ReadHumidity reads relative humidity in percent.
func (c *Client) ReadHumidity(ctx context.Context) (float64, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.HumidityUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read humidity: %w", err)
	}
	return codec.DecodeHumidity(data)
}

// ReadPressure reads atmospheric pressure in hectopascals.
func (c *Client) ReadPressure(ctx context.Context) (float64, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.PressureUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read pressure: %w", err)
	}
	return codec.DecodePressure(data)
}

// ReadAirQuality reads the gas sensor. The sensor only notifies once a gas
// mode is configured, so the environment record is switched to 1 s sampling
// first and the sensor is given a short warm-up pause. A reading of zeros is
// valid while the CCS811 baseline is still warming up.
func (c *Client) ReadAirQuality(ctx context.Context) (codec.AirQuality, error) {
	s, err := c.session()
	if err != nil {
		return codec.AirQuality{}, err
	}

	gas := codec.GasMode1s
	if _, err := c.configureEnvironment(ctx, s, codec.EnvironmentConfigUpdate{GasMode: &gas}); err != nil {
		return codec.AirQuality{}, fmt.Errorf("configure gas mode: %w", err)
	}
	if err := c.sleep(ctx, gasWarmupPause); err != nil {
		return codec.AirQuality{}, err
	}

	data, err := c.readViaNotification(ctx, s, profile.AirQualityUUID, c.readTimeout)
	if err != nil {
		return codec.AirQuality{}, fmt.Errorf("read air quality: %w", err)
	}
	return codec.DecodeAirQuality(data)
}

// ReadColor reads the color sensor. The clear channel approximates ambient
// light intensity.
func (c *Client) ReadColor(ctx context.Context) (codec.Color, error) {
	s, err := c.session()
	if err != nil {
		return codec.Color{}, err
	}
	data, err := c.readViaNotification(ctx, s, profile.ColorUUID, c.readTimeout)
	if err != nil {
		return codec.Color{}, fmt.Errorf("read color: %w", err)
	}
	return codec.DecodeColor(data)
}

// ReadLightIntensity reads ambient light via the color sensor's clear channel.
func (c *Client) ReadLightIntensity(ctx context.Context) (uint16, error) {
	color, err := c.ReadColor(ctx)
	if err != nil {
		return 0, err
	}
	return color.Clear, nil
}

// ReadBattery reads the battery level percentage with a plain characteristic
// read; the Battery Service supports direct reads.
func (c *Client) ReadBattery(ctx context.Context) (int, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	data, err := s.link.Read(profile.BatteryLevelUUID)
	if err != nil {
		return 0, fmt.Errorf("read battery: %w", err)
	}
	return codec.DecodeBatteryLevel(data)
}

// ensureMotionConfigured writes the motion configuration record (preserving
// device values where readable) so the motion sensors start notifying, then
// pauses while they spin up.
func (c *Client) ensureMotionConfigured(ctx context.Context, s *session) error {
	if _, err := c.configureMotion(ctx, s, codec.MotionConfigUpdate{}); err != nil {
		return fmt.Errorf("configure motion sensors: %w", err)
	}
	return c.sleep(ctx, motionSetupPause)
}

// ReadStepCount reads the cumulative step counter.
func (c *Client) ReadStepCount(ctx context.Context) (uint32, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	if err := c.ensureMotionConfigured(ctx, s); err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.StepCounterUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read step count: %w", err)
	}
	return codec.DecodeStepCount(data)
}

// ReadQuaternion reads the orientation quaternion.
func (c *Client) ReadQuaternion(ctx context.Context) (codec.Quaternion, error) {
	s, err := c.session()
	if err != nil {
		return codec.Quaternion{}, err
	}
	data, err := c.readViaNotification(ctx, s, profile.QuaternionUUID, c.readTimeout)
	if err != nil {
		return codec.Quaternion{}, fmt.Errorf("read quaternion: %w", err)
	}
	return codec.DecodeQuaternion(data)
}

// ReadEulerAngles reads roll, pitch and yaw in degrees.
func (c *Client) ReadEulerAngles(ctx context.Context) (codec.EulerAngles, error) {
	s, err := c.session()
	if err != nil {
		return codec.EulerAngles{}, err
	}
	data, err := c.readViaNotification(ctx, s, profile.EulerUUID, c.readTimeout)
	if err != nil {
		return codec.EulerAngles{}, fmt.Errorf("read euler angles: %w", err)
	}
	return codec.DecodeEulerAngles(data)
}

// ReadHeading reads the compass heading in degrees, normalized to [0, 360).
func (c *Client) ReadHeading(ctx context.Context) (float64, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.HeadingUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read heading: %w", err)
	}
	return codec.DecodeHeading(data)
}

// ReadTapEvent waits for the next tap detection event. Taps are sparse, so
// the wait uses a longer timeout than periodic sensors.
func (c *Client) ReadTapEvent(ctx context.Context) (codec.TapEvent, error) {
	s, err := c.session()
	if err != nil {
		return codec.TapEvent{}, err
	}
	data, err := c.readViaNotification(ctx, s, profile.TapUUID, defaultTapTimeout)
	if err != nil {
		return codec.TapEvent{}, fmt.Errorf("read tap event: %w", err)
	}
	return codec.DecodeTapEvent(data)
}

// ReadOrientation reads the coarse device orientation.
func (c *Client) ReadOrientation(ctx context.Context) (codec.Orientation, error) {
	s, err := c.session()
	if err != nil {
		return 0, err
	}
	if err := c.ensureMotionConfigured(ctx, s); err != nil {
		return 0, err
	}
	data, err := c.readViaNotification(ctx, s, profile.OrientationUUID, c.readTimeout)
	if err != nil {
		return 0, fmt.Errorf("read orientation: %w", err)
	}
	return codec.DecodeOrientation(data)
}

// ReadRawMotion reads one raw accelerometer/gyroscope/magnetometer sample.
func (c *Client) ReadRawMotion(ctx context.Context) (codec.RawMotion, error) {
	s, err := c.session()
	if err != nil {
		return codec.RawMotion{}, err
	}
	if err := c.ensureMotionConfigured(ctx, s); err != nil {
		return codec.RawMotion{}, err
	}
	data, err := c.readViaNotification(ctx, s, profile.RawMotionUUID, c.readTimeout)
	if err != nil {
		return codec.RawMotion{}, fmt.Errorf("read raw motion: %w", err)
	}
	return codec.DecodeRawMotion(data)
}

// EnvironmentalData aggregates one sample of every environmental sensor.
// Fields are nil when that one read timed out; a timeout on an individual
// sensor does not fail the aggregate read.
type EnvironmentalData struct {
	Temperature *float64
	Humidity    *float64
	Pressure    *float64
	CO2         *uint16
	TVOC        *uint16
}

// ReadAllEnvironmental reads temperature, humidity, pressure and air quality
// in sequence. Per-sensor timeouts leave the field nil; malformed frames and
// connection loss are surfaced.
func (c *Client) ReadAllEnvironmental(ctx context.Context) (EnvironmentalData, error) {
	var out EnvironmentalData

	temp, err := c.ReadTemperature(ctx)
	if err == nil {
		out.Temperature = &temp
	} else if !errors.Is(err, transport.ErrTimeout) {
		return out, err
	}

	humidity, err := c.ReadHumidity(ctx)
	if err == nil {
		out.Humidity = &humidity
	} else if !errors.Is(err, transport.ErrTimeout) {
		return out, err
	}

	pressure, err := c.ReadPressure(ctx)
	if err == nil {
		out.Pressure = &pressure
	} else if !errors.Is(err, transport.ErrTimeout) {
		return out, err
	}

	air, err := c.ReadAirQuality(ctx)
	if err == nil {
		co2, tvoc := air.ECO2, air.TVOC
		out.CO2 = &co2
		out.TVOC = &tvoc
	} else if !errors.Is(err, transport.ErrTimeout) {
		return out, err
	}

	return out, nil
}
