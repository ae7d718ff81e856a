package codec

import (
	"encoding/binary"
)

// Frame lengths for the environment service characteristics.
const (
	temperatureFrameLen = 2
	humidityFrameLen    = 1
	pressureFrameLen    = 5
	airQualityFrameLen  = 4
	colorFrameLen       = 8
	batteryFrameLen     = 1
	envConfigFrameLen   = 9
)

// DecodeTemperature decodes a temperature frame (signed integer byte plus
// unsigned fractional byte, hundredths) into degrees Celsius. The fractional
// part always moves the value away from zero, so -5 with fraction 3 is -5.03.
func DecodeTemperature(b []byte) (float64, error) {
	if err := checkLen("temperature", b, temperatureFrameLen); err != nil {
		return 0, err
	}
	integer := int8(b[0])
	frac := float64(b[1]) / 100.0
	if integer < 0 {
		return float64(integer) - frac, nil
	}
	return float64(integer) + frac, nil
}

// EncodeTemperature encodes degrees Celsius into the two-byte device format.
// Values outside the representable range [-128.99, 127.99] are rejected.
func EncodeTemperature(celsius float64) ([]byte, error) {
	integer := int(celsius)
	if integer < -128 || integer > 127 {
		return nil, &InvalidParameterError{Param: "temperature", Value: integer, Reason: "integer part must fit in a signed byte"}
	}
	frac := celsius - float64(integer)
	if frac < 0 {
		frac = -frac
	}
	hundredths := int(frac*100 + 0.5)
	if hundredths > 99 {
		hundredths = 99
	}
	return []byte{byte(int8(integer)), byte(hundredths)}, nil
}

// DecodeHumidity decodes a single-byte relative humidity frame into percent.
func DecodeHumidity(b []byte) (float64, error) {
	if err := checkLen("humidity", b, humidityFrameLen); err != nil {
		return 0, err
	}
	return float64(b[0]), nil
}

// DecodePressure decodes a pressure frame (int32 integer part plus unsigned
// fractional byte, hundredths) into hectopascals.
func DecodePressure(b []byte) (float64, error) {
	if err := checkLen("pressure", b, pressureFrameLen); err != nil {
		return 0, err
	}
	integer := int32(binary.LittleEndian.Uint32(b[0:4]))
	return float64(integer) + float64(b[4])/100.0, nil
}

// AirQuality holds a gas sensor sample. Both values zero is a valid reading:
// the CCS811 reports zeros while its baseline calibration is still warming up.
type AirQuality struct {
	ECO2 uint16 // equivalent CO2, ppm
	TVOC uint16 // total volatile organic compounds, ppb
}

// WarmingUp reports whether the sample indicates the gas sensor has not
// finished its warm-up period yet.
func (a AirQuality) WarmingUp() bool {
	return a.ECO2 == 0 && a.TVOC == 0
}

// DecodeAirQuality decodes an air quality frame (two uint16 values).
func DecodeAirQuality(b []byte) (AirQuality, error) {
	if err := checkLen("air quality", b, airQualityFrameLen); err != nil {
		return AirQuality{}, err
	}
	return AirQuality{
		ECO2: binary.LittleEndian.Uint16(b[0:2]),
		TVOC: binary.LittleEndian.Uint16(b[2:4]),
	}, nil
}

// Color holds a color sensor sample. The clear channel doubles as an ambient
// light proxy.
type Color struct {
	Red   uint16
	Green uint16
	Blue  uint16
	Clear uint16
}

// DecodeColor decodes a color frame (four uint16 channels).
func DecodeColor(b []byte) (Color, error) {
	if err := checkLen("color", b, colorFrameLen); err != nil {
		return Color{}, err
	}
	return Color{
		Red:   binary.LittleEndian.Uint16(b[0:2]),
		Green: binary.LittleEndian.Uint16(b[2:4]),
		Blue:  binary.LittleEndian.Uint16(b[4:6]),
		Clear: binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// DecodeBatteryLevel decodes the standard Battery Level characteristic into
// a percentage.
func DecodeBatteryLevel(b []byte) (int, error) {
	if err := checkLen("battery level", b, batteryFrameLen); err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

// GasMode selects the gas sensor sampling interval.
type GasMode uint8

const (
	GasMode1s  GasMode = 1
	GasMode10s GasMode = 2
	GasMode60s GasMode = 3
)

func (m GasMode) valid() bool {
	return m >= GasMode1s && m <= GasMode60s
}

// EnvironmentConfig is the 9-byte environment configuration record:
// four uint16 sampling intervals followed by the gas mode byte.
type EnvironmentConfig struct {
	TemperatureIntervalMs uint16
	PressureIntervalMs    uint16
	HumidityIntervalMs    uint16
	ColorIntervalMs       uint16
	GasMode               GasMode
}

// DefaultEnvironmentConfig is the record written when the device-side record
// cannot be read: 1000 ms intervals everywhere, gas sampling every second.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{
		TemperatureIntervalMs: 1000,
		PressureIntervalMs:    1000,
		HumidityIntervalMs:    1000,
		ColorIntervalMs:       1000,
		GasMode:               GasMode1s,
	}
}

// DecodeEnvironmentConfig decodes the environment configuration record.
func DecodeEnvironmentConfig(b []byte) (EnvironmentConfig, error) {
	if err := checkLen("environment config", b, envConfigFrameLen); err != nil {
		return EnvironmentConfig{}, err
	}
	return EnvironmentConfig{
		TemperatureIntervalMs: binary.LittleEndian.Uint16(b[0:2]),
		PressureIntervalMs:    binary.LittleEndian.Uint16(b[2:4]),
		HumidityIntervalMs:    binary.LittleEndian.Uint16(b[4:6]),
		ColorIntervalMs:       binary.LittleEndian.Uint16(b[6:8]),
		GasMode:               GasMode(b[8]),
	}, nil
}

// Encode serializes the record, validating the gas mode domain.
func (c EnvironmentConfig) Encode() ([]byte, error) {
	if !c.GasMode.valid() {
		return nil, &InvalidParameterError{Param: "gas mode", Value: int(c.GasMode), Reason: "must be 1, 2 or 3"}
	}
	b := make([]byte, envConfigFrameLen)
	binary.LittleEndian.PutUint16(b[0:2], c.TemperatureIntervalMs)
	binary.LittleEndian.PutUint16(b[2:4], c.PressureIntervalMs)
	binary.LittleEndian.PutUint16(b[4:6], c.HumidityIntervalMs)
	binary.LittleEndian.PutUint16(b[6:8], c.ColorIntervalMs)
	b[8] = byte(c.GasMode)
	return b, nil
}

// EnvironmentConfigUpdate selects the fields to overlay onto the current
// device record during a read-modify-write; nil fields keep the device value.
type EnvironmentConfigUpdate struct {
	TemperatureIntervalMs *uint16
	PressureIntervalMs    *uint16
	HumidityIntervalMs    *uint16
	ColorIntervalMs       *uint16
	GasMode               *GasMode
}

// Empty reports whether the update changes nothing.
func (u EnvironmentConfigUpdate) Empty() bool {
	return u.TemperatureIntervalMs == nil && u.PressureIntervalMs == nil &&
		u.HumidityIntervalMs == nil && u.ColorIntervalMs == nil && u.GasMode == nil
}

// Apply overlays the update onto c and returns the patched record. The gas
// mode domain is validated before anything is applied.
func (c EnvironmentConfig) Apply(u EnvironmentConfigUpdate) (EnvironmentConfig, error) {
	if u.GasMode != nil && !u.GasMode.valid() {
		return EnvironmentConfig{}, &InvalidParameterError{Param: "gas mode", Value: int(*u.GasMode), Reason: "must be 1, 2 or 3"}
	}
	out := c
	if u.TemperatureIntervalMs != nil {
		out.TemperatureIntervalMs = *u.TemperatureIntervalMs
	}
	if u.PressureIntervalMs != nil {
		out.PressureIntervalMs = *u.PressureIntervalMs
	}
	if u.HumidityIntervalMs != nil {
		out.HumidityIntervalMs = *u.HumidityIntervalMs
	}
	if u.ColorIntervalMs != nil {
		out.ColorIntervalMs = *u.ColorIntervalMs
	}
	if u.GasMode != nil {
		out.GasMode = *u.GasMode
	}
	return out, nil
}
