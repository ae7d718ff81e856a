package codec

import (
	"encoding/binary"
	"math"
)

const (
	quaternionFrameLen   = 16
	eulerFrameLen        = 12
	headingFrameLen      = 4
	rawMotionFrameLen    = 18
	stepCountFrameLen    = 4
	tapFrameLen          = 2
	orientationFrameLen  = 1
	motionConfigFrameLen = 9

	q30Divisor   = float64(1 << 30)
	eulerDivisor = 65536.0

	// MaxMotionFrequencyHz is the highest motion processing rate the MPU
	// firmware supports.
	MaxMotionFrequencyHz = 200
)

// Quaternion is a unit rotation quaternion decoded from Q30 fixed point.
type Quaternion struct {
	W float64
	X float64
	Y float64
	Z float64
}

// DecodeQuaternion decodes a quaternion frame (four int32 Q30 components,
// order w, x, y, z).
func DecodeQuaternion(b []byte) (Quaternion, error) {
	if err := checkLen("quaternion", b, quaternionFrameLen); err != nil {
		return Quaternion{}, err
	}
	return Quaternion{
		W: float64(int32(binary.LittleEndian.Uint32(b[0:4]))) / q30Divisor,
		X: float64(int32(binary.LittleEndian.Uint32(b[4:8]))) / q30Divisor,
		Y: float64(int32(binary.LittleEndian.Uint32(b[8:12]))) / q30Divisor,
		Z: float64(int32(binary.LittleEndian.Uint32(b[12:16]))) / q30Divisor,
	}, nil
}

// EulerAngles holds roll, pitch and yaw in degrees.
type EulerAngles struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// DecodeEulerAngles decodes an Euler angle frame (three int32 values scaled
// by 65536).
func DecodeEulerAngles(b []byte) (EulerAngles, error) {
	if err := checkLen("euler angles", b, eulerFrameLen); err != nil {
		return EulerAngles{}, err
	}
	return EulerAngles{
		Roll:  float64(int32(binary.LittleEndian.Uint32(b[0:4]))) / eulerDivisor,
		Pitch: float64(int32(binary.LittleEndian.Uint32(b[4:8]))) / eulerDivisor,
		Yaw:   float64(int32(binary.LittleEndian.Uint32(b[8:12]))) / eulerDivisor,
	}, nil
}

// DecodeHeading decodes a compass heading frame (int32 scaled by 65536) and
// normalizes it into [0, 360).
func DecodeHeading(b []byte) (float64, error) {
	if err := checkLen("heading", b, headingFrameLen); err != nil {
		return 0, err
	}
	heading := float64(int32(binary.LittleEndian.Uint32(b[0:4]))) / eulerDivisor
	heading = math.Mod(heading, 360)
	if heading < 0 {
		heading += 360
	}
	return heading, nil
}

// Vec3 is one 3-axis sample from the raw motion frame.
type Vec3 struct {
	X int16
	Y int16
	Z int16
}

// RawMotion holds one raw MPU sample: accelerometer, gyroscope and
// magnetometer axes in device units.
type RawMotion struct {
	Accelerometer Vec3
	Gyroscope     Vec3
	Magnetometer  Vec3
}

// DecodeRawMotion decodes a raw motion frame (nine int16 values: accel,
// gyro, magnetometer, in that order).
func DecodeRawMotion(b []byte) (RawMotion, error) {
	if err := checkLen("raw motion", b, rawMotionFrameLen); err != nil {
		return RawMotion{}, err
	}
	vec := func(off int) Vec3 {
		return Vec3{
			X: int16(binary.LittleEndian.Uint16(b[off : off+2])),
			Y: int16(binary.LittleEndian.Uint16(b[off+2 : off+4])),
			Z: int16(binary.LittleEndian.Uint16(b[off+4 : off+6])),
		}
	}
	return RawMotion{
		Accelerometer: vec(0),
		Gyroscope:     vec(6),
		Magnetometer:  vec(12),
	}, nil
}

// DecodeStepCount decodes a step counter frame (cumulative uint32).
func DecodeStepCount(b []byte) (uint32, error) {
	if err := checkLen("step count", b, stepCountFrameLen); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[0:4]), nil
}

// TapDirection identifies the axis and sign of a detected tap.
type TapDirection uint8

const (
	TapXPlus  TapDirection = 1
	TapXMinus TapDirection = 2
	TapYPlus  TapDirection = 3
	TapYMinus TapDirection = 4
	TapZPlus  TapDirection = 5
	TapZMinus TapDirection = 6
)

func (d TapDirection) String() string {
	switch d {
	case TapXPlus:
		return "X+"
	case TapXMinus:
		return "X-"
	case TapYPlus:
		return "Y+"
	case TapYMinus:
		return "Y-"
	case TapZPlus:
		return "Z+"
	case TapZMinus:
		return "Z-"
	default:
		return "unknown"
	}
}

// TapEvent is one tap detection event.
type TapEvent struct {
	Direction TapDirection
	Count     uint8 // 1 = single tap, 2 = double tap
}

// Double reports whether the event was a double tap.
func (t TapEvent) Double() bool {
	return t.Count == 2
}

// DecodeTapEvent decodes a tap frame (direction code byte plus count byte).
func DecodeTapEvent(b []byte) (TapEvent, error) {
	if err := checkLen("tap", b, tapFrameLen); err != nil {
		return TapEvent{}, err
	}
	return TapEvent{Direction: TapDirection(b[0]), Count: b[1]}, nil
}

// Orientation is the coarse device orientation.
type Orientation uint8

const (
	OrientationPortrait Orientation = iota
	OrientationLandscape
	OrientationReversePortrait
	OrientationReverseLandscape
)

func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationLandscape:
		return "landscape"
	case OrientationReversePortrait:
		return "reverse_portrait"
	case OrientationReverseLandscape:
		return "reverse_landscape"
	default:
		return "unknown"
	}
}

// DecodeOrientation decodes a single-byte orientation frame.
func DecodeOrientation(b []byte) (Orientation, error) {
	if err := checkLen("orientation", b, orientationFrameLen); err != nil {
		return 0, err
	}
	return Orientation(b[0]), nil
}

// MotionConfig is the 9-byte motion configuration record: three uint16
// compensation intervals, the processing frequency and the wake-on-motion
// flag byte.
type MotionConfig struct {
	StepIntervalMs     uint16
	TempCompIntervalMs uint16
	MagCompIntervalMs  uint16
	FrequencyHz        uint16
	WakeOnMotion       bool
}

// DefaultMotionConfig mirrors the record the firmware ships with and is the
// fallback when the device record cannot be read.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		StepIntervalMs:     1000,
		TempCompIntervalMs: 5000,
		MagCompIntervalMs:  5000,
		FrequencyHz:        MaxMotionFrequencyHz,
		WakeOnMotion:       true,
	}
}

// DecodeMotionConfig decodes the motion configuration record.
func DecodeMotionConfig(b []byte) (MotionConfig, error) {
	if err := checkLen("motion config", b, motionConfigFrameLen); err != nil {
		return MotionConfig{}, err
	}
	return MotionConfig{
		StepIntervalMs:     binary.LittleEndian.Uint16(b[0:2]),
		TempCompIntervalMs: binary.LittleEndian.Uint16(b[2:4]),
		MagCompIntervalMs:  binary.LittleEndian.Uint16(b[4:6]),
		FrequencyHz:        binary.LittleEndian.Uint16(b[6:8]),
		WakeOnMotion:       b[8] != 0,
	}, nil
}

// Encode serializes the record, validating the frequency domain.
func (c MotionConfig) Encode() ([]byte, error) {
	if c.FrequencyHz == 0 || c.FrequencyHz > MaxMotionFrequencyHz {
		return nil, &InvalidParameterError{Param: "motion frequency", Value: int(c.FrequencyHz), Reason: "must be 1..200 Hz"}
	}
	b := make([]byte, motionConfigFrameLen)
	binary.LittleEndian.PutUint16(b[0:2], c.StepIntervalMs)
	binary.LittleEndian.PutUint16(b[2:4], c.TempCompIntervalMs)
	binary.LittleEndian.PutUint16(b[4:6], c.MagCompIntervalMs)
	binary.LittleEndian.PutUint16(b[6:8], c.FrequencyHz)
	if c.WakeOnMotion {
		b[8] = 1
	}
	return b, nil
}

// MotionConfigUpdate selects the fields to overlay onto the current device
// record during a read-modify-write; nil fields keep the device value.
type MotionConfigUpdate struct {
	StepIntervalMs     *uint16
	TempCompIntervalMs *uint16
	MagCompIntervalMs  *uint16
	FrequencyHz        *uint16
	WakeOnMotion       *bool
}

// Empty reports whether the update changes nothing.
func (u MotionConfigUpdate) Empty() bool {
	return u.StepIntervalMs == nil && u.TempCompIntervalMs == nil &&
		u.MagCompIntervalMs == nil && u.FrequencyHz == nil && u.WakeOnMotion == nil
}

// Apply overlays the update onto c and returns the patched record.
func (c MotionConfig) Apply(u MotionConfigUpdate) (MotionConfig, error) {
	if u.FrequencyHz != nil && (*u.FrequencyHz == 0 || *u.FrequencyHz > MaxMotionFrequencyHz) {
		return MotionConfig{}, &InvalidParameterError{Param: "motion frequency", Value: int(*u.FrequencyHz), Reason: "must be 1..200 Hz"}
	}
	out := c
	if u.StepIntervalMs != nil {
		out.StepIntervalMs = *u.StepIntervalMs
	}
	if u.TempCompIntervalMs != nil {
		out.TempCompIntervalMs = *u.TempCompIntervalMs
	}
	if u.MagCompIntervalMs != nil {
		out.MagCompIntervalMs = *u.MagCompIntervalMs
	}
	if u.FrequencyHz != nil {
		out.FrequencyHz = *u.FrequencyHz
	}
	if u.WakeOnMotion != nil {
		out.WakeOnMotion = *u.WakeOnMotion
	}
	return out, nil
}
