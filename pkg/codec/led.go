package codec

import "encoding/binary"

// LEDMode selects how the lightwell is driven.
type LEDMode uint8

const (
	LEDOff      LEDMode = 0
	LEDConstant LEDMode = 1
	LEDBreathe  LEDMode = 2
	LEDOneShot  LEDMode = 3
)

func (m LEDMode) String() string {
	switch m {
	case LEDOff:
		return "off"
	case LEDConstant:
		return "constant"
	case LEDBreathe:
		return "breathe"
	case LEDOneShot:
		return "one-shot"
	default:
		return "unknown"
	}
}

// ColorCode is one of the seven fixed LED primaries the firmware accepts in
// breathe and one-shot modes.
type ColorCode uint8

const (
	ColorRed     ColorCode = 1
	ColorGreen   ColorCode = 2
	ColorYellow  ColorCode = 3
	ColorBlue    ColorCode = 4
	ColorMagenta ColorCode = 5
	ColorCyan    ColorCode = 6
	ColorWhite   ColorCode = 7
)

func (c ColorCode) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorBlue:
		return "blue"
	case ColorMagenta:
		return "magenta"
	case ColorCyan:
		return "cyan"
	case ColorWhite:
		return "white"
	default:
		return "unknown"
	}
}

// ledPrimaries maps each color code to its reference RGB value, in ascending
// code order so distance ties resolve to the lowest code.
var ledPrimaries = []struct {
	code ColorCode
	r    int
	g    int
	b    int
}{
	{ColorRed, 255, 0, 0},
	{ColorGreen, 0, 255, 0},
	{ColorYellow, 255, 255, 0},
	{ColorBlue, 0, 0, 255},
	{ColorMagenta, 255, 0, 255},
	{ColorCyan, 0, 255, 255},
	{ColorWhite, 255, 255, 255},
}

// QuantizeColor maps an arbitrary RGB triple to the nearest fixed primary by
// Euclidean distance in RGB space. Equal distances resolve to the
// lowest-numbered code.
func QuantizeColor(red, green, blue uint8) ColorCode {
	best := ColorRed
	bestDist := int(^uint(0) >> 1)
	for _, p := range ledPrimaries {
		dr := int(red) - p.r
		dg := int(green) - p.g
		db := int(blue) - p.b
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = p.code
		}
	}
	return best
}

// MinBreatheDelayMs is the shortest breathe period the firmware accepts.
const MinBreatheDelayMs = 50

// LEDCommand describes one LED write. Red/Green/Blue are only meaningful for
// constant mode; breathe and one-shot quantize them to a ColorCode first.
// Intensity is a percentage. DelayMs applies to breathe mode only.
type LEDCommand struct {
	Mode      LEDMode
	Red       uint8
	Green     uint8
	Blue      uint8
	Intensity int
	DelayMs   int
}

// EncodeLED encodes an LED command into the device frame.
//
// Off is the single mode byte. Constant mode carries the intensity-scaled
// channels in G,R,B order (the firmware's quirk, not an error here). Breathe
// and one-shot quantize the color to the nearest primary and scale intensity
// into 0..255; breathe appends the period as uint16, clamped to the firmware
// minimum.
func EncodeLED(cmd LEDCommand) ([]byte, error) {
	if cmd.Intensity < 0 || cmd.Intensity > 100 {
		return nil, &InvalidParameterError{Param: "intensity", Value: cmd.Intensity, Reason: "must be 0..100"}
	}
	switch cmd.Mode {
	case LEDOff:
		return []byte{byte(LEDOff)}, nil
	case LEDConstant:
		scale := func(c uint8) byte { return byte(int(c) * cmd.Intensity / 100) }
		return []byte{byte(LEDConstant), scale(cmd.Green), scale(cmd.Red), scale(cmd.Blue)}, nil
	case LEDBreathe:
		if cmd.DelayMs < 0 || cmd.DelayMs > 0xFFFF {
			return nil, &InvalidParameterError{Param: "delay", Value: cmd.DelayMs, Reason: "must fit in uint16 milliseconds"}
		}
		delay := cmd.DelayMs
		if delay < MinBreatheDelayMs {
			delay = MinBreatheDelayMs
		}
		frame := []byte{byte(LEDBreathe), byte(QuantizeColor(cmd.Red, cmd.Green, cmd.Blue)), intensityByte(cmd.Intensity), 0, 0}
		binary.LittleEndian.PutUint16(frame[3:5], uint16(delay))
		return frame, nil
	case LEDOneShot:
		return []byte{byte(LEDOneShot), byte(QuantizeColor(cmd.Red, cmd.Green, cmd.Blue)), intensityByte(cmd.Intensity)}, nil
	default:
		return nil, &InvalidParameterError{Param: "led mode", Value: int(cmd.Mode), Reason: "must be 0..3"}
	}
}

func intensityByte(percent int) byte {
	return byte(percent * 255 / 100)
}

// LEDState is the decoded current LED setting as read back from the LED
// characteristic.
type LEDState struct {
	Mode LEDMode

	// Constant mode channels, already intensity-scaled by the device.
	Red   uint8
	Green uint8
	Blue  uint8

	// Breathe / one-shot fields.
	Color     ColorCode
	Intensity uint8 // raw 0..255
	DelayMs   uint16
}

// DecodeLED decodes an LED characteristic read-back. The frame length depends
// on the mode byte: 1 (off), 4 (constant, G/R/B), 5 (breathe) or 3 (one-shot).
func DecodeLED(b []byte) (LEDState, error) {
	if err := checkLen("led", b, 1); err != nil {
		return LEDState{}, err
	}
	switch LEDMode(b[0]) {
	case LEDOff:
		return LEDState{Mode: LEDOff}, nil
	case LEDConstant:
		if err := checkLen("led constant", b, 4); err != nil {
			return LEDState{}, err
		}
		return LEDState{Mode: LEDConstant, Green: b[1], Red: b[2], Blue: b[3]}, nil
	case LEDBreathe:
		if err := checkLen("led breathe", b, 5); err != nil {
			return LEDState{}, err
		}
		return LEDState{
			Mode:      LEDBreathe,
			Color:     ColorCode(b[1]),
			Intensity: b[2],
			DelayMs:   binary.LittleEndian.Uint16(b[3:5]),
		}, nil
	case LEDOneShot:
		if err := checkLen("led one-shot", b, 3); err != nil {
			return LEDState{}, err
		}
		return LEDState{Mode: LEDOneShot, Color: ColorCode(b[1]), Intensity: b[2]}, nil
	default:
		return LEDState{}, &MalformedFrameError{What: "led", Expected: 1, Actual: len(b)}
	}
}
