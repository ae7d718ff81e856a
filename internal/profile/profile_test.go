package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "dashed vendor UUID",
			input:    "EF680201-9B35-4933-9B10-52FFA9740042",
			expected: "ef6802019b3549339b1052ffa9740042",
		},
		{
			name:     "already normalized",
			input:    "ef6802019b3549339b1052ffa9740042",
			expected: "ef6802019b3549339b1052ffa9740042",
		},
		{
			name:     "mixed case no dashes",
			input:    "EF6802019B3549339B1052FFA9740042",
			expected: "ef6802019b3549339b1052ffa9740042",
		},
		{
			name:     "short adopted UUID",
			input:    "2A19",
			expected: "2a19",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(TemperatureUUID, "ef680201-9b35-4933-9b10-52ffa9740042"))
	assert.True(t, Equal(TemperatureUUID, "ef6802019b3549339b1052ffa9740042"))
	assert.False(t, Equal(TemperatureUUID, PressureUUID))
}

func TestLookupService(t *testing.T) {
	assert.Equal(t, "Thingy Environment Service", LookupService(EnvironmentServiceUUID))
	assert.Equal(t, "Battery Service", LookupService("0000180f-0000-1000-8000-00805f9b34fb"))
	assert.Equal(t, "", LookupService("EF68FFFF-9B35-4933-9B10-52FFA9740042"))
}

func TestLookupCharacteristic(t *testing.T) {
	assert.Equal(t, "Temperature", LookupCharacteristic(TemperatureUUID))
	assert.Equal(t, "Heading", LookupCharacteristic("ef6804099b3549339b1052ffa9740042"))
	assert.Equal(t, "", LookupCharacteristic("dead"))
}

func TestServiceFor(t *testing.T) {
	tests := []struct {
		name     string
		char     string
		expected string
	}{
		{name: "environment characteristic", char: AirQualityUUID, expected: EnvironmentServiceUUID},
		{name: "ui characteristic", char: LEDUUID, expected: UIServiceUUID},
		{name: "motion characteristic", char: QuaternionUUID, expected: MotionServiceUUID},
		{name: "sound characteristic", char: SpeakerConfigUUID, expected: SoundServiceUUID},
		{name: "battery level", char: BatteryLevelUUID, expected: BatteryServiceUUID},
		{name: "normalized input accepted", char: "ef6802019b3549339b1052ffa9740042", expected: EnvironmentServiceUUID},
		{name: "unknown characteristic", char: "EF68FF01-9B35-4933-9B10-52FFA9740042", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ServiceFor(tt.char))
		})
	}
}

func TestMatchesName(t *testing.T) {
	assert.True(t, MatchesName("Thingy"))
	assert.True(t, MatchesName("Thingy:52 Lab"))
	assert.True(t, MatchesName("my thingy"))
	assert.False(t, MatchesName("THINGY")) // matching is case-sensitive per pattern
	assert.False(t, MatchesName("nRF52 DK"))
	assert.False(t, MatchesName(""))
}
