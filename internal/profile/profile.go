// Package profile holds the Nordic Thingy:52 GATT profile: service and
// characteristic UUIDs plus human-readable name lookups. UUIDs are stored in
// the dashed form used by the Nordic documentation; Normalize converts to the
// lowercase, dash-free form used for map keys and comparisons.
package profile

import "strings"

// Thingy:52 vendor-specific services (base EF68xxxx-9B35-4933-9B10-52FFA9740042).
const (
	EnvironmentServiceUUID = "EF680200-9B35-4933-9B10-52FFA9740042"
	UIServiceUUID          = "EF680300-9B35-4933-9B10-52FFA9740042"
	MotionServiceUUID      = "EF680400-9B35-4933-9B10-52FFA9740042"
	SoundServiceUUID       = "EF680500-9B35-4933-9B10-52FFA9740042"
)

// Environment service characteristics.
const (
	TemperatureUUID       = "EF680201-9B35-4933-9B10-52FFA9740042"
	PressureUUID          = "EF680202-9B35-4933-9B10-52FFA9740042"
	HumidityUUID          = "EF680203-9B35-4933-9B10-52FFA9740042"
	AirQualityUUID        = "EF680204-9B35-4933-9B10-52FFA9740042"
	ColorUUID             = "EF680205-9B35-4933-9B10-52FFA9740042"
	EnvironmentConfigUUID = "EF680206-9B35-4933-9B10-52FFA9740042"
)

// UI service characteristics.
const (
	LEDUUID    = "EF680301-9B35-4933-9B10-52FFA9740042"
	ButtonUUID = "EF680302-9B35-4933-9B10-52FFA9740042"
)

// Motion service characteristics.
const (
	MotionConfigUUID = "EF680401-9B35-4933-9B10-52FFA9740042"
	TapUUID          = "EF680402-9B35-4933-9B10-52FFA9740042"
	OrientationUUID  = "EF680403-9B35-4933-9B10-52FFA9740042"
	QuaternionUUID   = "EF680404-9B35-4933-9B10-52FFA9740042"
	StepCounterUUID  = "EF680405-9B35-4933-9B10-52FFA9740042"
	RawMotionUUID    = "EF680406-9B35-4933-9B10-52FFA9740042"
	EulerUUID        = "EF680407-9B35-4933-9B10-52FFA9740042"
	HeadingUUID      = "EF680409-9B35-4933-9B10-52FFA9740042"
)

// Sound service characteristics.
const (
	SpeakerConfigUUID = "EF680501-9B35-4933-9B10-52FFA9740042"
	SpeakerDataUUID   = "EF680502-9B35-4933-9B10-52FFA9740042"
	SpeakerStatusUUID = "EF680503-9B35-4933-9B10-52FFA9740042"
)

// Standard Battery Service (adopted UUIDs).
const (
	BatteryServiceUUID = "0000180F-0000-1000-8000-00805F9B34FB"
	BatteryLevelUUID   = "00002A19-0000-1000-8000-00805F9B34FB"
)

// NamePatterns are the advertised-name substrings that identify a Thingy:52.
var NamePatterns = []string{"Thingy", "thingy"}

// Normalize converts a UUID string to the internal comparison format
// (lowercase, no dashes). It accepts both dashed and dash-free input.
func Normalize(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}

// Equal reports whether two UUID strings refer to the same UUID regardless
// of case or dash formatting.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

var knownServices = map[string]string{
	Normalize(EnvironmentServiceUUID): "Thingy Environment Service",
	Normalize(UIServiceUUID):          "Thingy UI Service",
	Normalize(MotionServiceUUID):      "Thingy Motion Service",
	Normalize(SoundServiceUUID):       "Thingy Sound Service",
	Normalize(BatteryServiceUUID):     "Battery Service",
}

var knownCharacteristics = map[string]string{
	Normalize(TemperatureUUID):       "Temperature",
	Normalize(PressureUUID):          "Pressure",
	Normalize(HumidityUUID):          "Humidity",
	Normalize(AirQualityUUID):        "Air Quality (eCO2/TVOC)",
	Normalize(ColorUUID):             "Color",
	Normalize(EnvironmentConfigUUID): "Environment Configuration",
	Normalize(LEDUUID):               "LED",
	Normalize(ButtonUUID):            "Button",
	Normalize(MotionConfigUUID):      "Motion Configuration",
	Normalize(TapUUID):               "Tap",
	Normalize(OrientationUUID):       "Orientation",
	Normalize(QuaternionUUID):        "Quaternion",
	Normalize(StepCounterUUID):       "Step Counter",
	Normalize(RawMotionUUID):         "Raw Motion",
	Normalize(EulerUUID):             "Euler Angles",
	Normalize(HeadingUUID):           "Heading",
	Normalize(SpeakerConfigUUID):     "Speaker Configuration",
	Normalize(SpeakerDataUUID):       "Speaker Data",
	Normalize(SpeakerStatusUUID):     "Speaker Status",
	Normalize(BatteryLevelUUID):      "Battery Level",
}

// LookupService returns the known name for a service UUID, or "" if unknown.
func LookupService(uuid string) string {
	return knownServices[Normalize(uuid)]
}

// LookupCharacteristic returns the known name for a characteristic UUID,
// or "" if unknown.
func LookupCharacteristic(uuid string) string {
	return knownCharacteristics[Normalize(uuid)]
}

// ServiceFor returns the service UUID a known characteristic belongs to,
// or "" if the characteristic is not part of the Thingy profile.
func ServiceFor(charUUID string) string {
	switch Normalize(charUUID) {
	case Normalize(TemperatureUUID), Normalize(PressureUUID), Normalize(HumidityUUID),
		Normalize(AirQualityUUID), Normalize(ColorUUID), Normalize(EnvironmentConfigUUID):
		return EnvironmentServiceUUID
	case Normalize(LEDUUID), Normalize(ButtonUUID):
		return UIServiceUUID
	case Normalize(MotionConfigUUID), Normalize(TapUUID), Normalize(OrientationUUID),
		Normalize(QuaternionUUID), Normalize(StepCounterUUID), Normalize(RawMotionUUID),
		Normalize(EulerUUID), Normalize(HeadingUUID):
		return MotionServiceUUID
	case Normalize(SpeakerConfigUUID), Normalize(SpeakerDataUUID), Normalize(SpeakerStatusUUID):
		return SoundServiceUUID
	case Normalize(BatteryLevelUUID):
		return BatteryServiceUUID
	default:
		return ""
	}
}

// MatchesName reports whether an advertised local name identifies a Thingy
// device. Matching is a plain substring check against NamePatterns.
func MatchesName(name string) bool {
	if name == "" {
		return false
	}
	for _, pattern := range NamePatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
