package codec

// SpeakerMode selects how the speaker data characteristic is interpreted.
type SpeakerMode uint8

const (
	SpeakerFrequency SpeakerMode = 1 // tone playback at a given frequency
	SpeakerPCM       SpeakerMode = 2 // 8 kHz PCM streaming
	SpeakerSample    SpeakerMode = 3 // preset sample playback by id
)

// MicrophoneMode selects the microphone encoding.
type MicrophoneMode uint8

const (
	MicrophoneADPCM MicrophoneMode = 1
	MicrophoneSPL   MicrophoneMode = 2
)

const speakerConfigFrameLen = 2

// Sample id range for preset sample playback.
const (
	MinSoundSample = 1
	MaxSoundSample = 8
)

// SpeakerConfig is the 2-byte sound service configuration record. There is
// no volume field: preset-sample playback runs at a fixed volume, and tone
// volume travels in the speaker data frame instead.
type SpeakerConfig struct {
	Speaker    SpeakerMode
	Microphone MicrophoneMode
}

// DefaultSpeakerConfig configures sample playback with ADPCM microphone
// encoding, matching the configuration the stock firmware apps use.
func DefaultSpeakerConfig() SpeakerConfig {
	return SpeakerConfig{Speaker: SpeakerSample, Microphone: MicrophoneADPCM}
}

// Encode serializes the record, validating both mode domains.
func (c SpeakerConfig) Encode() ([]byte, error) {
	if c.Speaker < SpeakerFrequency || c.Speaker > SpeakerSample {
		return nil, &InvalidParameterError{Param: "speaker mode", Value: int(c.Speaker), Reason: "must be 1, 2 or 3"}
	}
	if c.Microphone < MicrophoneADPCM || c.Microphone > MicrophoneSPL {
		return nil, &InvalidParameterError{Param: "microphone mode", Value: int(c.Microphone), Reason: "must be 1 or 2"}
	}
	return []byte{byte(c.Speaker), byte(c.Microphone)}, nil
}

// DecodeSpeakerConfig decodes the sound service configuration record.
func DecodeSpeakerConfig(b []byte) (SpeakerConfig, error) {
	if err := checkLen("speaker config", b, speakerConfigFrameLen); err != nil {
		return SpeakerConfig{}, err
	}
	return SpeakerConfig{Speaker: SpeakerMode(b[0]), Microphone: MicrophoneMode(b[1])}, nil
}

// EncodeSoundSample encodes a preset-sample trigger. Sample ids outside 1..8
// are rejected.
func EncodeSoundSample(id int) ([]byte, error) {
	if id < MinSoundSample || id > MaxSoundSample {
		return nil, &InvalidParameterError{Param: "sound id", Value: id, Reason: "must be 1..8"}
	}
	return []byte{byte(id)}, nil
}
