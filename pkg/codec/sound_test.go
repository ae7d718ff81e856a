package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerConfigEncode(t *testing.T) {
	t.Run("sample mode with ADPCM mic", func(t *testing.T) {
		got, err := DefaultSpeakerConfig().Encode()
		require.NoError(t, err)
		assert.Equal(t, []byte{3, 1}, got)
	})

	t.Run("frequency mode with SPL mic", func(t *testing.T) {
		got, err := SpeakerConfig{Speaker: SpeakerFrequency, Microphone: MicrophoneSPL}.Encode()
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, got)
	})

	t.Run("invalid modes", func(t *testing.T) {
		invalid := []SpeakerConfig{
			{Speaker: 0, Microphone: MicrophoneADPCM},
			{Speaker: 4, Microphone: MicrophoneADPCM},
			{Speaker: SpeakerSample, Microphone: 0},
			{Speaker: SpeakerSample, Microphone: 3},
		}
		for _, cfg := range invalid {
			_, err := cfg.Encode()
			require.Error(t, err)
			assert.True(t, IsInvalidParameter(err))
		}
	})
}

func TestDecodeSpeakerConfig(t *testing.T) {
	got, err := DecodeSpeakerConfig([]byte{2, 1})
	require.NoError(t, err)
	assert.Equal(t, SpeakerConfig{Speaker: SpeakerPCM, Microphone: MicrophoneADPCM}, got)

	_, err = DecodeSpeakerConfig([]byte{2})
	assert.True(t, IsMalformedFrame(err))
}

func TestEncodeSoundSample(t *testing.T) {
	t.Run("whole valid range", func(t *testing.T) {
		for id := MinSoundSample; id <= MaxSoundSample; id++ {
			got, err := EncodeSoundSample(id)
			require.NoError(t, err)
			assert.Equal(t, []byte{byte(id)}, got)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, id := range []int{0, 9, -3, 255} {
			_, err := EncodeSoundSample(id)
			require.Error(t, err)
			assert.True(t, IsInvalidParameter(err))
		}
	})
}
