package star

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseSerialFrameRoundTrip(t *testing.T) {
	for _, payload := range [][]byte{
		{},
		{0x10, 0x89},
		make([]byte, 255),
	} {
		frame, err := BuildSerialFrame(payload)
		require.NoError(t, err)
		got, consumed, err := ParseSerialFrame(frame)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		assert.Equal(t, len(frame), consumed)

		// Checksum is the modulo-256 sum over all preceding bytes.
		var sum byte
		for _, b := range frame[:len(frame)-1] {
			sum += b
		}
		assert.Equal(t, sum, frame[len(frame)-1])
	}
}

func TestParseSerialFrameSkipsLeadingNoise(t *testing.T) {
	frame, err := BuildSerialFrame([]byte{1, 2, 3})
	require.NoError(t, err)
	noisy := append([]byte{0x00, 0xFF}, frame...)
	payload, consumed, err := ParseSerialFrame(noisy)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)
	assert.Equal(t, len(noisy), consumed)
}

func TestParseSerialFrameBadChecksum(t *testing.T) {
	frame, err := BuildSerialFrame([]byte{1, 2, 3})
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xFF
	_, _, err = ParseSerialFrame(frame)
	require.Error(t, err)
}
