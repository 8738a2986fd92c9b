package ds2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParseRoundTrip(t *testing.T) {
	cases := []struct {
		addr    byte
		payload []byte
	}{
		{0x12, []byte{0x06, 0x01, 0x00, 0x77, 0xB0, 0x01}},
		{0x00, []byte{}},
		{0xFF, make([]byte, MaxPayload)},
	}
	for _, tc := range cases {
		frame, err := Build(tc.addr, tc.payload)
		require.NoError(t, err)
		addr, payload, err := Parse(frame)
		require.NoError(t, err)
		assert.Equal(t, tc.addr, addr)
		assert.Equal(t, tc.payload, payload)
	}
}

func TestBuildRejectsOversizePayload(t *testing.T) {
	_, err := Build(0x12, make([]byte, MaxPayload+1))
	require.Error(t, err)
}

func TestParseRejectsShortFrame(t *testing.T) {
	_, _, err := Parse([]byte{0x12})
	require.Error(t, err)
}

func TestParseRejectsBadChecksum(t *testing.T) {
	frame, err := Build(0x12, []byte{1, 2, 3})
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xFF
	_, _, err = Parse(frame)
	require.Error(t, err)
}

func TestParseS1ReplyFrame(t *testing.T) {
	payload := []byte{0xA0, 0x01, 0x00, 0x77, 0xB0, 0x01, 0x42}
	frame, err := Build(0x12, payload)
	require.NoError(t, err)
	addr, body, err := Parse(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), addr)
	assert.Equal(t, payload, body)
}
