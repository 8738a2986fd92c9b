package virtualcan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairSendRecv(t *testing.T) {
	a, b := NewPair()
	require.NoError(t, a.Open())
	require.NoError(t, b.Open())
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.SendCanFrame(0x200, []byte{1, 2, 3}))
	frame, err := b.RecvCanFrame(100 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x200), frame.ID)
	assert.Equal(t, []byte{1, 2, 3}, frame.Data)
}

func TestRecvTimeoutReturnsZeroValue(t *testing.T) {
	a, b := NewPair()
	require.NoError(t, a.Open())
	require.NoError(t, b.Open())
	defer a.Close()
	defer b.Close()

	frame, err := a.RecvCanFrame(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), frame.ID)
	assert.Nil(t, frame.Data)
}

func TestDoesNotReceiveOwnTraffic(t *testing.T) {
	a, b := NewPair()
	require.NoError(t, a.Open())
	require.NoError(t, b.Open())
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.SendCanFrame(0x1, []byte{0xAA}))
	own, err := a.RecvCanFrame(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, own.Data)
	frame, err := b.RecvCanFrame(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1), frame.ID)
}
