package star

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsamfire/eurodiag/pkg/transport/virtualcan"
)

func TestSingleFrameSendRoundTrip(t *testing.T) {
	a, b := virtualcan.NewPair()
	require.NoError(t, a.Open())
	require.NoError(t, b.Open())
	defer a.Close()
	defer b.Close()

	tester := NewCanTransport(a, 0x600, 0x601)
	require.NoError(t, tester.Open())

	require.NoError(t, tester.Send([]byte{0x10, 0x89}))
	frame, err := b.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(target), frame.Data[0])
	assert.Equal(t, byte(2), frame.Data[1])
	assert.Equal(t, []byte{0x10, 0x89}, frame.Data[2:4])
}

// TestMultiFrameS6Scenario mirrors a 12-byte request sent as First Frame +
// two Consecutive Frames, with the tester waiting for a Flow Control in
// between.
func TestMultiFrameS6Scenario(t *testing.T) {
	testerBus, ecuBus := virtualcan.NewPair()
	require.NoError(t, testerBus.Open())
	require.NoError(t, ecuBus.Open())
	defer testerBus.Close()
	defer ecuBus.Close()

	tester := NewCanTransport(testerBus, 0x600, 0x601)
	require.NoError(t, tester.Open())

	payload := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	done := make(chan error, 1)
	go func() { done <- tester.Send(payload) }()

	first, err := ecuBus.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{target, 0x10, 0x0C, 0, 1, 2, 3, 4}, first.Data)

	require.NoError(t, ecuBus.SendCanFrame(0x601, []byte{source, 0x30, 0x00, 0x02, 0, 0, 0, 0}))

	cf1, err := ecuBus.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{target, 0x21, 5, 6, 7, 8, 9, 10}, cf1.Data)

	cf2, err := ecuBus.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(target), cf2.Data[0])
	assert.Equal(t, byte(0x22), cf2.Data[1])
	assert.Equal(t, byte(11), cf2.Data[2])

	require.NoError(t, <-done)
}
