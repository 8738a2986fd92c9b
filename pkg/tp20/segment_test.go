package tp20

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsamfire/eurodiag/pkg/transport/virtualcan"
)

func TestChunkOpcodeLastChunkAlwaysAckRequired(t *testing.T) {
	assert.Equal(t, byte(opLastAck), chunkOpcode(0, 1, 15))
	assert.Equal(t, byte(opLastAck), chunkOpcode(4, 5, 15))
}

func TestChunkOpcodeBlockBoundary(t *testing.T) {
	// block_size=2: chunk 0 no-ack, chunk 1 ack (ends block), chunk 2 no-ack,
	// chunk 3 last+ack.
	assert.Equal(t, byte(opMoreNoAck), chunkOpcode(0, 4, 2))
	assert.Equal(t, byte(opMoreAck), chunkOpcode(1, 4, 2))
	assert.Equal(t, byte(opMoreNoAck), chunkOpcode(2, 4, 2))
	assert.Equal(t, byte(opLastAck), chunkOpcode(3, 4, 2))
}

func TestReassemblerAccumulatesAcrossPushes(t *testing.T) {
	r := newReassembler(5)
	assert.False(t, r.complete())
	r.push([]byte{1, 2, 3})
	assert.False(t, r.complete())
	r.push([]byte{4, 5})
	assert.True(t, r.complete())
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, r.payload())
}

// TestSendPayloadUsesSevenByteChunks guards against regressing the data
// chunk size to 6 bytes: TP 2.0 has no address-prefix byte eating into the
// CAN payload the way STAR-on-CAN does, so the full 7 bytes after the
// opcode/seq byte are available per frame. A 12-byte payload (14 bytes
// once the 2-byte length header is prepended) must split into exactly two
// chunks (7 + 7), not three.
func TestSendPayloadUsesSevenByteChunks(t *testing.T) {
	tester, ecu := virtualcan.NewPair()
	require.NoError(t, tester.Open())
	require.NoError(t, ecu.Open())
	defer tester.Close()
	defer ecu.Close()

	state := &ChannelState{LocalTxId: 0x700, LocalRxId: 0x701, BlockSize: 15, T3: time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- sendPayload(tester, state, make([]byte, 12), time.Second) }()

	first, err := ecu.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Len(t, first.Data, 8)
	assert.Equal(t, byte(opMoreNoAck), first.Data[0]&0xF0)

	second, err := ecu.RecvCanFrame(time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(opLastAck), second.Data[0]&0xF0)

	ackSeq := (second.Data[0]&0x0F + 1) & 0x0F
	require.NoError(t, ecu.SendCanFrame(state.LocalRxId, []byte{opAckReady | ackSeq, 0, 0, 0, 0, 0, 0, 0}))

	require.NoError(t, <-done)

	extra, err := ecu.RecvCanFrame(50 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, extra.Data, "expected exactly two data chunks")
}

func TestSequenceWrapAt17(t *testing.T) {
	seq := byte(0)
	var first byte
	for n := 1; n <= 17; n++ {
		if n == 1 {
			first = seq
		}
		if n == 17 {
			assert.Equal(t, first, seq, "17th sequence should equal the 1st")
		}
		seq = (seq + 1) & 0x0F
	}
}
