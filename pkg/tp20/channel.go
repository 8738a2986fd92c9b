// Package tp20 implements Volkswagen Transport Protocol 2.0: a
// connection-oriented CAN transport with a blockwise segmented payload
// transfer, ACK pacing and keep-alive. Caller operations (open, send,
// receive, close) run on the calling goroutine, read the CAN transport
// directly and are serialised by one mutex; there is no background RX
// worker and no command queue. The only background goroutine is the
// keep-alive timer, which takes the same mutex for each frame it writes.
package tp20

import "time"

const (
	setupRequestId = 0x200

	opSetupRequest = 0xC0
	opAccepted     = 0xD0
	opReject1      = 0xD6
	opReject2      = 0xD7
	opReject3      = 0xD8

	opParamRequest  = 0xA0
	opParamResponse = 0xA1
	opKeepAlive     = 0xA3
	opDisconnect    = 0xA8

	// Data opcode high nibbles.
	opMoreAck    = 0x10
	opLastAck    = 0x20
	opMoreNoAck  = 0x30
	opLastNoAck  = 0x40
	opAckReady   = 0xB0
	opAckNotReady = 0x90
)

// ChannelState is the tuple of identifiers and counters that define one
// open TP 2.0 channel.
type ChannelState struct {
	LocalRxId  uint32
	LocalTxId  uint32
	RemoteRxId uint32
	RemoteTxId uint32

	BlockSize byte
	T1        time.Duration
	T3        time.Duration

	NextTxSeq byte
	NextRxSeq byte

	ChannelOpen bool
}

// Config holds the tunables a caller sets before Open.
type Config struct {
	Dest uint32 // ECU logical address

	// Proposed parameters; the ECU's negotiation response is what the
	// engine actually uses thereafter.
	BlockSize byte // default 15
	T1        byte // encoded byte, default 0x8A
	T3        byte // encoded byte, default 0x32

	// KeepaliveInterval is configurable and intentionally NOT derived
	// from the negotiated t3: the source's 10ms default is implausibly
	// short next to typical negotiated t3 values around 50ms.
	KeepaliveInterval time.Duration

	SetupTimeout time.Duration
	AckTimeout   time.Duration
}

// DefaultConfig returns the engine's documented default proposal:
// block_size=15, t1=0x8A (10 x 10ms = 100ms), t3=0x32 (50 x 100us = 5ms).
func DefaultConfig(dest uint32) Config {
	return Config{
		Dest:              dest,
		BlockSize:         15,
		T1:                0x8A,
		T3:                0x32,
		KeepaliveInterval: 10 * time.Millisecond,
		SetupTimeout:      1 * time.Second,
		AckTimeout:        1 * time.Second,
	}
}
