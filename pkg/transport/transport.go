// Package transport defines the two capability interfaces every protocol
// engine in eurodiag is built against: a byte-stream transport (DS2,
// KWP2000 serial, STAR serial) and a CAN frame transport (TP 2.0,
// STAR-on-CAN). Concrete implementations live in the serial, socketcan and
// virtualcan subpackages.
package transport

import "time"

// ByteTransport is an opaque bidirectional byte channel, typically a
// serial UART. Implementations do not add framing of their own: Send
// writes exactly the given bytes and WaitFrame returns whatever arrived
// within the window.
type ByteTransport interface {
	Open() error
	Close() error

	// Send writes buffer in full or returns an error. No implicit framing.
	Send(buffer []byte) error

	// WaitFrame blocks up to timeout for any bytes to arrive and returns
	// them. A nil, nil return means the window elapsed with nothing
	// received; this is not itself an error.
	WaitFrame(timeout time.Duration) ([]byte, error)

	// SetBaudrate changes the link rate. Implementations that cannot
	// change rate at runtime may return an error.
	SetBaudrate(baud int) error
}

// CanFrame is one 11-bit-id CAN frame with up to 8 data bytes.
type CanFrame struct {
	ID   uint32
	Data []byte
}

// CanTransport is a CAN interface addressed by 11-bit identifier.
type CanTransport interface {
	Open() error
	Close() error

	SendCanFrame(id uint32, data []byte) error

	// RecvCanFrame blocks up to timeout for a frame on any id and returns
	// it. A zero CanFrame with nil error means the window elapsed with
	// nothing received.
	RecvCanFrame(timeout time.Duration) (CanFrame, error)
}
