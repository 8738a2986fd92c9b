// Package eurodiag is the tester-side library root: it hosts the error
// taxonomy shared by every protocol engine (DS2, KWP2000, KWP2000-STAR,
// TP 2.0). Each protocol package lives under pkg/ and imports this package
// for its error types.
package eurodiag

import "fmt"

// TransportError wraps an underlying I/O failure from a byte or CAN
// transport. Never recoverable: the caller should treat the transport as
// unusable and reopen it.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Timeout reports that no response arrived within the caller's window.
// Recoverable: the next request may proceed normally.
type Timeout struct {
	Op string
}

func (e *Timeout) Error() string { return fmt.Sprintf("timeout waiting for %s", e.Op) }

// InvalidFrame reports a structurally malformed link-layer frame: short
// read, bad start byte, address mismatch. Recoverable.
type InvalidFrame struct {
	Reason string
}

func (e *InvalidFrame) Error() string { return fmt.Sprintf("invalid frame: %s", e.Reason) }

// BadChecksum reports a link-level checksum mismatch (DS2 XOR or STAR
// sum-256). Recoverable.
type BadChecksum struct{}

func (e *BadChecksum) Error() string { return "checksum mismatch" }

// ChannelSetupRejected reports that the ECU rejected a TP 2.0 channel setup
// request with one of the reject opcodes (0xD6/0xD7/0xD8). Not recoverable;
// the channel must be set up again from scratch.
type ChannelSetupRejected struct {
	Opcode byte
}

func (e *ChannelSetupRejected) Error() string {
	return fmt.Sprintf("channel setup rejected: opcode 0x%02X", e.Opcode)
}

// Disconnected reports that a TP 2.0 channel received a disconnect frame
// (0xA8) or was never established. Not recoverable.
type Disconnected struct{}

func (e *Disconnected) Error() string { return "channel disconnected" }

// AckTimeout reports that a TP 2.0 ACK window expired waiting for the ACK
// of the given sequence number. Recoverable.
type AckTimeout struct {
	Seq byte
}

func (e *AckTimeout) Error() string { return fmt.Sprintf("ack timeout: seq=%d", e.Seq) }

// SequenceError reports an out-of-order TP 2.0 data frame. Recoverable: the
// reassembly buffer is reset and a new message begins.
type SequenceError struct {
	Expected, Got byte
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence error: expected %d, got %d", e.Expected, e.Got)
}

// NegativeResponse is a typed KWP2000 rejection: service id sid was
// answered with negative response code nrc. Recoverable: the caller may
// retry or choose a different request.
type NegativeResponse struct {
	Sid byte
	Nrc byte
}

func (e *NegativeResponse) Error() string {
	return fmt.Sprintf("negative response: sid=0x%02X nrc=0x%02X (%s)", e.Sid, e.Nrc, NrcDescription(e.Nrc))
}

// EchoMismatch reports that a response echoed a different value than what
// the client sent for the named field. Not recoverable: the transaction is
// ambiguous and must not be retried blindly.
type EchoMismatch struct {
	Field string
}

func (e *EchoMismatch) Error() string { return fmt.Sprintf("echo mismatch: %s", e.Field) }

// DS2StatusCode is the DS2 response status octet, distinct from the
// KWP2000 NRC space.
type DS2StatusCode byte

const (
	DS2StatusOK             DS2StatusCode = 0xA0
	DS2StatusBusy           DS2StatusCode = 0xA1
	DS2StatusRejected       DS2StatusCode = 0xA2
	DS2StatusInvalidParam   DS2StatusCode = 0xA3
	DS2StatusInvalidFunc    DS2StatusCode = 0xA4
	DS2StatusInvalidNumber  DS2StatusCode = 0xA5
	DS2StatusNack           DS2StatusCode = 0xFF
)

var ds2StatusDescriptionMap = map[DS2StatusCode]string{
	DS2StatusOK:            "positive response",
	DS2StatusBusy:          "ECU busy, retriable",
	DS2StatusRejected:      "request rejected",
	DS2StatusInvalidParam:  "invalid parameter",
	DS2StatusInvalidFunc:   "invalid function",
	DS2StatusInvalidNumber: "invalid number",
	DS2StatusNack:          "NACK, invalid command",
}

// Description returns a human-readable explanation of the status code, or
// "unknown status" for values outside the known set (which DS2 passes
// through rather than treating as a protocol violation).
func (c DS2StatusCode) Description() string {
	if d, ok := ds2StatusDescriptionMap[c]; ok {
		return d
	}
	return "unknown status"
}

// Recoverable reports whether a transaction that received this status may
// be retried as-is. Only busy is recoverable; invalid-parameter/-function/
// -number and NACK are not.
func (c DS2StatusCode) Recoverable() bool {
	return c == DS2StatusBusy
}

// DS2Status is the error wrapping a non-OK DS2 status octet.
type DS2Status struct {
	Code DS2StatusCode
}

func (e *DS2Status) Error() string {
	return fmt.Sprintf("ds2 status 0x%02X: %s", byte(e.Code), e.Code.Description())
}
