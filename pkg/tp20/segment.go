package tp20

import (
	"time"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/internal/fifo"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// chunkOpcode chooses the data opcode for the idx-th chunk out of total,
// given the negotiated block size. ACK is required at the end of a block
// or on the last chunk; the "last" class is used on the last chunk
// regardless of block boundary.
func chunkOpcode(idx, total int, blockSize byte) byte {
	isLast := idx == total-1
	endsBlock := blockSize != 0 && (idx+1)%int(blockSize) == 0
	ackRequired := endsBlock || isLast
	switch {
	case isLast && ackRequired:
		return opLastAck
	case isLast:
		return opLastNoAck
	case ackRequired:
		return opMoreAck
	default:
		return opMoreNoAck
	}
}

func requiresAck(opcode byte) bool {
	return opcode&0xF0 == opMoreAck || opcode&0xF0 == opLastAck
}

// sendPayload implements 4.4.3's send side: prepend a 2-byte length
// header, chunk into 7-byte pieces after the opcode/seq byte, and pace
// ACKs per the negotiated block size.
func sendPayload(can transport.CanTransport, state *ChannelState, payload []byte, ackTimeout time.Duration) error {
	header := []byte{byte(len(payload) >> 8), byte(len(payload))}
	data := append(append([]byte(nil), header...), payload...)

	var chunks [][]byte
	for len(data) > 0 {
		n := 7
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}

	for i, chunk := range chunks {
		opcode := chunkOpcode(i, len(chunks), state.BlockSize)
		seq := state.NextTxSeq
		frame := make([]byte, 0, 8)
		frame = append(frame, opcode|seq)
		frame = append(frame, chunk...)
		for len(frame) < 8 {
			frame = append(frame, 0)
		}
		if err := can.SendCanFrame(state.LocalTxId, frame); err != nil {
			return &eurodiag.TransportError{Cause: err}
		}
		state.NextTxSeq = (state.NextTxSeq + 1) & 0x0F

		if requiresAck(opcode) {
			if err := waitForAck(can, state, seq, ackTimeout); err != nil {
				return err
			}
		} else if i < len(chunks)-1 {
			time.Sleep(state.T3)
		}
	}
	return nil
}

// waitForAck blocks for the ACK of sentSeq. A receiver-not-ready ACK
// defers (continues waiting) and a disconnect frame fails with
// Disconnected. This engine drains the CAN transport directly, with no
// separate RX queue: any other frame read while waiting (keep-alive, an
// ACK for another sequence, a data frame) is discarded and is not
// available to a later Receive.
func waitForAck(can transport.CanTransport, state *ChannelState, sentSeq byte, timeout time.Duration) error {
	want := (sentSeq + 1) & 0x0F
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &eurodiag.AckTimeout{Seq: sentSeq}
		}
		frame, err := can.RecvCanFrame(remaining)
		if err != nil {
			return &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != state.LocalRxId || len(frame.Data) == 0 {
			continue
		}
		b := frame.Data[0]
		opcode, seq := b&0xF0, b&0x0F
		switch {
		case opcode == opAckReady:
			if seq == want {
				return nil
			}
		case opcode == opAckNotReady:
			continue
		case b == opKeepAlive:
			continue
		case b == opDisconnect:
			return &eurodiag.Disconnected{}
		}
	}
}

// reassembler accumulates inbound data frames into one application
// payload per 4.4.3's receive side, using a fifo sized to the length
// declared by the first data frame.
type reassembler struct {
	length int
	buf    *fifo.Fifo
}

func newReassembler(length int) *reassembler {
	return &reassembler{length: length, buf: fifo.NewFifo(length)}
}

func (r *reassembler) push(body []byte) {
	r.buf.Write(body)
}

func (r *reassembler) complete() bool {
	return r.buf.GetOccupied() >= r.length
}

func (r *reassembler) payload() []byte {
	out := make([]byte, r.length)
	r.buf.Read(out)
	return out
}

// receivePayload drains frames until a complete application message is
// reassembled. A sequence mismatch resets the buffer and starts over, as
// the protocol specifies, rather than failing outright.
func receivePayload(can transport.CanTransport, state *ChannelState, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	var r *reassembler

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "tp20 receive"}
		}
		frame, err := can.RecvCanFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != state.LocalRxId || len(frame.Data) == 0 {
			continue
		}
		b := frame.Data[0]
		opcode, seq := b&0xF0, b&0x0F
		body := frame.Data[1:]

		switch {
		case b == opKeepAlive:
			continue
		case b == opDisconnect:
			return nil, &eurodiag.Disconnected{}
		case opcode == opMoreAck || opcode == opLastAck || opcode == opMoreNoAck || opcode == opLastNoAck:
			if r == nil {
				if len(body) < 2 {
					return nil, &eurodiag.InvalidFrame{Reason: "short first data frame"}
				}
				length := int(body[0])<<8 | int(body[1])
				r = newReassembler(length)
				r.push(body[2:])
				state.NextRxSeq = (seq + 1) & 0x0F
			} else {
				if seq != state.NextRxSeq {
					r = nil
					continue
				}
				r.push(body)
				state.NextRxSeq = (seq + 1) & 0x0F
			}
			if opcode == opMoreAck || opcode == opLastAck {
				ack := []byte{opAckReady | state.NextRxSeq}
				for len(ack) < 8 {
					ack = append(ack, 0)
				}
				if err := can.SendCanFrame(state.LocalTxId, ack); err != nil {
					return nil, &eurodiag.TransportError{Cause: err}
				}
			}
			if r.complete() {
				return r.payload(), nil
			}
		}
	}
}
