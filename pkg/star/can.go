package star

import (
	"time"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

const (
	pciSingleMask = 0x0F
	pciFirst      = 0x10
	pciConsec     = 0x20
	pciFlowCtrl   = 0x30
)

// CanTransport adapts the KWP2000 byte-transport contract onto two CAN
// ids using ISO-TP (ISO 15765-2) single/first/consecutive/flow-control
// framing with a one-byte BMW-style address prefix. This is the
// authoritative field order (target/len/payload on TX, src/len/payload on
// RX): an earlier definition in the source this was distilled from used
// inconsistent orders across files; the later ISO-TP-on-CAN file is
// treated as ground truth here.
type CanTransport struct {
	can   transport.CanTransport
	txId  uint32
	rxId  uint32
}

// NewCanTransport binds the adapter to a CAN transport and the tester's
// TX/RX CAN ids.
func NewCanTransport(can transport.CanTransport, txId, rxId uint32) *CanTransport {
	return &CanTransport{can: can, txId: txId, rxId: rxId}
}

func (c *CanTransport) Open() error  { return c.can.Open() }
func (c *CanTransport) Close() error { return c.can.Close() }

func (c *CanTransport) SetBaudrate(int) error { return nil }

// Send writes payload using Single Frame framing when it fits in 6 bytes,
// otherwise First Frame + Consecutive Frames with a Flow Control
// handshake after the First Frame.
func (c *CanTransport) Send(payload []byte) error {
	if len(payload) <= 6 {
		frame := []byte{target, byte(len(payload))}
		frame = append(frame, payload...)
		return c.sendPadded(frame)
	}

	first := []byte{target, pciFirst | byte(len(payload)>>8), byte(len(payload))}
	first = append(first, payload[:5]...)
	if err := c.sendPadded(first); err != nil {
		return err
	}

	if _, err := c.waitFlowControl(1 * time.Second); err != nil {
		return err
	}

	remaining := payload[5:]
	seq := byte(1)
	for len(remaining) > 0 {
		n := 6
		if n > len(remaining) {
			n = len(remaining)
		}
		frame := []byte{target, pciConsec | seq}
		frame = append(frame, remaining[:n]...)
		if err := c.sendPadded(frame); err != nil {
			return err
		}
		remaining = remaining[n:]
		seq++
		if seq == 0x10 {
			seq = 1
		}
	}
	return nil
}

func (c *CanTransport) sendPadded(frame []byte) error {
	for len(frame) < 8 {
		frame = append(frame, 0)
	}
	return c.can.SendCanFrame(c.txId, frame)
}

func (c *CanTransport) waitFlowControl(timeout time.Duration) (*flowControl, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "star-on-can flow control"}
		}
		frame, err := c.can.RecvCanFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != c.rxId || len(frame.Data) < 4 {
			continue
		}
		if frame.Data[0] != source {
			continue
		}
		if frame.Data[1]&0xF0 != pciFlowCtrl {
			continue
		}
		return &flowControl{blockSize: frame.Data[2], separationTime: frame.Data[3]}, nil
	}
}

type flowControl struct {
	blockSize      byte
	separationTime byte
}

// WaitFrame reassembles a Single Frame or First+Consecutive sequence,
// sending the required Flow Control after the First Frame.
func (c *CanTransport) WaitFrame(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		frame, err := c.can.RecvCanFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != c.rxId || len(frame.Data) < 2 {
			continue
		}
		if frame.Data[0] != source {
			continue
		}
		pci := frame.Data[1]
		switch {
		case pci&0xF0 == 0 && pci <= 6:
			n := int(pci & pciSingleMask)
			return frame.Data[2 : 2+n], nil
		case pci&0xF0 == pciFirst:
			return c.receiveMultiFrame(frame.Data, deadline)
		}
	}
}

func (c *CanTransport) receiveMultiFrame(first []byte, deadline time.Time) ([]byte, error) {
	length := int(first[1]&0x0F)<<8 | int(first[2])
	data := append([]byte(nil), first[3:8]...)

	fc := []byte{target, pciFlowCtrl, 0x00, 0x02, 0, 0, 0, 0}
	if err := c.can.SendCanFrame(c.txId, fc); err != nil {
		return nil, &eurodiag.TransportError{Cause: err}
	}

	expectedSeq := byte(1)
	for len(data) < length {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "star-on-can consecutive frame"}
		}
		frame, err := c.can.RecvCanFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != c.rxId || len(frame.Data) < 2 {
			continue
		}
		if frame.Data[0] != source || frame.Data[1]&0xF0 != pciConsec {
			continue
		}
		seq := frame.Data[1] & 0x0F
		if seq != expectedSeq {
			return nil, &eurodiag.SequenceError{Expected: expectedSeq, Got: seq}
		}
		data = append(data, frame.Data[2:]...)
		expectedSeq++
		if expectedSeq == 0x10 {
			expectedSeq = 1
		}
	}
	return data[:length], nil
}
