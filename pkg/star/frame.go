// Package star implements the two KWP2000-STAR link-layer variants that
// share the KWP2000 service catalog from pkg/kwp2000: a serial frame
// format with a dedicated baud-rate identification probe, and an
// ISO-TP-on-CAN adapter.
package star

import (
	"github.com/samsamfire/eurodiag"
)

const (
	startByte = 0xB8
	target    = 0x12
	source    = 0xF1
)

// BuildSerialFrame encodes [0xB8, target, source, len, payload…, sum256].
func BuildSerialFrame(payload []byte) ([]byte, error) {
	if len(payload) > 255 {
		return nil, &eurodiag.InvalidFrame{Reason: "payload too large"}
	}
	frame := []byte{startByte, target, source, byte(len(payload))}
	frame = append(frame, payload...)
	frame = append(frame, sum256(frame))
	return frame, nil
}

// ParseSerialFrame consumes one frame from a byte stream that may be
// preceded by noise: it scans for the start byte, reads len from offset
// 3, reads len+1 more bytes (payload and checksum), and validates the
// checksum.
func ParseSerialFrame(buf []byte) (payload []byte, consumed int, err error) {
	start := -1
	for i, b := range buf {
		if b == startByte {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, 0, &eurodiag.InvalidFrame{Reason: "no start byte"}
	}
	if len(buf) < start+4 {
		return nil, 0, &eurodiag.InvalidFrame{Reason: "short frame"}
	}
	length := int(buf[start+3])
	total := start + 4 + length + 1
	if len(buf) < total {
		return nil, 0, &eurodiag.InvalidFrame{Reason: "short frame"}
	}
	frame := buf[start:total]
	checksum := frame[len(frame)-1]
	if sum256(frame[:len(frame)-1]) != checksum {
		return nil, 0, &eurodiag.BadChecksum{}
	}
	return frame[4 : 4+length], total, nil
}

func sum256(bytes []byte) byte {
	var s byte
	for _, b := range bytes {
		s += b
	}
	return s
}
