// Package ds2 implements BMW's DS2 byte-stream diagnostic protocol: frame
// codec, transaction discipline and the small service set (Ident,
// ReadMemory, WriteMemory).
package ds2

import (
	"github.com/samsamfire/eurodiag"
)

// MaxPayload bounds the frame so the size byte (3 + len(payload)) never
// exceeds 255.
const MaxPayload = 252

// Build encodes a DS2 frame: [addr, size, payload..., xor_checksum], where
// size counts itself, the address byte and the checksum byte in addition
// to the payload.
func Build(addr byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, &eurodiag.InvalidFrame{Reason: "payload too large"}
	}
	size := 3 + len(payload)
	frame := make([]byte, 0, size)
	frame = append(frame, addr, byte(size))
	frame = append(frame, payload...)
	frame = append(frame, xorChecksum(frame))
	return frame, nil
}

// Parse decodes a DS2 frame, returning the responding address and payload.
func Parse(frame []byte) (addr byte, payload []byte, err error) {
	if len(frame) < 2 {
		return 0, nil, &eurodiag.InvalidFrame{Reason: "short frame"}
	}
	addr = frame[0]
	size := int(frame[1])
	if size < 3 {
		return 0, nil, &eurodiag.InvalidFrame{Reason: "short frame"}
	}
	if len(frame) < size {
		return 0, nil, &eurodiag.InvalidFrame{Reason: "short frame"}
	}
	payload = frame[2 : size-1]
	checksum := frame[size-1]
	if xorChecksum(frame[:size-1]) != checksum {
		return 0, nil, &eurodiag.BadChecksum{}
	}
	return addr, payload, nil
}

func xorChecksum(bytes []byte) byte {
	var c byte
	for _, b := range bytes {
		c ^= b
	}
	return c
}
