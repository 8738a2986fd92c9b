package ds2

import (
	"time"

	"github.com/samsamfire/eurodiag"
)

const (
	serviceIdent       = 0x04
	serviceReadMemory  = 0x06
	serviceWriteMemory = 0x07
)

// IdentResult is the raw identification payload an ECU returns; its
// structure is ECU-family specific, so it is passed through unparsed.
type IdentResult struct {
	Data []byte
}

// Ident issues the Ident(0x04) service.
func (c *Client) Ident(timeout time.Duration) (*IdentResult, error) {
	resp, err := c.SendRequest([]byte{serviceIdent}, timeout)
	if err != nil {
		return nil, err
	}
	return &IdentResult{Data: resp.Payload}, nil
}

// ReadMemoryResult is the positive response to ReadMemory: the response
// echoes the requested memory type, address and size ahead of the data.
type ReadMemoryResult struct {
	MemoryTypeEcho byte
	AddressEcho    uint32
	SizeEcho       byte
	MemoryData     []byte
}

func be24(addr uint32) [3]byte {
	return [3]byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// ReadMemory issues ReadMemory(0x06) with (memory_type, 24-bit address,
// size) and validates the echoed type/address/size against the request.
func (c *Client) ReadMemory(memoryType byte, address uint32, size byte, timeout time.Duration) (*ReadMemoryResult, error) {
	a := be24(address)
	req := []byte{serviceReadMemory, memoryType, a[0], a[1], a[2], size}
	resp, err := c.SendRequest(req, timeout)
	if err != nil {
		return nil, err
	}
	body := resp.Payload
	if len(body) < 5 {
		return nil, &eurodiag.InvalidFrame{Reason: "short read-memory response"}
	}
	echoType := body[0]
	echoAddr := uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
	echoSize := body[4]
	if echoType != memoryType {
		return nil, &eurodiag.EchoMismatch{Field: "memory_type"}
	}
	if echoAddr != address {
		return nil, &eurodiag.EchoMismatch{Field: "address"}
	}
	if echoSize != size {
		return nil, &eurodiag.EchoMismatch{Field: "size"}
	}
	return &ReadMemoryResult{
		MemoryTypeEcho: echoType,
		AddressEcho:    echoAddr,
		SizeEcho:       echoSize,
		MemoryData:     body[5:],
	}, nil
}

// WriteMemory issues WriteMemory(0x07) with (memory_type, 24-bit address,
// size, content).
func (c *Client) WriteMemory(memoryType byte, address uint32, content []byte, timeout time.Duration) error {
	a := be24(address)
	req := make([]byte, 0, 6+len(content))
	req = append(req, serviceWriteMemory, memoryType, a[0], a[1], a[2], byte(len(content)))
	req = append(req, content...)
	_, err := c.SendRequest(req, timeout)
	return err
}
