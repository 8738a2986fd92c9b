package ds2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samsamfire/eurodiag"
)

// fakeTransport replays a fixed sequence of WaitFrame chunks and records
// everything sent, standing in for the echoing serial line DS2 assumes.
type fakeTransport struct {
	sent   [][]byte
	chunks [][]byte
}

func (f *fakeTransport) Open() error  { return nil }
func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) Send(buf []byte) error {
	f.sent = append(f.sent, append([]byte(nil), buf...))
	return nil
}

func (f *fakeTransport) WaitFrame(timeout time.Duration) ([]byte, error) {
	if len(f.chunks) == 0 {
		return nil, nil
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	return chunk, nil
}

func (f *fakeTransport) SetBaudrate(baud int) error { return nil }

func TestReadMemoryS1Scenario(t *testing.T) {
	// S1: request ReadMemory(addr=0x12, memory_type=1, address=0x0077B0, size=1).
	addr := byte(0x12)
	memType := byte(1)
	memAddr := uint32(0x0077B0)
	size := byte(1)

	req, err := Build(addr, []byte{serviceReadMemory, memType, 0x00, 0x77, 0xB0, size})
	require.NoError(t, err)

	value := byte(0x2A)
	reply, err := Build(addr, []byte{byte(eurodiag.DS2StatusOK), memType, 0x00, 0x77, 0xB0, size, value})
	require.NoError(t, err)

	ft := &fakeTransport{chunks: [][]byte{req, reply}}
	client := NewClient(ft, addr)
	client.open = true

	result, err := client.ReadMemory(memType, memAddr, size, time.Second)
	require.NoError(t, err)
	assert.Equal(t, memType, result.MemoryTypeEcho)
	assert.Equal(t, memAddr, result.AddressEcho)
	assert.Equal(t, size, result.SizeEcho)
	assert.Equal(t, []byte{value}, result.MemoryData)
}

func TestReadMemoryEchoMismatch(t *testing.T) {
	addr := byte(0x12)
	req, _ := Build(addr, []byte{serviceReadMemory, 1, 0, 0x77, 0xB0, 1})
	// Echo a different memory type than requested.
	reply, _ := Build(addr, []byte{byte(eurodiag.DS2StatusOK), 2, 0, 0x77, 0xB0, 1, 0x00})
	ft := &fakeTransport{chunks: [][]byte{req, reply}}
	client := NewClient(ft, addr)

	_, err := client.ReadMemory(1, 0x0077B0, 1, time.Second)
	require.Error(t, err)
}

func TestSendRequestWithRetryStopsOnNonRecoverable(t *testing.T) {
	addr := byte(0x12)
	req, _ := Build(addr, []byte{serviceIdent})
	reply, _ := Build(addr, []byte{0xA3})
	ft := &fakeTransport{chunks: [][]byte{req, reply}}
	client := NewClient(ft, addr)

	_, err := client.SendRequestWithRetry([]byte{serviceIdent}, time.Second, 3)
	require.Error(t, err)
}
