package kwp2000

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestStartDiagnosticSessionS2Scenario(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x50, 0x89}}}
	client := NewClient(ft)
	res, err := client.StartDiagnosticSession(0x89, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x89), res.DiagnosticMode)
	assert.Equal(t, byte(0x89), res.SessionTypeEcho)
	require.Equal(t, []byte{0x10, 0x89}, ft.sent[0])
}

func TestReadDataByLocalIdentifierPendingThenPositiveS3Scenario(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{
		{0x7F, 0x21, 0x78},
		{0x7F, 0x21, 0x78},
		{0x61, 0x01, 0xAA, 0xBB, 0xCC},
	}}
	client := NewClient(ft)
	res, err := client.ReadDataByLocalIdentifier(0x01, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), res.LocalIdentifierEcho)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, res.Data)
}

func TestTesterPresentFireAndForgetDoesNotWaitForResponse(t *testing.T) {
	ft := &fakeTransport{} // no chunks queued: a wait_frame call would block forever
	client := NewClient(ft)
	err := client.TesterPresent(TesterPresentResponseNone)
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(TesterPresent), TesterPresentResponseNone}, ft.sent[0])
}

func TestSendRequestTimesOutWithNoFrames(t *testing.T) {
	ft := &fakeTransport{}
	client := NewClient(ft)
	err := client.StopDiagnosticSession(20 * time.Millisecond)
	require.Error(t, err)
}
