package kwp2000

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDTCCountPrefixed(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x53, 0x02, 0x01, 0x23, 0x04, 0x56}}}
	client := NewClient(ft)
	res, err := client.ReadDTC(time.Second)
	require.NoError(t, err)
	require.NotNil(t, res.Count)
	assert.Equal(t, byte(2), *res.Count)
	assert.Equal(t, []uint16{0x0123, 0x0456}, res.Codes)
}

func TestReadDTCBareList(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x53, 0x01, 0x23}}}
	client := NewClient(ft)
	res, err := client.ReadDTC(time.Second)
	require.NoError(t, err)
	assert.Nil(t, res.Count)
	assert.Equal(t, []uint16{0x0123}, res.Codes)
}

func TestReadDTCByStatusTriples(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x58, 0x01, 0x23, 0xFF}}}
	client := NewClient(ft)
	res, err := client.ReadDTCByStatus(0x00, time.Second)
	require.NoError(t, err)
	assert.Nil(t, res.Count)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, DTCEntry{CodeHigh: 0x01, CodeLow: 0x23, Status: 0xFF}, res.Entries[0])
}

func TestClearDiagnosticInfoEchoMismatch(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x54, 0x02}}}
	client := NewClient(ft)
	_, err := client.ClearDiagnosticInfo(0x01, time.Second)
	require.Error(t, err)
}

func TestSecurityAccessSeed(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x67, 0x01, 0xAA, 0xBB}}}
	client := NewClient(ft)
	res, err := client.SecurityAccess(0x01, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), res.AccessTypeEcho)
	assert.Equal(t, []byte{0xAA, 0xBB}, res.SeedOrAck)
}

func TestRequestDownloadEchoValidation(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x74, 0x00, 0x01, 0x00, 0x00, 0x00, 0x10, 0x08}}}
	client := NewClient(ft)
	res, err := client.RequestDownload(0x000100, 0x000010, nil, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x000100), res.AddressEcho)
	assert.Equal(t, uint32(0x000010), res.SizeEcho)
	require.NotNil(t, res.MaxBlockLen)
	assert.Equal(t, byte(0x08), *res.MaxBlockLen)
}

func TestTransferDataBlockSeqEcho(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x76, 0x01, 0xDE, 0xAD}}}
	client := NewClient(ft)
	res, err := client.TransferData(0x01, []byte{0xDE, 0xAD}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), res.BlockSeqEcho)
	assert.Equal(t, []byte{0xDE, 0xAD}, res.Params)
}

func TestStartRoutineByAddressEchoValidation(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0x78, 0x00, 0x01, 0x00, 0x42}}}
	client := NewClient(ft)
	res, err := client.StartRoutineByAddress(0x000100, nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x000100), res.AddressEcho)
	assert.Equal(t, []byte{0x42}, res.Results)
}

func TestAccessTimingParameterPositiveIdException(t *testing.T) {
	// 0x83 -> 0xC3, not 0x83+0x40.
	ft := &fakeTransport{chunks: [][]byte{{0xC3, 0x04, 0x32, 0x02, 0x6E, 0x14, 0x0A}}}
	client := NewClient(ft)
	res, err := client.AccessTimingParameter(0x04, TimingStandardA, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(0x04), res.TpidEcho)
}

func TestStopCommunicationNoBody(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0xC2}}}
	client := NewClient(ft)
	require.NoError(t, client.StopCommunication(time.Second))
}

func TestEscCodePassesThroughOpaqueBody(t *testing.T) {
	ft := &fakeTransport{chunks: [][]byte{{0xC0, 0x01, 0x02, 0x03}}}
	client := NewClient(ft)
	res, err := client.EscCode([]byte{0x01, 0x02, 0x03}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, res.Data)
}
