package tp20

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samsamfire/eurodiag/pkg/transport/virtualcan"
)

// fakeEcu answers one setup request, one parameter negotiation, then acks
// whatever data frame arrives, standing in for the ECU side of a channel.
func fakeEcu(t *testing.T, bus *virtualcan.Bus, dest uint32, remoteRx, remoteTx uint32, done <-chan struct{}) {
	require.NoError(t, bus.Open())
	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}
			frame, err := bus.RecvCanFrame(50 * time.Millisecond)
			if err != nil || frame.Data == nil {
				continue
			}
			switch frame.ID {
			case setupRequestId:
				resp := []byte{
					byte(dest), opAccepted,
					byte(remoteRx), byte(remoteRx >> 8),
					byte(remoteTx), byte(remoteTx >> 8),
					0x01,
				}
				_ = bus.SendCanFrame(setupRequestId+dest, resp)
			default:
				if len(frame.Data) > 0 && frame.Data[0] == opParamRequest {
					resp := []byte{opParamResponse, frame.Data[1], frame.Data[2], 0xFF, frame.Data[4], 0xFF}
					_ = bus.SendCanFrame(remoteRx, resp)
				} else if len(frame.Data) > 0 {
					b := frame.Data[0]
					op, seq := b&0xF0, b&0x0F
					if op == opMoreAck || op == opLastAck {
						ack := []byte{opAckReady | ((seq + 1) & 0x0F), 0, 0, 0, 0, 0, 0, 0}
						_ = bus.SendCanFrame(remoteRx, ack)
					}
				}
			}
		}
	}()
}

func TestEngineOpenSendS4S5Scenario(t *testing.T) {
	testerBus, ecuBus := virtualcan.NewPair()
	require.NoError(t, testerBus.Open())

	dest := uint32(0x01)
	remoteRx := uint32(0x300)
	remoteTx := uint32(0x740)
	done := make(chan struct{})
	defer close(done)
	fakeEcu(t, ecuBus, dest, remoteRx, remoteTx, done)

	cfg := DefaultConfig(dest)
	cfg.SetupTimeout = 2 * time.Second
	cfg.AckTimeout = 2 * time.Second
	engine := NewEngine(testerBus, cfg)
	require.NoError(t, engine.Open())
	defer engine.Close()

	state := engine.State()
	require.Equal(t, remoteTx, state.LocalTxId)
	require.Equal(t, remoteRx, state.LocalRxId)

	require.NoError(t, engine.Send([]byte{0x10, 0x89}))
}
