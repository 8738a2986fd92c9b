package tp20

import (
	"time"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// buildSetupRequest encodes the 7-byte setup request payload. Each 16-bit
// id is packed as low byte then (high nibble)|(valid flag nibble); valid=0
// means "proposed", valid=1 means "leave to peer". This function always
// packs valid=0; setupChannel then sets valid=1 on both ids, so the
// engine proposes neither id and the peer's response settles which
// actual CAN ids end up owned by which side.
func buildSetupRequest(dest byte, rxId, txId uint16, appType byte) []byte {
	rxLow, rxHigh := byte(rxId), byte(rxId>>8)
	txLow, txHigh := byte(txId), byte(txId>>8)
	return []byte{dest, opSetupRequest, rxLow, rxHigh, txLow, txHigh, appType}
}

type setupResponse struct {
	destEcho   byte
	opcode     byte
	remoteRxId uint16
	remoteTxId uint16
	appType    byte
}

func parseSetupResponse(payload []byte) (*setupResponse, error) {
	if len(payload) < 7 {
		return nil, &eurodiag.InvalidFrame{Reason: "short setup response"}
	}
	return &setupResponse{
		destEcho:   payload[0],
		opcode:     payload[1],
		remoteRxId: uint16(payload[2]) | uint16(payload[3]&0x0F)<<8,
		remoteTxId: uint16(payload[4]) | uint16(payload[5]&0x0F)<<8,
		appType:    payload[6],
	}, nil
}

// setupChannel performs 4.4.1: send the setup request on 0x200, await the
// response on 0x200+dest, and record the negotiated CAN ids.
//
// Own TX id = the id the response labels as the ECU's TX id; own RX id =
// the id the response labels as the ECU's RX id. Matches captured BMW/VAG
// traffic; do not swap to the seemingly more natural crossed assignment.
func setupChannel(can transport.CanTransport, cfg Config) (*ChannelState, error) {
	req := buildSetupRequest(byte(cfg.Dest), 0x0000, 0x0000, 0x01)
	req[3] |= 0x10 // rx id left to peer
	req[5] |= 0x10 // tx id left to peer

	if err := can.SendCanFrame(setupRequestId, req); err != nil {
		return nil, &eurodiag.TransportError{Cause: err}
	}

	deadline := time.Now().Add(cfg.SetupTimeout)
	expectedId := setupRequestId + cfg.Dest
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "tp20 channel setup"}
		}
		frame, err := can.RecvCanFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil {
			continue
		}
		if frame.ID != expectedId {
			continue
		}
		resp, err := parseSetupResponse(frame.Data)
		if err != nil {
			return nil, err
		}
		switch resp.opcode {
		case opAccepted:
			return &ChannelState{
				LocalTxId:   uint32(resp.remoteTxId),
				LocalRxId:   uint32(resp.remoteRxId),
				ChannelOpen: true,
			}, nil
		case opReject1, opReject2, opReject3:
			return nil, &eurodiag.ChannelSetupRejected{Opcode: resp.opcode}
		default:
			continue
		}
	}
}

// negotiateParameters performs 4.4.2 on the already-established TX id.
func negotiateParameters(can transport.CanTransport, state *ChannelState, cfg Config, timeout time.Duration) error {
	req := []byte{opParamRequest, cfg.BlockSize, cfg.T1, 0xFF, cfg.T3, 0xFF}
	if err := can.SendCanFrame(state.LocalTxId, req); err != nil {
		return &eurodiag.TransportError{Cause: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &eurodiag.Timeout{Op: "tp20 parameter negotiation"}
		}
		frame, err := can.RecvCanFrame(remaining)
		if err != nil {
			return &eurodiag.TransportError{Cause: err}
		}
		if frame.Data == nil || frame.ID != state.LocalRxId {
			continue
		}
		if len(frame.Data) < 5 || frame.Data[0] != opParamResponse {
			continue
		}
		state.BlockSize = frame.Data[1]
		state.T1 = decodeTimingByte(frame.Data[2])
		state.T3 = decodeTimingByte(frame.Data[4])
		return nil
	}
}
