package kwp2000

import (
	"time"

	"github.com/samsamfire/eurodiag"
)

// This file carries the façade methods and typed result structs for the
// remainder of the service catalog (spec.md's positive-response table):
// the ones client.go doesn't already cover. Each composes an encoder from
// requests.go, calls SendRequest and validates whatever echo the service
// defines, the same shape as client.go's StartDiagnosticSession etc.

type ReadFreezeFrameDataResult struct {
	FrameNumEcho byte
	Data         []byte
}

func (c *Client) ReadFreezeFrameData(frameNum byte, timeout time.Duration) (*ReadFreezeFrameDataResult, error) {
	body, err := c.SendRequest(ReadFreezeFrameData, EncodeReadFreezeFrameData(frameNum), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != frameNum {
		return nil, &eurodiag.EchoMismatch{Field: "frame_num"}
	}
	return &ReadFreezeFrameDataResult{FrameNumEcho: body[0], Data: body[1:]}, nil
}

// ReadDTCResult holds the DTC codes returned by ReadDTC. The response body
// carries an optional leading count byte ahead of the 2-byte DTC codes; an
// odd-length body is treated as count-prefixed, an even-length body as a
// bare list.
type ReadDTCResult struct {
	Count *byte
	Codes []uint16
}

func (c *Client) ReadDTC(timeout time.Duration) (*ReadDTCResult, error) {
	body, err := c.SendRequest(ReadDTC, EncodeReadDTC(), timeout)
	if err != nil {
		return nil, err
	}
	res := &ReadDTCResult{}
	data := body
	if len(data)%2 != 0 {
		n := data[0]
		res.Count = &n
		data = data[1:]
	}
	for i := 0; i+2 <= len(data); i += 2 {
		res.Codes = append(res.Codes, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return res, nil
}

type ClearDiagnosticInfoResult struct{ GroupIdEcho byte }

func (c *Client) ClearDiagnosticInfo(groupId byte, timeout time.Duration) (*ClearDiagnosticInfoResult, error) {
	body, err := c.SendRequest(ClearDiagnosticInfo, EncodeClearDiagnosticInfo(groupId), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != groupId {
		return nil, &eurodiag.EchoMismatch{Field: "group_id"}
	}
	return &ClearDiagnosticInfoResult{GroupIdEcho: body[0]}, nil
}

type ReadDTCStatusResult struct{ Status byte }

func (c *Client) ReadDTCStatus(timeout time.Duration) (*ReadDTCStatusResult, error) {
	body, err := c.SendRequest(ReadDTCStatus, EncodeReadDTCStatus(), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &eurodiag.InvalidFrame{Reason: "empty read-dtc-status response"}
	}
	return &ReadDTCStatusResult{Status: body[0]}, nil
}

// DTCEntry is one (code-hi, code-lo, status) triple from ReadDTCByStatus.
type DTCEntry struct {
	CodeHigh, CodeLow, Status byte
}

// ReadDTCByStatusResult holds the triples returned by ReadDTCByStatus. As
// with ReadDTC, a body whose length isn't a multiple of 3 is treated as
// count-prefixed.
type ReadDTCByStatusResult struct {
	Count   *byte
	Entries []DTCEntry
}

func (c *Client) ReadDTCByStatus(mask byte, timeout time.Duration) (*ReadDTCByStatusResult, error) {
	body, err := c.SendRequest(ReadDTCByStatus, EncodeReadDTCByStatus(mask), timeout)
	if err != nil {
		return nil, err
	}
	res := &ReadDTCByStatusResult{}
	data := body
	if len(data)%3 != 0 {
		n := data[0]
		res.Count = &n
		data = data[1:]
	}
	for i := 0; i+3 <= len(data); i += 3 {
		res.Entries = append(res.Entries, DTCEntry{CodeHigh: data[i], CodeLow: data[i+1], Status: data[i+2]})
	}
	return res, nil
}

type ReadEcuIdentificationResult struct{ Data []byte }

func (c *Client) ReadEcuIdentification(option *byte, timeout time.Duration) (*ReadEcuIdentificationResult, error) {
	body, err := c.SendRequest(ReadEcuIdentification, EncodeReadEcuIdentification(option), timeout)
	if err != nil {
		return nil, err
	}
	return &ReadEcuIdentificationResult{Data: body}, nil
}

type SetDataRatesResult struct{ RateIdEcho byte }

func (c *Client) SetDataRates(rateId byte, timeout time.Duration) (*SetDataRatesResult, error) {
	body, err := c.SendRequest(SetDataRates, EncodeSetDataRates(rateId), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != rateId {
		return nil, &eurodiag.EchoMismatch{Field: "rate_id"}
	}
	return &SetDataRatesResult{RateIdEcho: body[0]}, nil
}

type SecurityAccessResult struct {
	AccessTypeEcho byte
	SeedOrAck      []byte
}

func (c *Client) SecurityAccess(accessType byte, data []byte, timeout time.Duration) (*SecurityAccessResult, error) {
	body, err := c.SendRequest(SecurityAccess, EncodeSecurityAccess(accessType, data), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != accessType {
		return nil, &eurodiag.EchoMismatch{Field: "access_type"}
	}
	return &SecurityAccessResult{AccessTypeEcho: body[0], SeedOrAck: body[1:]}, nil
}

type DynamicallyDefineLocalIdentifierResult struct{ SubFnEcho byte }

func (c *Client) DynamicallyDefineLocalIdentifier(subFn byte, definition []byte, timeout time.Duration) (*DynamicallyDefineLocalIdentifierResult, error) {
	body, err := c.SendRequest(DynamicallyDefineLocalId, EncodeDynamicallyDefineLocalIdentifier(subFn, definition), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != subFn {
		return nil, &eurodiag.EchoMismatch{Field: "sub_function"}
	}
	return &DynamicallyDefineLocalIdentifierResult{SubFnEcho: body[0]}, nil
}

// WriteDataByCommonIdentifierResult echoes the low byte of the CID, the
// same convention ReadDataByCommonIdentifier uses.
type WriteDataByCommonIdentifierResult struct{ CommonIdentifierLowEcho byte }

func (c *Client) WriteDataByCommonIdentifier(cid uint16, data []byte, timeout time.Duration) (*WriteDataByCommonIdentifierResult, error) {
	body, err := c.SendRequest(WriteDataByCommonIdentifier, EncodeWriteDataByCommonIdentifier(cid, data), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != byte(cid) {
		return nil, &eurodiag.EchoMismatch{Field: "common_identifier"}
	}
	return &WriteDataByCommonIdentifierResult{CommonIdentifierLowEcho: body[0]}, nil
}

type IOCtlByCommonIdentifierResult struct {
	CommonIdentifierLowEcho byte
	ControlParamEcho        byte
	StateEcho               []byte
}

func (c *Client) IOCtlByCommonIdentifier(cid uint16, controlParam byte, state []byte, timeout time.Duration) (*IOCtlByCommonIdentifierResult, error) {
	body, err := c.SendRequest(IOCtlByCommonIdentifier, EncodeIOCtlByCommonIdentifier(cid, controlParam, state), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != byte(cid) || body[1] != controlParam {
		return nil, &eurodiag.EchoMismatch{Field: "common_identifier"}
	}
	return &IOCtlByCommonIdentifierResult{CommonIdentifierLowEcho: body[0], ControlParamEcho: body[1], StateEcho: body[2:]}, nil
}

type IOCtlByLocalIdentifierResult struct {
	LocalIdentifierEcho byte
	ControlParamEcho    byte
	StateEcho           []byte
}

func (c *Client) IOCtlByLocalIdentifier(lid, controlParam byte, state []byte, timeout time.Duration) (*IOCtlByLocalIdentifierResult, error) {
	body, err := c.SendRequest(IOCtlByLocalIdentifier, EncodeIOCtlByLocalIdentifier(lid, controlParam, state), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != lid || body[1] != controlParam {
		return nil, &eurodiag.EchoMismatch{Field: "local_identifier"}
	}
	return &IOCtlByLocalIdentifierResult{LocalIdentifierEcho: body[0], ControlParamEcho: body[1], StateEcho: body[2:]}, nil
}

type StopRoutineByLocalIdentifierResult struct{ RoutineEcho uint16 }

func (c *Client) StopRoutineByLocalIdentifier(routine uint16, timeout time.Duration) (*StopRoutineByLocalIdentifierResult, error) {
	body, err := c.SendRequest(StopRoutineByLocalIdentifier, EncodeStopRoutineByLocalIdentifier(routine), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 {
		return nil, &eurodiag.InvalidFrame{Reason: "short stop-routine response"}
	}
	echo := uint16(body[0])<<8 | uint16(body[1])
	if echo != routine {
		return nil, &eurodiag.EchoMismatch{Field: "routine"}
	}
	return &StopRoutineByLocalIdentifierResult{RoutineEcho: echo}, nil
}

type RequestRoutineResultsByLIDResult struct {
	RoutineEcho uint16
	Results     []byte
}

func (c *Client) RequestRoutineResultsByLID(routine uint16, timeout time.Duration) (*RequestRoutineResultsByLIDResult, error) {
	body, err := c.SendRequest(RequestRoutineResultsByLID, EncodeRequestRoutineResultsByLID(routine), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 {
		return nil, &eurodiag.InvalidFrame{Reason: "short routine-results response"}
	}
	echo := uint16(body[0])<<8 | uint16(body[1])
	if echo != routine {
		return nil, &eurodiag.EchoMismatch{Field: "routine"}
	}
	return &RequestRoutineResultsByLIDResult{RoutineEcho: echo, Results: body[2:]}, nil
}

type RequestTransferResult struct {
	AddressEcho uint32
	SizeEcho    uint32
	MaxBlockLen *byte
}

func (c *Client) RequestDownload(addr, size uint32, comp, enc *byte, timeout time.Duration) (*RequestTransferResult, error) {
	return c.requestTransfer(RequestDownload, addr, size, comp, enc, timeout)
}

func (c *Client) RequestUpload(addr, size uint32, comp, enc *byte, timeout time.Duration) (*RequestTransferResult, error) {
	return c.requestTransfer(RequestUpload, addr, size, comp, enc, timeout)
}

func (c *Client) requestTransfer(sid ServiceId, addr, size uint32, comp, enc *byte, timeout time.Duration) (*RequestTransferResult, error) {
	body, err := c.SendRequest(sid, EncodeRequestDownload(addr, size, comp, enc), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 6 {
		return nil, &eurodiag.InvalidFrame{Reason: "short transfer-request response"}
	}
	echoAddr := uint32(body[0])<<16 | uint32(body[1])<<8 | uint32(body[2])
	echoSize := uint32(body[3])<<16 | uint32(body[4])<<8 | uint32(body[5])
	if echoAddr != addr {
		return nil, &eurodiag.EchoMismatch{Field: "address"}
	}
	if echoSize != size {
		return nil, &eurodiag.EchoMismatch{Field: "size"}
	}
	res := &RequestTransferResult{AddressEcho: echoAddr, SizeEcho: echoSize}
	if len(body) > 6 {
		b := body[6]
		res.MaxBlockLen = &b
	}
	return res, nil
}

type TransferDataResult struct {
	BlockSeqEcho byte
	Params       []byte
}

func (c *Client) TransferData(blockSeq byte, data []byte, timeout time.Duration) (*TransferDataResult, error) {
	body, err := c.SendRequest(TransferData, EncodeTransferData(blockSeq, data), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != blockSeq {
		return nil, &eurodiag.EchoMismatch{Field: "block_seq"}
	}
	return &TransferDataResult{BlockSeqEcho: body[0], Params: body[1:]}, nil
}

type RequestTransferExitResult struct{ Params []byte }

func (c *Client) RequestTransferExit(params []byte, timeout time.Duration) (*RequestTransferExitResult, error) {
	body, err := c.SendRequest(RequestTransferExit, EncodeRequestTransferExit(params), timeout)
	if err != nil {
		return nil, err
	}
	return &RequestTransferExitResult{Params: body}, nil
}

type RoutineByAddressResult struct {
	AddressEcho uint32
	Results     []byte
}

func (c *Client) StartRoutineByAddress(addr uint32, options []byte, timeout time.Duration) (*RoutineByAddressResult, error) {
	return c.routineByAddress(StartRoutineByAddress, addr, options, timeout)
}

func (c *Client) StopRoutineByAddress(addr uint32, options []byte, timeout time.Duration) (*RoutineByAddressResult, error) {
	return c.routineByAddress(StopRoutineByAddress, addr, options, timeout)
}

func (c *Client) RequestRoutineResultsByAddress(addr uint32, options []byte, timeout time.Duration) (*RoutineByAddressResult, error) {
	return c.routineByAddress(RequestRoutineResultsByAddress, addr, options, timeout)
}

func (c *Client) routineByAddress(sid ServiceId, addr uint32, options []byte, timeout time.Duration) (*RoutineByAddressResult, error) {
	body, err := c.SendRequest(sid, EncodeStartRoutineByAddress(addr, options), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 3 {
		return nil, &eurodiag.InvalidFrame{Reason: "short routine-by-address response"}
	}
	echoAddr := uint32(body[0])<<16 | uint32(body[1])<<8 | uint32(body[2])
	if echoAddr != addr {
		return nil, &eurodiag.EchoMismatch{Field: "address"}
	}
	return &RoutineByAddressResult{AddressEcho: echoAddr, Results: body[3:]}, nil
}

type WriteDataByLocalIdentifierResult struct{ LocalIdentifierEcho byte }

func (c *Client) WriteDataByLocalIdentifier(lid byte, data []byte, timeout time.Duration) (*WriteDataByLocalIdentifierResult, error) {
	body, err := c.SendRequest(WriteDataByLocalIdentifier, EncodeWriteDataByLocalIdentifier(lid, data), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != lid {
		return nil, &eurodiag.EchoMismatch{Field: "local_identifier"}
	}
	return &WriteDataByLocalIdentifierResult{LocalIdentifierEcho: body[0]}, nil
}

// EscCodeResult is opaque, pass-through manufacturer-specific data.
type EscCodeResult struct{ Data []byte }

func (c *Client) EscCode(opaque []byte, timeout time.Duration) (*EscCodeResult, error) {
	body, err := c.SendRequest(EscCode, EncodeEscCode(opaque), timeout)
	if err != nil {
		return nil, err
	}
	return &EscCodeResult{Data: body}, nil
}

type StartCommunicationResult struct{ KeyByte1, KeyByte2 byte }

func (c *Client) StartCommunication(keyBytes []byte, timeout time.Duration) (*StartCommunicationResult, error) {
	body, err := c.SendRequest(StartCommunication, EncodeStartCommunication(keyBytes), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 {
		return nil, &eurodiag.InvalidFrame{Reason: "short start-communication response"}
	}
	return &StartCommunicationResult{KeyByte1: body[0], KeyByte2: body[1]}, nil
}

func (c *Client) StopCommunication(timeout time.Duration) error {
	_, err := c.SendRequest(StopCommunication, EncodeStopCommunication(), timeout)
	return err
}

// SendDataResult is opaque, pass-through data.
type SendDataResult struct{ Data []byte }

func (c *Client) SendData(data []byte, timeout time.Duration) (*SendDataResult, error) {
	body, err := c.SendRequest(SendData, EncodeSendData(data), timeout)
	if err != nil {
		return nil, err
	}
	return &SendDataResult{Data: body}, nil
}
