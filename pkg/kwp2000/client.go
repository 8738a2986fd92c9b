package kwp2000

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// Client is the stateful KWP2000 façade: (transport, open). Named service
// methods compose an encoder, call SendRequest and validate any echoed
// field against what was sent.
type Client struct {
	transport transport.ByteTransport
	open      bool
	logger    *log.Entry
}

func NewClient(t transport.ByteTransport) *Client {
	return &Client{transport: t, logger: log.WithField("proto", "kwp2000")}
}

func (c *Client) Open() error {
	if err := c.transport.Open(); err != nil {
		return &eurodiag.TransportError{Cause: err}
	}
	c.open = true
	return nil
}

func (c *Client) Close() error {
	c.open = false
	return c.transport.Close()
}

// SendRequest sends one service request and waits for its final response,
// absorbing any number of 0x78 pending frames along the way. It returns
// the body slice following the positive service id, i.e. what
// ParseResponse would hand back as body.
func (c *Client) SendRequest(sid ServiceId, body []byte, timeout time.Duration) ([]byte, error) {
	req := make([]byte, 0, 1+len(body))
	req = append(req, byte(sid))
	req = append(req, body...)
	if err := c.transport.Send(req); err != nil {
		return nil, &eurodiag.TransportError{Cause: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "kwp2000 request"}
		}
		raw, err := c.transport.WaitFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		if raw == nil {
			continue
		}
		respBody, pending, err := ParseResponse(sid, raw)
		if err != nil {
			return nil, err
		}
		if pending {
			c.logger.Debug("pending (0x78), continuing to wait")
			continue
		}
		return respBody, nil
	}
}

// TesterPresent with response-required = 0x02 is fire-and-forget: it must
// not block on a response.
func (c *Client) TesterPresent(responseRequired byte) error {
	req := []byte{byte(TesterPresent), responseRequired}
	if err := c.transport.Send(req); err != nil {
		return &eurodiag.TransportError{Cause: err}
	}
	if responseRequired == TesterPresentResponseNone {
		return nil
	}
	return nil
}

// StartDiagnosticSessionResult is the positive response to
// StartDiagnosticSession.
type StartDiagnosticSessionResult struct {
	DiagnosticMode  byte
	SessionTypeEcho byte
	BaudIdEcho      *byte
}

func (c *Client) StartDiagnosticSession(mode byte, baudId *byte, timeout time.Duration) (*StartDiagnosticSessionResult, error) {
	body, err := c.SendRequest(StartDiagnosticSession, EncodeStartDiagnosticSession(mode, baudId), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &eurodiag.InvalidFrame{Reason: "empty start-session response"}
	}
	if body[0] != mode {
		return nil, &eurodiag.EchoMismatch{Field: "diagnostic_mode"}
	}
	res := &StartDiagnosticSessionResult{DiagnosticMode: body[0], SessionTypeEcho: body[0]}
	if len(body) > 1 {
		b := body[1]
		res.BaudIdEcho = &b
	}
	return res, nil
}

func (c *Client) StopDiagnosticSession(timeout time.Duration) error {
	_, err := c.SendRequest(StopDiagnosticSession, nil, timeout)
	return err
}

type ECUResetResult struct{ ResetTypeEcho byte }

func (c *Client) ECUReset(resetType byte, timeout time.Duration) (*ECUResetResult, error) {
	body, err := c.SendRequest(ECUReset, EncodeECUReset(resetType), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != resetType {
		return nil, &eurodiag.EchoMismatch{Field: "reset_type"}
	}
	return &ECUResetResult{ResetTypeEcho: body[0]}, nil
}

type ReadDataByLocalIdentifierResult struct {
	LocalIdentifierEcho byte
	Data                []byte
}

func (c *Client) ReadDataByLocalIdentifier(lid byte, timeout time.Duration) (*ReadDataByLocalIdentifierResult, error) {
	body, err := c.SendRequest(ReadDataByLocalIdentifier, EncodeReadDataByLocalIdentifier(lid), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != lid {
		return nil, &eurodiag.EchoMismatch{Field: "local_identifier"}
	}
	return &ReadDataByLocalIdentifierResult{LocalIdentifierEcho: body[0], Data: body[1:]}, nil
}

type ReadDataByCommonIdentifierResult struct {
	CommonIdentifierLowEcho byte
	Data                    []byte
}

func (c *Client) ReadDataByCommonIdentifier(cid uint16, timeout time.Duration) (*ReadDataByCommonIdentifierResult, error) {
	body, err := c.SendRequest(ReadDataByCommonIdentifier, EncodeReadDataByCommonIdentifier(cid), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || body[0] != byte(cid) {
		return nil, &eurodiag.EchoMismatch{Field: "common_identifier"}
	}
	return &ReadDataByCommonIdentifierResult{CommonIdentifierLowEcho: body[0], Data: body[1:]}, nil
}

// ReadMemoryByAddressResult is the echoing-address response variant
// (address echoed at the tail of the body).
type ReadMemoryByAddressResult struct {
	MemoryData  []byte
	AddressEcho uint32
}

func (c *Client) ReadMemoryByAddress(addr uint32, size byte, mode, max *byte, timeout time.Duration) (*ReadMemoryByAddressResult, error) {
	body, err := c.SendRequest(ReadMemoryByAddress, EncodeReadMemoryByAddress(addr, size, mode, max), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 3 {
		return nil, &eurodiag.InvalidFrame{Reason: "short read-memory response"}
	}
	tail := body[len(body)-3:]
	echoAddr := uint32(tail[0])<<16 | uint32(tail[1])<<8 | uint32(tail[2])
	if echoAddr != addr {
		return nil, &eurodiag.EchoMismatch{Field: "address"}
	}
	return &ReadMemoryByAddressResult{MemoryData: body[:len(body)-3], AddressEcho: echoAddr}, nil
}

// ReadMemoryByAddressTypedResult is the no-addr-echo response variant.
type ReadMemoryByAddressTypedResult struct {
	MemoryData []byte
}

func (c *Client) ReadMemoryByAddressTyped(addr uint32, memType, size byte, timeout time.Duration) (*ReadMemoryByAddressTypedResult, error) {
	body, err := c.SendRequest(ReadMemoryByAddress, EncodeReadMemoryByAddressTyped(addr, memType, size), timeout)
	if err != nil {
		return nil, err
	}
	return &ReadMemoryByAddressTypedResult{MemoryData: body}, nil
}

type WriteMemoryByAddressResult struct{ AddressEcho uint32 }

func (c *Client) WriteMemoryByAddress(addr uint32, data []byte, timeout time.Duration) (*WriteMemoryByAddressResult, error) {
	body, err := c.SendRequest(WriteMemoryByAddress, EncodeWriteMemoryByAddress(addr, data), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 3 {
		return nil, &eurodiag.InvalidFrame{Reason: "short write-memory response"}
	}
	echoAddr := uint32(body[0])<<16 | uint32(body[1])<<8 | uint32(body[2])
	if echoAddr != addr {
		return nil, &eurodiag.EchoMismatch{Field: "address"}
	}
	return &WriteMemoryByAddressResult{AddressEcho: echoAddr}, nil
}

type RoutineControlResult struct {
	ControlTypeEcho byte
	RoutineEcho     uint16
}

func (c *Client) RoutineControlByLocalIdentifier(ctrlType byte, routine uint16, timeout time.Duration) (*RoutineControlResult, error) {
	body, err := c.SendRequest(RoutineControlByLocalIdentifier, EncodeRoutineControlByLocalIdentifier(ctrlType, routine), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 3 {
		return nil, &eurodiag.InvalidFrame{Reason: "short routine-control response"}
	}
	echoRoutine := uint16(body[1])<<8 | uint16(body[2])
	if body[0] != ctrlType {
		return nil, &eurodiag.EchoMismatch{Field: "control_type"}
	}
	if echoRoutine != routine {
		return nil, &eurodiag.EchoMismatch{Field: "routine"}
	}
	return &RoutineControlResult{ControlTypeEcho: body[0], RoutineEcho: echoRoutine}, nil
}

type AccessTimingParameterResult struct {
	TpidEcho byte
	Timing   TimingParameters
}

func (c *Client) AccessTimingParameter(tpid byte, t TimingParameters, timeout time.Duration) (*AccessTimingParameterResult, error) {
	body, err := c.SendRequest(AccessTimingParameter, EncodeAccessTimingParameter(tpid, t), timeout)
	if err != nil {
		return nil, err
	}
	if len(body) < 6 || body[0] != tpid {
		return nil, &eurodiag.EchoMismatch{Field: "tpid"}
	}
	var raw [5]byte
	copy(raw[:], body[1:6])
	return &AccessTimingParameterResult{TpidEcho: body[0], Timing: DecodeTiming(raw)}, nil
}

// IdentifyBaudrate is a façade convenience that delegates to a transport
// implementing the STAR serial baud-cycling probe, so callers don't need
// to downcast to the concrete STAR transport type.
type BaudIdentifier interface {
	IdentifyBaudrate(timeout time.Duration) (int, error)
}

func (c *Client) IdentifyBaudrate(timeout time.Duration) (int, error) {
	bi, ok := c.transport.(BaudIdentifier)
	if !ok {
		return 0, &eurodiag.InvalidFrame{Reason: "transport does not support baud identification"}
	}
	return bi.IdentifyBaudrate(timeout)
}
