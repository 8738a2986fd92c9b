package ds2

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// DefaultBaudrate is DS2's fixed default: 9600, 8 data bits, even parity,
// two stop bits.
const DefaultBaudrate = 9600

// Client drives one DS2 ECU address over a half-duplex serial transport.
type Client struct {
	transport transport.ByteTransport
	addr      byte
	open      bool
	logger    *log.Entry
}

// NewClient binds a client to a byte transport and the ECU address it
// will address requests to.
func NewClient(t transport.ByteTransport, addr byte) *Client {
	return &Client{transport: t, addr: addr, logger: log.WithField("proto", "ds2")}
}

func (c *Client) Open() error {
	if err := c.transport.Open(); err != nil {
		return &eurodiag.TransportError{Cause: err}
	}
	if err := c.transport.SetBaudrate(DefaultBaudrate); err != nil {
		c.logger.WithError(err).Debug("set baudrate failed, continuing with transport default")
	}
	c.open = true
	return nil
}

func (c *Client) Close() error {
	c.open = false
	return c.transport.Close()
}

// Response is a parsed DS2 reply: the responding address, status octet
// and the payload following it.
type Response struct {
	Addr    byte
	Status  eurodiag.DS2StatusCode
	Payload []byte
}

// SendRequest performs one DS2 transaction: send, echo-discard, receive.
// It does not retry on a busy status; see SendRequestWithRetry.
func (c *Client) SendRequest(payload []byte, timeout time.Duration) (*Response, error) {
	req, err := Build(c.addr, payload)
	if err != nil {
		return nil, err
	}
	if err := c.transport.Send(req); err != nil {
		return nil, &eurodiag.TransportError{Cause: err}
	}

	deadline := time.Now().Add(timeout)
	echoed := 0
	for echoed < len(req) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "ds2 echo"}
		}
		chunk, err := c.transport.WaitFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		echoed += len(chunk)
	}

	var reply []byte
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &eurodiag.Timeout{Op: "ds2 reply"}
		}
		chunk, err := c.transport.WaitFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		reply = append(reply, chunk...)
		if len(reply) >= 2 {
			size := int(reply[1])
			if size >= 3 && len(reply) >= size {
				break
			}
		}
	}

	respAddr, body, err := Parse(reply)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &eurodiag.InvalidFrame{Reason: "empty response body"}
	}
	status := eurodiag.DS2StatusCode(body[0])
	resp := &Response{Addr: respAddr, Status: status, Payload: body[1:]}
	if status != eurodiag.DS2StatusOK {
		return resp, &eurodiag.DS2Status{Code: status}
	}
	return resp, nil
}

// SendRequestWithRetry retries a transaction automatically while the ECU
// reports busy (0xA1), up to maxRetries times (maxRetries+1 attempts in
// all), before surfacing the error. SendRequest itself never retries, keeping the strict one-shot
// transaction discipline the protocol otherwise requires.
func (c *Client) SendRequestWithRetry(payload []byte, timeout time.Duration, maxRetries int) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.SendRequest(payload, timeout)
		if err == nil {
			return resp, nil
		}
		var status *eurodiag.DS2Status
		if de, ok := err.(*eurodiag.DS2Status); ok {
			status = de
		}
		if status == nil || !status.Code.Recoverable() {
			return resp, err
		}
		lastErr = err
		c.logger.WithField("attempt", attempt).Debug("ds2 busy, retrying")
	}
	return nil, lastErr
}
