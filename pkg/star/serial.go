package star

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/kwp2000"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// BaudRates is the canonical list cycled during baud-rate identification.
var BaudRates = []int{10400, 9600, 19200, 20800, 38400, 57600, 115200, 125000}

// SerialTransport wraps a raw byte transport with STAR framing and owns
// the wait_frame timeout policy: the caller's timeout argument is
// overridden with p2max*25ms so that KWP2000 timing parameters apply
// uniformly, regardless of what an individual call site passes in.
type SerialTransport struct {
	link   transport.ByteTransport
	timing kwp2000.TimingParameters
	logger *log.Entry
}

// NewSerialTransport wraps link with STAR serial framing, deriving its
// effective wait timeout from timing.P2Max.
func NewSerialTransport(link transport.ByteTransport, timing kwp2000.TimingParameters) *SerialTransport {
	return &SerialTransport{link: link, timing: timing, logger: log.WithField("proto", "kwp2000-star-serial")}
}

func (s *SerialTransport) Open() error  { return s.link.Open() }
func (s *SerialTransport) Close() error { return s.link.Close() }

func (s *SerialTransport) Send(payload []byte) error {
	frame, err := BuildSerialFrame(payload)
	if err != nil {
		return err
	}
	return s.link.Send(frame)
}

// SetBaudrate changes the underlying link rate directly; callers
// typically use IdentifyBaudrate to find the right rate first.
func (s *SerialTransport) SetBaudrate(baud int) error { return s.link.SetBaudrate(baud) }

// WaitFrame ignores the caller's timeout and instead waits up to
// p2max*25ms, per the timing model this engine owns.
func (s *SerialTransport) WaitFrame(_ time.Duration) ([]byte, error) {
	effective := s.timing.P2MaxDuration()
	deadline := time.Now().Add(effective)
	var buf []byte
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		chunk, err := s.link.WaitFrame(remaining)
		if err != nil {
			return nil, &eurodiag.TransportError{Cause: err}
		}
		buf = append(buf, chunk...)
		payload, _, err := ParseSerialFrame(buf)
		if err == nil {
			return payload, nil
		}
		if chunk == nil {
			continue
		}
	}
	if len(buf) == 0 {
		return nil, nil
	}
	return nil, &eurodiag.Timeout{Op: "kwp2000-star serial wait_frame"}
}

// IdentifyBaudrate cycles BaudRates, issuing a TesterPresent
// (response-required) at each, and returns the first rate at which any
// response (positive or negative) arrives.
func (s *SerialTransport) IdentifyBaudrate(timeout time.Duration) (int, error) {
	for _, baud := range BaudRates {
		if err := s.SetBaudrate(baud); err != nil {
			return 0, err
		}
		req := kwp2000.EncodeTesterPresent(kwp2000.TesterPresentResponseRequired)
		body := append([]byte{byte(kwp2000.TesterPresent)}, req...)
		if err := s.Send(body); err != nil {
			s.logger.WithError(err).WithField("baud", baud).Debug("send failed, trying next rate")
			continue
		}
		resp, err := s.WaitFrame(timeout)
		if err != nil {
			continue
		}
		if resp != nil {
			return baud, nil
		}
	}
	return 0, &eurodiag.Timeout{Op: "baud rate identification"}
}
