// Package serial implements transport.ByteTransport over a POSIX serial
// port using github.com/daedaluz/goserial, which exposes termios control
// directly instead of needing a hand-rolled ioctl wrapper.
package serial

import (
	"time"

	goserial "github.com/daedaluz/goserial"

	"github.com/samsamfire/eurodiag/pkg/transport"
)

// Port is a ByteTransport over a named serial device (e.g. "/dev/ttyUSB0").
// All protocols here run 8 data bits, even parity; stop-bit count varies
// by protocol (DS2 uses two, KWP2000-STAR serial uses one) and is set via
// StopBits before Open.
type Port struct {
	name     string
	baud     int
	StopBits int // 1 or 2; defaults to 1 if unset

	port *goserial.Port
}

// New returns a serial transport for device name at the given baud rate,
// with one stop bit. Set StopBits on the returned Port before Open to
// negotiate two stop bits (DS2's framing).
func New(name string, baud int) *Port {
	return &Port{name: name, baud: baud, StopBits: 1}
}

func (p *Port) Open() error {
	opts := goserial.NewOptions().SetReadTimeout(50 * time.Millisecond)
	port, err := goserial.Open(p.name, opts)
	if err != nil {
		return err
	}
	p.port = port
	if err := p.configure(p.baud); err != nil {
		port.Close()
		return err
	}
	return nil
}

// configure applies 8-E-{1,2} framing at the given baud rate via Termios2,
// which supports arbitrary custom baud values where the fixed B-constants
// do not cover the protocol's rate (e.g. KWP2000-STAR's 10400 baud).
func (p *Port) configure(baud int) error {
	attrs, err := p.port.GetAttr2()
	if err != nil {
		return err
	}
	attrs.MakeRaw()
	attrs.Cflag &^= goserial.CSIZE | goserial.CSTOPB | goserial.PARODD
	attrs.Cflag |= goserial.CS8 | goserial.PARENB | goserial.CREAD | goserial.CLOCAL
	if p.StopBits == 2 {
		attrs.Cflag |= goserial.CSTOPB
	}
	attrs.SetCustomSpeed(uint32(baud))
	return p.port.SetAttr2(goserial.TCSANOW, attrs)
}

func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

func (p *Port) Send(buffer []byte) error {
	_, err := p.port.Write(buffer)
	return err
}

// timeouter is satisfied by the timeout-class errors the underlying poll
// wait returns; duck-typed so we don't depend on an unexported error type.
type timeouter interface{ Timeout() bool }

func (p *Port) WaitFrame(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, 1024)
	n, err := p.port.ReadTimeout(buf, timeout)
	if err != nil {
		if te, ok := err.(timeouter); ok && te.Timeout() {
			return nil, nil
		}
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return buf[:n], nil
}

func (p *Port) SetBaudrate(baud int) error {
	p.baud = baud
	if p.port == nil {
		return nil
	}
	return p.configure(baud)
}
