// Package socketcan implements transport.CanTransport over a Linux
// SocketCAN interface using github.com/brutella/can.
package socketcan

import (
	"errors"
	"time"

	sockcan "github.com/brutella/can"
	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag/pkg/transport"
)

// brutella/can exposes a subscribe/callback Bus, not the poll-based
// recv_can_frame contract the protocol engines are built against. Bus
// fixes that mismatch by running ConnectAndPublish under the hood and
// fanning every received frame into a buffered channel that RecvCanFrame
// drains.
type Bus struct {
	ifname string
	bus    *sockcan.Bus
	rx     chan transport.CanFrame
	logger *log.Entry
}

const rxQueueDepth = 256

// handlerFunc adapts a plain function to brutella/can's Handler interface,
// which requires a Handle(Frame) method.
type handlerFunc func(sockcan.Frame)

func (f handlerFunc) Handle(frame sockcan.Frame) { f(frame) }

// New builds a socketcan transport bound to the named Linux interface
// (e.g. "can0"). The interface is not opened until Open is called.
func New(ifname string) *Bus {
	return &Bus{
		ifname: ifname,
		rx:     make(chan transport.CanFrame, rxQueueDepth),
		logger: log.WithField("transport", "socketcan").WithField("if", ifname),
	}
}

func (b *Bus) Open() error {
	bus, err := sockcan.NewBusForInterfaceWithName(b.ifname)
	if err != nil {
		return err
	}
	b.bus = bus
	b.bus.Subscribe(handlerFunc(b.onFrame))
	go func() {
		if err := b.bus.ConnectAndPublish(); err != nil {
			b.logger.WithError(err).Warn("socketcan receive loop stopped")
		}
	}()
	return nil
}

func (b *Bus) onFrame(frame sockcan.Frame) {
	cf := transport.CanFrame{ID: frame.ID, Data: append([]byte(nil), frame.Data[:frame.Length]...)}
	select {
	case b.rx <- cf:
	default:
		b.logger.Warn("rx queue full, dropping frame")
	}
}

func (b *Bus) Close() error {
	if b.bus == nil {
		return nil
	}
	return b.bus.Disconnect()
}

func (b *Bus) SendCanFrame(id uint32, data []byte) error {
	if b.bus == nil {
		return errors.New("socketcan: not open")
	}
	if len(data) > 8 {
		return errors.New("socketcan: frame data exceeds 8 bytes")
	}
	var frame sockcan.Frame
	frame.ID = id
	frame.Length = uint8(len(data))
	copy(frame.Data[:], data)
	return b.bus.Publish(frame)
}

func (b *Bus) RecvCanFrame(timeout time.Duration) (transport.CanFrame, error) {
	select {
	case cf := <-b.rx:
		return cf, nil
	case <-time.After(timeout):
		return transport.CanFrame{}, nil
	}
}
