// Package virtualcan implements an in-memory transport.CanTransport pair
// for tests, adapted from the teacher's TCP-broker virtual bus: instead of
// a network broker, peers are wired together directly through buffered
// Go channels.
package virtualcan

import (
	"errors"
	"time"

	"github.com/samsamfire/eurodiag/pkg/transport"
)

const queueDepth = 256

// Bus is one endpoint of a two-party virtual CAN bus. Every frame sent on
// one endpoint is received by the other; an endpoint never receives its
// own traffic.
type Bus struct {
	out     chan transport.CanFrame
	in      chan transport.CanFrame
	open    bool
}

// NewPair returns two endpoints wired to each other, standing in for the
// tester and the ECU on a shared CAN segment.
func NewPair() (a, b *Bus) {
	ab := make(chan transport.CanFrame, queueDepth)
	ba := make(chan transport.CanFrame, queueDepth)
	a = &Bus{out: ab, in: ba}
	b = &Bus{out: ba, in: ab}
	return a, b
}

func (b *Bus) Open() error {
	b.open = true
	return nil
}

func (b *Bus) Close() error {
	b.open = false
	return nil
}

func (b *Bus) SendCanFrame(id uint32, data []byte) error {
	if !b.open {
		return errors.New("virtualcan: not open")
	}
	if len(data) > 8 {
		return errors.New("virtualcan: frame data exceeds 8 bytes")
	}
	cf := transport.CanFrame{ID: id, Data: append([]byte(nil), data...)}
	select {
	case b.out <- cf:
		return nil
	default:
		return errors.New("virtualcan: peer queue full")
	}
}

func (b *Bus) RecvCanFrame(timeout time.Duration) (transport.CanFrame, error) {
	if !b.open {
		return transport.CanFrame{}, errors.New("virtualcan: not open")
	}
	select {
	case cf := <-b.in:
		return cf, nil
	case <-time.After(timeout):
		return transport.CanFrame{}, nil
	}
}
