package tp20

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag"
	"github.com/samsamfire/eurodiag/pkg/transport"
)

// Engine is the TP 2.0 channel: single-producer, single-consumer. All
// channel-mutating operations run on the calling goroutine but are
// serialised by cmdMu so that keep-alive traffic never races a send or
// receive for ownership of the CAN connection, mirroring the single TX
// mutex described for the protocol's output pipe.
type Engine struct {
	can transport.CanTransport
	cfg Config

	cmdMu sync.Mutex
	state *ChannelState

	keepaliveStop chan struct{}
	keepaliveWg   sync.WaitGroup

	logger *log.Entry
}

// NewEngine binds an engine to a CAN transport and configuration. The
// transport is not opened until Open is called.
func NewEngine(can transport.CanTransport, cfg Config) *Engine {
	return &Engine{can: can, cfg: cfg, logger: log.WithField("proto", "tp20")}
}

// Open opens the CAN transport, performs channel setup and parameter
// negotiation, and starts the keep-alive worker.
func (e *Engine) Open() error {
	if err := e.can.Open(); err != nil {
		return &eurodiag.TransportError{Cause: err}
	}
	state, err := setupChannel(e.can, e.cfg)
	if err != nil {
		return err
	}
	if err := negotiateParameters(e.can, state, e.cfg, e.cfg.SetupTimeout); err != nil {
		return err
	}
	e.state = state
	e.startKeepalive()
	return nil
}

// Close sends a disconnect frame, waits briefly for the echo, stops the
// keep-alive worker and transitions the channel to closed regardless of
// whether the echo arrived.
func (e *Engine) Close() error {
	e.stopKeepalive()

	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	if e.state == nil || !e.state.ChannelOpen {
		return e.can.Close()
	}
	frame := []byte{opDisconnect, 0, 0, 0, 0, 0, 0, 0}
	_ = e.can.SendCanFrame(e.state.LocalTxId, frame)
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		f, err := e.can.RecvCanFrame(time.Until(deadline))
		if err != nil {
			break
		}
		if f.Data != nil && f.ID == e.state.LocalRxId && len(f.Data) > 0 && f.Data[0] == opDisconnect {
			break
		}
	}
	e.state.ChannelOpen = false
	return e.can.Close()
}

// Send transmits one application payload, segmenting and pacing ACKs as
// needed.
func (e *Engine) Send(payload []byte) error {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	if e.state == nil || !e.state.ChannelOpen {
		return &eurodiag.Disconnected{}
	}
	return sendPayload(e.can, e.state, payload, e.cfg.AckTimeout)
}

// Receive waits for and reassembles one inbound application payload.
func (e *Engine) Receive(timeout time.Duration) ([]byte, error) {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	if e.state == nil || !e.state.ChannelOpen {
		return nil, &eurodiag.Disconnected{}
	}
	return receivePayload(e.can, e.state, timeout)
}

// State returns the current channel tuple for introspection.
func (e *Engine) State() ChannelState {
	if e.state == nil {
		return ChannelState{}
	}
	return *e.state
}

// startKeepalive launches a periodic timer that emits a single 0xA3 frame
// on the TX id. It never reads channel state beyond the TX id and never
// blocks the send path beyond the atomic frame write, so it only takes
// cmdMu for the duration of that one write.
func (e *Engine) startKeepalive() {
	e.keepaliveStop = make(chan struct{})
	e.keepaliveWg.Add(1)
	go func() {
		defer e.keepaliveWg.Done()
		ticker := time.NewTicker(e.cfg.KeepaliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-e.keepaliveStop:
				return
			case <-ticker.C:
				frame := []byte{opKeepAlive, 0, 0, 0, 0, 0, 0, 0}
				e.cmdMu.Lock()
				err := e.can.SendCanFrame(e.state.LocalTxId, frame)
				e.cmdMu.Unlock()
				if err != nil {
					e.logger.WithError(err).Debug("keepalive send failed")
				}
			}
		}
	}()
}

func (e *Engine) stopKeepalive() {
	if e.keepaliveStop == nil {
		return
	}
	close(e.keepaliveStop)
	e.keepaliveWg.Wait()
	e.keepaliveStop = nil
}
