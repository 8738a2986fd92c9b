// tp20probe opens a TP 2.0 channel over a SocketCAN interface and issues
// a TesterPresent/StartDiagnosticSession pair, demonstrating the full
// link-through-façade stack end to end.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag/pkg/kwp2000"
	"github.com/samsamfire/eurodiag/pkg/transport/socketcan"
	"github.com/samsamfire/eurodiag/pkg/tp20"
)

var defaultInterface = "can0"
var defaultDest = 0x01

func main() {
	log.SetLevel(log.DebugLevel)

	canInterface := flag.String("i", defaultInterface, "socketcan interface e.g. can0, vcan0")
	dest := flag.Int("d", defaultDest, "ECU logical address")
	timeoutMs := flag.Int("t", 1000, "request timeout in milliseconds")
	flag.Parse()

	bus := socketcan.New(*canInterface)
	cfg := tp20.DefaultConfig(uint32(*dest))
	engine := tp20.NewEngine(bus, cfg)

	if err := engine.Open(); err != nil {
		fmt.Printf("could not open tp20 channel on %v : %v\n", *canInterface, err)
		os.Exit(1)
	}
	defer engine.Close()

	state := engine.State()
	log.WithField("tx_id", fmt.Sprintf("0x%03X", state.LocalTxId)).
		WithField("rx_id", fmt.Sprintf("0x%03X", state.LocalRxId)).
		WithField("block_size", state.BlockSize).
		Info("channel open")

	client := kwp2000.NewClient(&engineTransport{engine: engine, timeout: time.Duration(*timeoutMs) * time.Millisecond})

	if err := client.TesterPresent(kwp2000.TesterPresentResponseNone); err != nil {
		log.WithError(err).Warn("tester present failed")
	}

	res, err := client.StartDiagnosticSession(0x89, nil, time.Duration(*timeoutMs)*time.Millisecond)
	if err != nil {
		fmt.Printf("start diagnostic session failed: %v\n", err)
		os.Exit(1)
	}
	log.WithField("mode", fmt.Sprintf("0x%02X", res.DiagnosticMode)).Info("diagnostic session started")
}

// engineTransport adapts a tp20.Engine's application-payload Send/Receive
// onto the kwp2000.Client's byte-transport contract.
type engineTransport struct {
	engine  *tp20.Engine
	timeout time.Duration
}

func (e *engineTransport) Open() error  { return nil }
func (e *engineTransport) Close() error { return nil }

func (e *engineTransport) Send(buffer []byte) error {
	return e.engine.Send(buffer)
}

func (e *engineTransport) WaitFrame(timeout time.Duration) ([]byte, error) {
	return e.engine.Receive(timeout)
}

func (e *engineTransport) SetBaudrate(int) error { return nil }
