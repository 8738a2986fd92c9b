// ds2probe reads a block of ECU memory over DS2 on a serial link and
// prints the result, exercising the link-through-service stack end to
// end for the BMW byte-stream protocol.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/samsamfire/eurodiag/pkg/ds2"
	"github.com/samsamfire/eurodiag/pkg/transport/serial"
)

func main() {
	log.SetLevel(log.DebugLevel)

	device := flag.String("p", "/dev/ttyUSB0", "serial device")
	addr := flag.Int("a", 0x12, "ECU address")
	memType := flag.Int("m", 1, "memory type")
	memAddr := flag.Int("r", 0x0077B0, "memory address")
	size := flag.Int("n", 1, "bytes to read")
	timeoutMs := flag.Int("t", 1000, "timeout in milliseconds")
	flag.Parse()

	link := serial.New(*device, ds2.DefaultBaudrate)
	link.StopBits = 2
	client := ds2.NewClient(link, byte(*addr))

	if err := client.Open(); err != nil {
		fmt.Printf("could not open %v : %v\n", *device, err)
		os.Exit(1)
	}
	defer client.Close()

	timeout := time.Duration(*timeoutMs) * time.Millisecond
	result, err := client.ReadMemory(byte(*memType), uint32(*memAddr), byte(*size), timeout)
	if err != nil {
		fmt.Printf("read memory failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("memory at 0x%06X: %s\n", result.AddressEcho, hex.EncodeToString(result.MemoryData))
}
