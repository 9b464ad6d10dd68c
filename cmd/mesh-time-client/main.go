// mesh-time-client is a Bluetooth mesh Time Client bridge.
//
// It serves the host control link over TCP (advertised as _meshtime._tcp)
// or a serial port, and answers Time commands through a simulated mesh
// Time Server.
//
// Usage:
//
//	mesh-time-client [options]
//
// Options:
//
//	-config     YAML configuration file
//	-addr       TCP listen address (default: ":5541")
//	-serial     serial port for the host link
//	-baud       serial baud rate (default: 115200)
//	-name       device name (default: "Time Client")
//	-product    product ID (default: 0x3023)
//	-log        log level (default: info)
//	-no-mdns    disable DNS-SD
//
// Example:
//
//	mesh-time-client -addr :5541 -log debug
package main

import (
	"github.com/backkem/meshtime/examples/bridge"
	"github.com/backkem/meshtime/examples/common"
)

func main() {
	opts := common.ParseFlags()

	cfg, lf, err := common.LoadConfig(opts)
	if err != nil {
		common.Fatal("Failed to load configuration", err)
	}

	b, err := bridge.New(cfg, lf)
	if err != nil {
		common.Fatal("Failed to create bridge", err)
	}

	ctx, stop := common.SignalContext()
	defer stop()

	common.PrintBanner(cfg, b.Addr())
	if err := b.Run(ctx); err != nil {
		common.Fatal("Bridge error", err)
	}
}
