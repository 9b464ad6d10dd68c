// mesh-time-host is an interactive host console for mesh-time-client.
//
// It connects to a bridge over TCP, or over a serial port, sends Time
// commands and prints the status events that come back. Without -addr or
// -serial it looks up the bridge named by -instance, or browses for
// _meshtime._tcp and connects to the first bridge found.
//
// Usage:
//
//	mesh-time-host [options]
//
// Options:
//
//	-addr       bridge address (default: discovered)
//	-serial     serial port
//	-baud       serial baud rate (default: 115200)
//	-target     destination element address (default: 0x0002)
//	-instance   bridge instance name (default: first found)
//
// Example:
//
//	mesh-time-host -addr 127.0.0.1:5541 -target 0x0010
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/backkem/meshtime/examples/common"
	"github.com/backkem/meshtime/examples/host"
	"github.com/backkem/meshtime/pkg/discovery"
	"github.com/backkem/meshtime/pkg/hci"
)

func main() {
	opts := common.ParseFlags()

	ctx, stop := common.SignalContext()
	defer stop()

	t, err := connect(ctx, opts)
	if err != nil {
		common.Fatal("Failed to connect", err)
	}

	h := hci.NewHost(t)
	defer h.Close()

	console, err := host.NewConsole(h, opts.Target)
	if err != nil {
		common.Fatal("Failed to start console", err)
	}
	log.SetOutput(console.Stdout())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	console.Run(ctx, cancel)
}

func connect(ctx context.Context, opts common.Options) (hci.Transport, error) {
	if opts.SerialPort != "" {
		return hci.OpenSerial(hci.SerialConfig{PortName: opts.SerialPort, BaudRate: opts.BaudRate})
	}

	addr := opts.Addr
	if addr == "" {
		var err error
		if addr, err = discover(ctx, opts.Instance); err != nil {
			return nil, err
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	t, err := hci.DialTCP(dialCtx, addr)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Connected to %s\n", addr)
	return t, nil
}

func discover(ctx context.Context, instance string) (string, error) {
	r, err := discovery.NewResolver(discovery.ResolverConfig{})
	if err != nil {
		return "", err
	}

	if instance != "" {
		fmt.Printf("Looking up %q...\n", instance)
		svc, err := r.Lookup(ctx, instance)
		if err != nil {
			return "", err
		}
		if svc.Addr() == "" {
			return "", fmt.Errorf("%q: %w", instance, discovery.ErrServiceNotFound)
		}
		return svc.Addr(), nil
	}

	fmt.Printf("Browsing for %s...\n", discovery.ServiceHostLink)
	results, err := r.Browse(ctx)
	if err != nil {
		return "", err
	}
	for svc := range results {
		if addr := svc.Addr(); addr != "" {
			fmt.Printf("Found %q (product 0x%04X) at %s\n", svc.TXT.Name, svc.TXT.ProductID, addr)
			return addr, nil
		}
	}
	return "", discovery.ErrServiceNotFound
}
