package hci

import (
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe is an in-memory host link made of two packet transports joined by
// a pion test.Bridge. A background goroutine delivers queued packets, so
// each WriteFrame arrives as exactly one ReadFrame on the other end.
type Pipe struct {
	bridge *test.Bridge
	host   *PacketTransport
	device *PacketTransport

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// pipeTickInterval is how often queued packets are delivered.
const pipeTickInterval = time.Millisecond

// NewPipe creates a connected pipe with delivery running.
func NewPipe() *Pipe {
	br := test.NewBridge()
	p := &Pipe{
		bridge: br,
		host:   NewPacketTransport(br.GetConn0()),
		device: NewPacketTransport(br.GetConn1()),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.deliver()

	return p
}

func (p *Pipe) deliver() {
	defer p.wg.Done()
	ticker := time.NewTicker(pipeTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.bridge.Tick()
		}
	}
}

// Host returns the host end of the pipe.
func (p *Pipe) Host() *PacketTransport {
	return p.host
}

// Device returns the node end of the pipe.
func (p *Pipe) Device() *PacketTransport {
	return p.device
}

// Close closes both ends and stops delivery.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err0 := p.host.Close()
	err1 := p.device.Close()

	close(p.stopCh)
	p.wg.Wait()

	if err0 != nil {
		return err0
	}
	return err1
}
