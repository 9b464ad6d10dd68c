// Package integration provides test infrastructure for end-to-end tests of
// the host link, the Time client and the simulated mesh.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/meshsim"
	"github.com/backkem/meshtime/pkg/timeclient"
	"github.com/backkem/meshtime/pkg/timemodel"
	"github.com/pion/logging"
)

// TestPair is a host and a bridge node connected through an in-memory
// host link.
//
// Example usage:
//
//	pair := NewTestPair(t, DefaultTestPairConfig())
//	defer pair.Close()
//	pair.Send(hci.CommandTimeRoleGet, nil)
//	ev := pair.Expect(hci.EventTimeRoleStatus)
type TestPair struct {
	// Host is the host side of the link.
	Host *hci.Host

	// Server is the simulated remote Time Server.
	Server *meshsim.Server

	// Stack is the simulated local mesh stack.
	Stack *meshsim.Stack

	// Client is the Time client under test.
	Client *timeclient.Client

	// Link is the node side of the host link.
	Link *hci.Link

	// Clock drives the Time Server.
	Clock *ManualClock

	pipe   *hci.Pipe
	dst    uint16
	t      *testing.T
	ctx    context.Context
	cancel context.CancelFunc
	served chan error
}

// TestPairConfig configures the test pair creation.
type TestPairConfig struct {
	// Server is the initial Time Server state. Now is replaced by the
	// pair's clock.
	Server meshsim.ServerConfig

	// Provisioned registers the client as provisioned.
	Provisioned bool

	// Destination is the element address commands are sent to.
	Destination uint16

	// LoggerFactory for logging. If nil, uses DefaultLoggerFactory.
	LoggerFactory logging.LoggerFactory
}

// DefaultTestPairConfig returns a provisioned pair whose server is a Time
// Authority with a 37 s TAI-UTC delta in UTC.
func DefaultTestPairConfig() TestPairConfig {
	return TestPairConfig{
		Server: meshsim.ServerConfig{
			Role:        timemodel.RoleAuthority,
			Authority:   true,
			TAIUTCDelta: timemodel.RawUTCDelta(37),
			ZoneOffset:  timemodel.ZoneOffsetBias,
		},
		Provisioned: true,
		Destination: 0x0002,
	}
}

// ManualClock is a clock advanced by tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewTestPair builds and connects a pair. It fails the test on error.
func NewTestPair(t *testing.T, config TestPairConfig) *TestPair {
	t.Helper()

	lf := config.LoggerFactory
	if lf == nil {
		lf = logging.NewDefaultLoggerFactory()
	}

	clock := &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	serverConfig := config.Server
	serverConfig.Now = clock.Now
	serverConfig.LoggerFactory = lf

	server, err := meshsim.NewServer(serverConfig)
	if err != nil {
		t.Fatalf("create server: %v", err)
	}
	stack, err := meshsim.NewStack(meshsim.StackConfig{Server: server, LoggerFactory: lf})
	if err != nil {
		t.Fatalf("create stack: %v", err)
	}

	router := hci.NewRouter(lf)
	link, err := hci.NewLink(hci.LinkConfig{Router: router, LoggerFactory: lf})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}
	client, err := timeclient.New(timeclient.Config{MeshClient: stack, Sender: link, LoggerFactory: lf})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	router.Add(client)
	if err := client.Register(stack, config.Provisioned); err != nil {
		t.Fatalf("register client: %v", err)
	}

	if config.Destination == 0 {
		config.Destination = 0x0002
	}

	pipe := hci.NewPipe()
	ctx, cancel := context.WithCancel(context.Background())

	p := &TestPair{
		Host:   hci.NewHost(pipe.Host()),
		Server: server,
		Stack:  stack,
		Client: client,
		Link:   link,
		Clock:  clock,
		pipe:   pipe,
		dst:    config.Destination,
		t:      t,
		ctx:    ctx,
		cancel: cancel,
		served: make(chan error, 1),
	}
	go func() { p.served <- link.Serve(ctx, pipe.Device()) }()

	deadline := time.Now().Add(2 * time.Second)
	for link.Hosts() == 0 {
		if time.Now().After(deadline) {
			p.Close()
			t.Fatal("link never attached the device transport")
		}
		time.Sleep(time.Millisecond)
	}
	return p
}

// Send sends a reliable command to the configured destination.
func (p *TestPair) Send(op hci.Opcode, payload []byte) {
	p.t.Helper()
	p.SendTo(p.dst, op, payload)
}

// SendTo sends a command to dst.
func (p *TestPair) SendTo(dst uint16, op hci.Opcode, payload []byte) {
	p.t.Helper()

	ctx, cancel := context.WithTimeout(p.ctx, time.Second)
	defer cancel()
	req := &mesh.Request{
		Destination:  dst,
		Reliable:     true,
		TTL:          mesh.DefaultTTL,
		ReplyTimeout: 5,
	}
	if err := p.Host.SendCommand(ctx, op, req, payload); err != nil {
		p.t.Fatalf("send %s: %v", op, err)
	}
}

// Expect reads the next event and checks its code.
func (p *TestPair) Expect(code hci.EventCode) *hci.Event {
	p.t.Helper()

	ctx, cancel := context.WithTimeout(p.ctx, 2*time.Second)
	defer cancel()
	ev, err := p.Host.ReadEvent(ctx)
	if err != nil {
		p.t.Fatalf("waiting for %s: %v", code, err)
	}
	if ev.Code != code {
		p.t.Fatalf("event = %s, want %s", ev.Code, code)
	}
	return ev
}

// ExpectNone checks that no event arrives within d.
func (p *TestPair) ExpectNone(d time.Duration) {
	p.t.Helper()

	ctx, cancel := context.WithTimeout(p.ctx, d)
	defer cancel()
	if ev, err := p.Host.ReadEvent(ctx); err == nil {
		p.t.Fatalf("unexpected event %s % x", ev.Code, ev.Payload)
	}
}

// Close stops the link and releases the pipe.
func (p *TestPair) Close() {
	p.cancel()
	p.pipe.Close()
	select {
	case <-p.served:
	case <-time.After(2 * time.Second):
		p.t.Error("link did not stop")
	}
}
