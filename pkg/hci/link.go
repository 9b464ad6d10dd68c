package hci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/pion/logging"
)

// DefaultWriteTimeout bounds each event write.
const DefaultWriteTimeout = 2 * time.Second

// LinkConfig configures a Link.
type LinkConfig struct {
	// Router receives every inbound command.
	// Required.
	Router *Router

	// WriteTimeout bounds each event write (default: DefaultWriteTimeout).
	WriteTimeout time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Link is the node side of the host control link. It feeds commands from
// attached host transports into a Router and writes events back to them.
type Link struct {
	router       *Router
	writeTimeout time.Duration
	log          logging.LeveledLogger

	// dispatchMu serializes command handling across transports.
	dispatchMu sync.Mutex

	mu     sync.Mutex
	hosts  map[Transport]struct{}
	closed bool
}

// NewLink creates a link with the given configuration.
func NewLink(config LinkConfig) (*Link, error) {
	if config.Router == nil {
		return nil, ErrNoHandler
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}

	l := &Link{
		router:       config.Router,
		writeTimeout: config.WriteTimeout,
		hosts:        make(map[Transport]struct{}),
	}
	if config.LoggerFactory != nil {
		l.log = config.LoggerFactory.NewLogger("hci")
	}
	return l, nil
}

// Serve attaches t and processes its commands until t fails or ctx ends.
// A clean disconnect returns nil. Malformed frames are logged and skipped.
func (l *Link) Serve(ctx context.Context, t Transport) error {
	if err := l.attach(t); err != nil {
		return err
	}
	defer l.detach(t)

	for {
		f, err := t.ReadFrame(ctx)
		if err != nil {
			switch {
			case isFrameError(err):
				if l.log != nil {
					l.log.Warnf("dropping frame: %v", err)
				}
				continue
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, io.EOF), errors.Is(err, ErrClosed):
				return nil
			default:
				return err
			}
		}

		op := Opcode(f.Code)
		if l.log != nil {
			l.log.Tracef("command %s len=%d", op, len(f.Payload))
		}

		l.dispatchMu.Lock()
		l.router.Route(op, f.Payload)
		l.dispatchMu.Unlock()
	}
}

// SendEvent writes an event to every attached host. The payload is
// prefixed with the encoded event header.
func (l *Link) SendEvent(code EventCode, hdr mesh.EventHeader, payload []byte) error {
	if len(payload)+mesh.EventHeaderSize > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload)+mesh.EventHeaderSize)
	}

	data := make([]byte, 0, mesh.EventHeaderSize+len(payload))
	data = hdr.AppendTo(data)
	data = append(data, payload...)
	f := &Frame{Code: uint16(code), Payload: data}

	hosts := l.snapshot()
	if len(hosts) == 0 {
		return ErrNoHost
	}

	var firstErr error
	for _, t := range hosts {
		ctx, cancel := context.WithTimeout(context.Background(), l.writeTimeout)
		err := t.WriteFrame(ctx, f)
		cancel()
		if err != nil {
			if l.log != nil {
				l.log.Warnf("event %s write failed: %v", code, err)
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if l.log != nil {
		l.log.Tracef("event %s len=%d hosts=%d", code, len(data), len(hosts))
	}
	return firstErr
}

// Hosts returns the number of attached host transports.
func (l *Link) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hosts)
}

// Close detaches and closes every host transport. Pending Serve calls return.
func (l *Link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	hosts := make([]Transport, 0, len(l.hosts))
	for t := range l.hosts {
		hosts = append(hosts, t)
	}
	l.mu.Unlock()

	for _, t := range hosts {
		t.Close()
	}
	return nil
}

func (l *Link) attach(t Transport) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.hosts[t] = struct{}{}
	if l.log != nil {
		l.log.Debugf("host attached (%d total)", len(l.hosts))
	}
	return nil
}

func (l *Link) detach(t Transport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, t)
	if l.log != nil {
		l.log.Debugf("host detached (%d total)", len(l.hosts))
	}
}

func (l *Link) snapshot() []Transport {
	l.mu.Lock()
	defer l.mu.Unlock()
	hosts := make([]Transport, 0, len(l.hosts))
	for t := range l.hosts {
		hosts = append(hosts, t)
	}
	return hosts
}
