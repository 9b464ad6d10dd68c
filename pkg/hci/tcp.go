package hci

import (
	"context"
	"net"
	"sync"

	"github.com/pion/logging"
)

// DefaultTCPPort is the default port of the host link listener.
const DefaultTCPPort = 5541

// TransportHandler serves one host transport until it fails or ctx ends.
// Link.Serve satisfies it.
type TransportHandler func(ctx context.Context, t Transport) error

// TCPServerConfig configures a TCPServer.
type TCPServerConfig struct {
	// Listener is an optional pre-existing Listener to use.
	// If nil, a new listener will be created using ListenAddr.
	Listener net.Listener

	// ListenAddr is the address to listen on (e.g., ":5541").
	// Ignored if Listener is provided.
	ListenAddr string

	// Handler serves each accepted connection.
	// Required.
	Handler TransportHandler

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// TCPServer accepts host connections over TCP. One host is served at a
// time; further connections are closed until the active host leaves.
type TCPServer struct {
	listener net.Listener
	handler  TransportHandler
	log      logging.LeveledLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connMu sync.Mutex
	active net.Conn

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewTCPServer creates a TCP server with the given configuration.
func NewTCPServer(config TCPServerConfig) (*TCPServer, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}

	s := &TCPServer{
		listener: config.Listener,
		handler:  config.Handler,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("hci-tcp")
	}

	if s.listener == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = ":0" // Use ephemeral port
		}

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		s.listener = listener
	}

	return s, nil
}

// Start begins accepting connections.
func (s *TCPServer) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infof("host link listening on %s", s.listener.Addr())
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and the active connection and waits for the
// handler to return.
func (s *TCPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	if s.log != nil {
		s.log.Info("stopping host link listener")
	}

	s.cancel()
	s.listener.Close()

	s.connMu.Lock()
	if s.active != nil {
		s.active.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listening address.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Port returns the listening TCP port, or 0 for non-TCP listeners.
func (s *TCPServer) Port() int {
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

func (s *TCPServer) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				if s.log != nil {
					s.log.Warnf("accept failed: %v", err)
				}
				continue
			}
		}

		if !s.claim(conn) {
			if s.log != nil {
				s.log.Warnf("rejecting %s: %v", conn.RemoteAddr(), ErrHostBusy)
			}
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *TCPServer) claim(conn net.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.active != nil {
		return false
	}
	s.active = conn
	return true
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer s.wg.Done()

	if s.log != nil {
		s.log.Infof("host connected from %s", conn.RemoteAddr())
	}

	t := NewConnTransport(conn)
	err := s.handler(s.ctx, t)
	t.Close()

	s.connMu.Lock()
	s.active = nil
	s.connMu.Unlock()

	if s.log != nil {
		if err != nil && s.ctx.Err() == nil {
			s.log.Warnf("host %s disconnected: %v", conn.RemoteAddr(), err)
		} else {
			s.log.Infof("host %s disconnected", conn.RemoteAddr())
		}
	}
}
