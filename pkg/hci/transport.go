package hci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Transport carries frames between the host and the node.
type Transport interface {
	// ReadFrame blocks until a frame arrives, ctx is done or the
	// transport is closed.
	ReadFrame(ctx context.Context) (*Frame, error)

	// WriteFrame writes one frame.
	WriteFrame(ctx context.Context, f *Frame) error

	// Close releases the transport and unblocks pending reads.
	Close() error
}

// aLongTimeAgo is a deadline in the past, used to unblock pending I/O.
var aLongTimeAgo = time.Unix(1, 0)

// ConnTransport carries frames over a stream connection such as TCP.
// Bytes preceding a frame marker are skipped.
type ConnTransport struct {
	conn net.Conn
	rd   readDeadline

	writeMu sync.Mutex
}

// NewConnTransport wraps conn.
func NewConnTransport(conn net.Conn) *ConnTransport {
	return &ConnTransport{conn: conn}
}

// DialTCP connects to a node listening on addr.
func DialTCP(ctx context.Context, addr string) (*ConnTransport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConnTransport(conn), nil
}

// ReadFrame implements Transport.
func (t *ConnTransport) ReadFrame(ctx context.Context) (*Frame, error) {
	if err := t.rd.arm(t.conn); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = t.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	f, err := readFrame(ioReadFullFunc(t.conn))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapConnError(err)
	}
	return f, nil
}

// WriteFrame implements Transport.
func (t *ConnTransport) WriteFrame(ctx context.Context, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", mapConnError(err))
	}
	return nil
}

// Close implements Transport.
func (t *ConnTransport) Close() error {
	t.rd.expire(t.conn)
	return t.conn.Close()
}

// RemoteAddr returns the peer address.
func (t *ConnTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// PacketTransport carries one frame per datagram over a packet connection.
type PacketTransport struct {
	conn net.Conn
	buf  []byte
	rd   readDeadline

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewPacketTransport wraps a packet-oriented conn.
func NewPacketTransport(conn net.Conn) *PacketTransport {
	return &PacketTransport{
		conn: conn,
		buf:  make([]byte, MaxFrameSize),
	}
}

// ReadFrame implements Transport. It must not be called concurrently.
func (t *PacketTransport) ReadFrame(ctx context.Context) (*Frame, error) {
	if err := t.rd.arm(t.conn); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = t.conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	n, err := t.conn.Read(t.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, mapConnError(err)
	}

	f, err := DecodeFrame(t.buf[:n])
	if err != nil {
		return nil, err
	}
	f.Payload = append([]byte(nil), f.Payload...)
	return f, nil
}

// WriteFrame implements Transport.
func (t *PacketTransport) WriteFrame(ctx context.Context, f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", mapConnError(err))
	}
	return nil
}

// Close implements Transport.
func (t *PacketTransport) Close() error {
	t.closeOnce.Do(func() {
		t.rd.expire(t.conn)
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// readDeadline clears the deadline left by a cancelled read so the next
// read blocks again, unless the transport has been closed.
type readDeadline struct {
	mu     sync.Mutex
	closed bool
}

func (d *readDeadline) arm(conn net.Conn) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return conn.SetReadDeadline(time.Time{})
}

func (d *readDeadline) expire(conn net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	_ = conn.SetReadDeadline(aLongTimeAgo)
}

// mapConnError turns the errors of a closed or timed-out connection into
// ErrClosed so the read loop can stop cleanly.
func mapConnError(err error) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return io.EOF
	case errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrDeadlineExceeded):
		return ErrClosed
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrClosed
	}
	return err
}
