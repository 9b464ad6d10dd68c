package hci

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/logging"
	"go.bug.st/serial"
)

// DefaultBaudRate is the UART speed of the host link.
const DefaultBaudRate = 115200

// serialReadTimeout bounds each blocking read so ReadFrame can observe ctx.
const serialReadTimeout = 300 * time.Millisecond

// SerialConfig configures a SerialTransport.
type SerialConfig struct {
	// PortName is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	PortName string

	// BaudRate defaults to DefaultBaudRate.
	BaudRate int

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// SerialTransport carries frames over a UART.
type SerialTransport struct {
	portName string
	log      logging.LeveledLogger

	mu      sync.Mutex
	port    serial.Port
	writeMu sync.Mutex
}

// OpenSerial opens the serial port described by config.
func OpenSerial(config SerialConfig) (*SerialTransport, error) {
	if config.PortName == "" {
		return nil, ErrNoSerialPort
	}
	if config.BaudRate == 0 {
		config.BaudRate = DefaultBaudRate
	}
	if config.BaudRate < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBaudRate, config.BaudRate)
	}

	port, err := serial.Open(config.PortName, &serial.Mode{BaudRate: config.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", config.PortName, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}

	t := &SerialTransport{
		portName: config.PortName,
		port:     port,
	}
	if config.LoggerFactory != nil {
		t.log = config.LoggerFactory.NewLogger("hci-serial")
		t.log.Infof("opened %s at %d baud", config.PortName, config.BaudRate)
	}
	return t, nil
}

// ReadFrame implements Transport.
func (t *SerialTransport) ReadFrame(ctx context.Context) (*Frame, error) {
	port, err := t.currentPort()
	if err != nil {
		return nil, err
	}

	f, err := readFrame(func(buf []byte) error {
		return readFull(ctx, port, buf)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if t.log != nil {
		t.log.Tracef("read frame code=%#04x len=%d", f.Code, len(f.Payload))
	}
	return f, nil
}

// WriteFrame implements Transport.
func (t *SerialTransport) WriteFrame(ctx context.Context, f *Frame) error {
	port, err := t.currentPort()
	if err != nil {
		return err
	}

	data, err := f.Encode()
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := writeFull(ctx, port, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close implements Transport.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if t.log != nil {
		t.log.Infof("closed %s", t.portName)
	}
	return err
}

func (t *SerialTransport) currentPort() (serial.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil, ErrClosed
	}
	return t.port, nil
}

// readFull fills buf from r. A zero-byte read is a read timeout; the loop
// checks ctx and tries again.
func readFull(ctx context.Context, r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf[read:])
		if err != nil {
			return err
		}
		read += n
	}
	return nil
}

func writeFull(ctx context.Context, w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := w.Write(buf[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
