package hci

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// stutterReader returns n=0 on every other call, the way a serial port
// reports a read timeout.
type stutterReader struct {
	data  []byte
	calls int
}

func (r *stutterReader) Read(p []byte) (int, error) {
	r.calls++
	if r.calls%2 == 1 || len(r.data) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestReadFullTimeouts(t *testing.T) {
	r := &stutterReader{data: []byte{0x19, 0x90, 0x16, 0x01, 0x00, 0x07}}

	f, err := readFrame(func(buf []byte) error {
		return readFull(context.Background(), r, buf)
	})
	if err != nil {
		t.Fatalf("readFrame() error: %v", err)
	}
	if Opcode(f.Code) != CommandTimeGet || !bytes.Equal(f.Payload, []byte{0x07}) {
		t.Errorf("frame = %s %x, want TimeGet 07", Opcode(f.Code), f.Payload)
	}
}

func TestReadFullCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := readFull(ctx, &stutterReader{}, make([]byte, 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("readFull() error = %v, want context.Canceled", err)
	}
}

func TestWriteFull(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFull(context.Background(), &buf, []byte{1, 2, 3}); err != nil {
		t.Fatalf("writeFull() error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("written = %x, want 010203", buf.Bytes())
	}
}

func TestOpenSerialConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config SerialConfig
		want   error
	}{
		{"empty port name", SerialConfig{}, ErrNoSerialPort},
		{"negative baud rate", SerialConfig{PortName: "/dev/ttyUSB0", BaudRate: -9600}, ErrInvalidBaudRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenSerial(tt.config); !errors.Is(err, tt.want) {
				t.Errorf("OpenSerial() error = %v, want %v", err, tt.want)
			}
		})
	}
}
