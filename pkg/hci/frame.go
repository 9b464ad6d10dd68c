package hci

import (
	"fmt"
	"io"

	"github.com/backkem/meshtime/pkg/cursor"
)

// Frame layout constants.
const (
	// FrameMarker starts every frame.
	FrameMarker byte = 0x19

	// FrameHeaderSize is marker(1) + code(2) + length(2).
	FrameHeaderSize = 5

	// MaxPayloadSize is the largest payload a frame may carry.
	MaxPayloadSize = 1024

	// MaxFrameSize is the largest encoded frame.
	MaxFrameSize = FrameHeaderSize + MaxPayloadSize
)

// Frame is one command or event on the host link. Code holds an Opcode for
// commands and an EventCode for events.
type Frame struct {
	Code    uint16
	Payload []byte
}

// Encode returns the wire form of the frame.
func (f *Frame) Encode() ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(f.Payload))
	}

	w := cursor.NewWriter(make([]byte, FrameHeaderSize+len(f.Payload)))
	w.PutUint8(FrameMarker)
	w.PutUint16(f.Code)
	w.PutUint16(uint16(len(f.Payload)))
	w.PutBytes(f.Payload)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeFrame decodes exactly one frame from data. The payload aliases data.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(data))
	}

	r := cursor.NewReader(data)
	if r.Uint8() != FrameMarker {
		return nil, fmt.Errorf("%w: %#02x", ErrInvalidMarker, data[0])
	}
	code := r.Uint16()
	length := int(r.Uint16())

	if length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	if length != r.Remaining() {
		return nil, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, length, r.Remaining())
	}

	return &Frame{Code: code, Payload: r.Rest()}, nil
}

type readFullFunc func(buf []byte) error

// readFrame reads one frame from a byte stream, skipping any bytes before
// the next FrameMarker.
func readFrame(readFull readFullFunc) (*Frame, error) {
	if err := resyncToMarker(readFull); err != nil {
		return nil, err
	}

	var hdr [FrameHeaderSize - 1]byte
	if err := readFull(hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	r := cursor.NewReader(hdr[:])
	code := r.Uint16()
	length := int(r.Uint16())
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if err := readFull(payload); err != nil {
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return &Frame{Code: code, Payload: payload}, nil
}

func resyncToMarker(readFull readFullFunc) error {
	var b [1]byte
	for {
		if err := readFull(b[:]); err != nil {
			return err
		}
		if b[0] == FrameMarker {
			return nil
		}
	}
}

func ioReadFullFunc(r io.Reader) readFullFunc {
	return func(buf []byte) error {
		_, err := io.ReadFull(r, buf)
		return err
	}
}
