package hci

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncode(t *testing.T) {
	f := &Frame{Code: uint16(CommandTimeSet), Payload: []byte{0xAA, 0xBB}}
	want := []byte{0x19, 0x91, 0x16, 0x02, 0x00, 0xAA, 0xBB}

	got, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode() = %x, want %x", got, want)
	}

	decoded, err := DecodeFrame(got)
	if err != nil {
		t.Fatalf("DecodeFrame() error: %v", err)
	}
	if decoded.Code != f.Code || !bytes.Equal(decoded.Payload, f.Payload) {
		t.Errorf("DecodeFrame() = %+v, want %+v", decoded, f)
	}
}

func TestFrameEncodeTooLarge(t *testing.T) {
	f := &Frame{Code: 1, Payload: make([]byte, MaxPayloadSize+1)}
	if _, err := f.Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("Encode() error = %v, want ErrFrameTooLarge", err)
	}

	f.Payload = make([]byte, MaxPayloadSize)
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode() at max error: %v", err)
	}
	if len(data) != MaxFrameSize {
		t.Errorf("len = %d, want %d", len(data), MaxFrameSize)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"Empty", nil, ErrShortFrame},
		{"Header only partial", []byte{0x19, 0x90, 0x16}, ErrShortFrame},
		{"Bad marker", []byte{0x18, 0x90, 0x16, 0x00, 0x00}, ErrInvalidMarker},
		{"Length too short", []byte{0x19, 0x90, 0x16, 0x02, 0x00, 0x01}, ErrLengthMismatch},
		{"Length too long", []byte{0x19, 0x90, 0x16, 0x00, 0x00, 0x01}, ErrLengthMismatch},
		{"Oversized", []byte{0x19, 0x90, 0x16, 0x01, 0x04}, ErrFrameTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeFrame(tc.data); !errors.Is(err, tc.wantErr) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReadFrameResync(t *testing.T) {
	stream := []byte{
		0x00, 0xFF, 0x42, // line noise
		0x19, 0x90, 0x16, 0x00, 0x00, // TimeGet, empty
		0x19, 0x97, 0x16, 0x01, 0x00, 0x02, // TimeRoleSet, one byte
	}
	readFull := ioReadFullFunc(bytes.NewReader(stream))

	f, err := readFrame(readFull)
	if err != nil {
		t.Fatalf("readFrame() error: %v", err)
	}
	if Opcode(f.Code) != CommandTimeGet || len(f.Payload) != 0 {
		t.Errorf("first frame = %s %x, want TimeGet with no payload", Opcode(f.Code), f.Payload)
	}

	f, err = readFrame(readFull)
	if err != nil {
		t.Fatalf("readFrame() error: %v", err)
	}
	if Opcode(f.Code) != CommandTimeRoleSet || !bytes.Equal(f.Payload, []byte{0x02}) {
		t.Errorf("second frame = %s %x, want TimeRoleSet 02", Opcode(f.Code), f.Payload)
	}

	if _, err := readFrame(readFull); !errors.Is(err, io.EOF) {
		t.Errorf("readFrame() at end error = %v, want EOF", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	stream := []byte{0x19, 0x90, 0x16, 0xFF, 0xFF}
	if _, err := readFrame(ioReadFullFunc(bytes.NewReader(stream))); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("readFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestOpcodeStrings(t *testing.T) {
	if CommandTimeZoneSet.String() != "TimeZoneSet" {
		t.Errorf("String() = %q", CommandTimeZoneSet.String())
	}
	if Opcode(0x1234).String() != "Opcode(0x1234)" {
		t.Errorf("String() = %q", Opcode(0x1234).String())
	}
	if EventTimeRoleStatus.String() != "TimeRoleStatus" {
		t.Errorf("String() = %q", EventTimeRoleStatus.String())
	}
}
