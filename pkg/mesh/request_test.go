package mesh

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/backkem/meshtime/pkg/cursor"
)

func header(dst uint16, reliable, segmented, ttl byte) []byte {
	return []byte{
		byte(dst), byte(dst >> 8), // dst
		0x01, 0x00, // app key index
		0x00,      // element index
		reliable,  // reliable
		segmented, // segmented
		ttl,       // ttl
		0x02,      // retransmit count
		0x04,      // retransmit interval
		0x05,      // reply timeout
	}
}

func TestParseRequest(t *testing.T) {
	data := append(header(0x0003, 1, 0, 0x3F), 0xAA, 0xBB)

	req, rest, err := ParseRequest(0x1691, CompanyIDBluetoothSIG, ModelIDTimeClient, data)
	if err != nil {
		t.Fatalf("ParseRequest() error: %v", err)
	}

	want := Request{
		Opcode:             0x1691,
		CompanyID:          CompanyIDBluetoothSIG,
		ModelID:            ModelIDTimeClient,
		Destination:        0x0003,
		AppKeyIndex:        0x0001,
		Reliable:           true,
		TTL:                0x3F,
		RetransmitCount:    2,
		RetransmitInterval: 4,
		ReplyTimeout:       5,
	}
	if *req != want {
		t.Errorf("ParseRequest() = %+v, want %+v", *req, want)
	}
	if !bytes.Equal(rest, []byte{0xAA, 0xBB}) {
		t.Errorf("rest = %x, want aabb", rest)
	}
	if req.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", req.Timeout())
	}

	if got := req.AppendHeader(nil); !bytes.Equal(got, data[:RequestHeaderSize]) {
		t.Errorf("AppendHeader() = %x, want %x", got, data[:RequestHeaderSize])
	}
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"Empty", nil, ErrHeaderTooShort},
		{"Short", header(1, 0, 0, 0)[:RequestHeaderSize-1], ErrHeaderTooShort},
		{"Unassigned destination", header(0, 0, 0, 0), ErrInvalidDestination},
		{"TTL 1", header(1, 0, 0, 1), ErrInvalidTTL},
		{"TTL 0x80", header(1, 0, 0, 0x80), ErrInvalidTTL},
		{"TTL 0xFE", header(1, 0, 0, 0xFE), ErrInvalidTTL},
		{"Reliable flag 2", header(1, 2, 0, 0), ErrInvalidFlag},
		{"Segmented flag 3", header(1, 0, 3, 0), ErrInvalidFlag},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseRequest(0x1690, CompanyIDBluetoothSIG, ModelIDTimeClient, tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseRequest() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseRequestTTL(t *testing.T) {
	for _, ttl := range []byte{0x00, 0x02, 0x7F, DefaultTTL} {
		if _, _, err := ParseRequest(0x1690, 0, ModelIDTimeClient, header(1, 0, 0, ttl)); err != nil {
			t.Errorf("TTL %#02x: error = %v", ttl, err)
		}
	}
}

func TestEventHeader(t *testing.T) {
	h := EventHeader{Source: 0x0102, AppKeyIndex: 0x0003, ElementIndex: 4}
	want := []byte{0x02, 0x01, 0x03, 0x00, 0x04}

	got := h.AppendTo(nil)
	if !bytes.Equal(got, want) {
		t.Fatalf("AppendTo() = %x, want %x", got, want)
	}

	decoded, rest, err := DecodeEventHeader(append(got, 0x99))
	if err != nil {
		t.Fatalf("DecodeEventHeader() error: %v", err)
	}
	if decoded != h {
		t.Errorf("DecodeEventHeader() = %+v, want %+v", decoded, h)
	}
	if !bytes.Equal(rest, []byte{0x99}) {
		t.Errorf("rest = %x, want 99", rest)
	}

	if _, _, err := DecodeEventHeader(want[:3]); !errors.Is(err, cursor.ErrShortBuffer) {
		t.Errorf("short header error = %v, want ErrShortBuffer", err)
	}
}
