package mesh

import (
	"github.com/backkem/meshtime/pkg/cursor"
)

// EventHeaderSize is the size of the header prefixed to every host event.
const EventHeaderSize = 5

// EventHeader identifies the sender of an inbound mesh message.
//
// Wire layout (little-endian): src(2) appKeyIndex(2) elementIndex(1)
type EventHeader struct {
	Source       uint16
	AppKeyIndex  uint16
	ElementIndex uint8
}

// EncodeTo writes the header.
func (h EventHeader) EncodeTo(w *cursor.Writer) error {
	w.PutUint16(h.Source)
	w.PutUint16(h.AppKeyIndex)
	w.PutUint8(h.ElementIndex)
	return w.Err()
}

// AppendTo appends the encoded header to buf.
func (h EventHeader) AppendTo(buf []byte) []byte {
	var hdr [EventHeaderSize]byte
	_ = h.EncodeTo(cursor.NewWriter(hdr[:]))
	return append(buf, hdr[:]...)
}

// DecodeEventHeader reads a header from the start of data and returns the
// bytes that follow it.
func DecodeEventHeader(data []byte) (EventHeader, []byte, error) {
	r := cursor.NewReader(data)
	h := EventHeader{
		Source:       r.Uint16(),
		AppKeyIndex:  r.Uint16(),
		ElementIndex: r.Uint8(),
	}
	if err := r.Err(); err != nil {
		return EventHeader{}, nil, err
	}
	return h, r.Rest(), nil
}
