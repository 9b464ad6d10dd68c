package hci

import (
	"context"
	"fmt"

	"github.com/backkem/meshtime/pkg/mesh"
)

// Event is a decoded host event.
type Event struct {
	Code    EventCode
	Header  mesh.EventHeader
	Payload []byte
}

// Host is the host side of the link: it sends commands and reads events.
type Host struct {
	t Transport
}

// NewHost wraps a transport connected to a node.
func NewHost(t Transport) *Host {
	return &Host{t: t}
}

// SendCommand sends op with the request header of req followed by payload.
func (h *Host) SendCommand(ctx context.Context, op Opcode, req *mesh.Request, payload []byte) error {
	data := make([]byte, 0, mesh.RequestHeaderSize+len(payload))
	data = req.AppendHeader(data)
	data = append(data, payload...)
	return h.t.WriteFrame(ctx, &Frame{Code: uint16(op), Payload: data})
}

// ReadEvent blocks until the next event arrives.
func (h *Host) ReadEvent(ctx context.Context) (*Event, error) {
	f, err := h.t.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}

	hdr, payload, err := mesh.DecodeEventHeader(f.Payload)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", EventCode(f.Code), err)
	}
	return &Event{Code: EventCode(f.Code), Header: hdr, Payload: payload}, nil
}

// Close closes the underlying transport.
func (h *Host) Close() error {
	return h.t.Close()
}
