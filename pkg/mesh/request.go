package mesh

import (
	"errors"
	"fmt"
	"time"

	"github.com/backkem/meshtime/pkg/cursor"
)

// RequestHeaderSize is the size of the header preceding every command payload.
const RequestHeaderSize = 11

// DefaultTTL asks the stack to use its configured default TTL.
const DefaultTTL uint8 = 0xFF

// Retransmission and reply timing units.
const (
	RetransmitIntervalStep = 50 * time.Millisecond
	ReplyTimeoutStep       = time.Second
)

// Request is the outbound context for one mesh send.
//
// Wire layout (little-endian):
//
//	dst(2) appKeyIndex(2) elementIndex(1) reliable(1) segmented(1)
//	ttl(1) retransmitCount(1) retransmitInterval(1) replyTimeout(1)
type Request struct {
	// Opcode is the host command that produced the request.
	Opcode uint16

	// CompanyID and ModelID identify the sending model.
	CompanyID uint16
	ModelID   uint16

	Destination  uint16
	AppKeyIndex  uint16
	ElementIndex uint8

	// Reliable requests expect a status reply within ReplyTimeout.
	Reliable bool

	// Segmented forces transport segmentation of short messages.
	Segmented bool

	TTL                uint8
	RetransmitCount    uint8
	RetransmitInterval uint8 // 50 ms units
	ReplyTimeout       uint8 // 1 s units
}

// ParseRequest builds a Request from the header at the start of data and
// returns the bytes that follow it.
func ParseRequest(opcode, companyID, modelID uint16, data []byte) (*Request, []byte, error) {
	if len(data) < RequestHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(data))
	}

	r := cursor.NewReader(data)
	req := &Request{
		Opcode:       opcode,
		CompanyID:    companyID,
		ModelID:      modelID,
		Destination:  r.Uint16(),
		AppKeyIndex:  r.Uint16(),
		ElementIndex: r.Uint8(),
	}
	req.Reliable = r.Bool()
	req.Segmented = r.Bool()
	req.TTL = r.Uint8()
	req.RetransmitCount = r.Uint8()
	req.RetransmitInterval = r.Uint8()
	req.ReplyTimeout = r.Uint8()
	if err := r.Err(); err != nil {
		if errors.Is(err, cursor.ErrInvalidBool) {
			return nil, nil, ErrInvalidFlag
		}
		return nil, nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	return req, r.Rest(), nil
}

// Validate checks the addressing fields.
func (r *Request) Validate() error {
	if r.Destination == 0 {
		return ErrInvalidDestination
	}
	if r.TTL == 1 || (r.TTL >= 0x80 && r.TTL != DefaultTTL) {
		return fmt.Errorf("%w: %#02x", ErrInvalidTTL, r.TTL)
	}
	return nil
}

// AppendHeader appends the wire header of r to buf.
func (r *Request) AppendHeader(buf []byte) []byte {
	var hdr [RequestHeaderSize]byte
	w := cursor.NewWriter(hdr[:])
	w.PutUint16(r.Destination)
	w.PutUint16(r.AppKeyIndex)
	w.PutUint8(r.ElementIndex)
	w.PutBool(r.Reliable)
	w.PutBool(r.Segmented)
	w.PutUint8(r.TTL)
	w.PutUint8(r.RetransmitCount)
	w.PutUint8(r.RetransmitInterval)
	w.PutUint8(r.ReplyTimeout)
	return append(buf, hdr[:]...)
}

// Timeout returns the reply timeout as a duration.
func (r *Request) Timeout() time.Duration {
	return time.Duration(r.ReplyTimeout) * ReplyTimeoutStep
}
