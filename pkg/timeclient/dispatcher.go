package timeclient

import (
	"fmt"

	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
)

// statusRoute pairs a status kind with its host event and encoder.
type statusRoute struct {
	event  hci.EventCode
	encode func(buf []byte, rec any) (int, error)
}

// statusRoutes maps each status kind to its route. Kinds missing from the
// table are unrecognized.
var statusRoutes = map[timemodel.Opcode]statusRoute{
	timemodel.OpcodeTimeStatus:        {hci.EventTimeStatus, encodeTimeRecord},
	timemodel.OpcodeTimeZoneStatus:    {hci.EventTimeZoneStatus, encodeZoneRecord},
	timemodel.OpcodeTAIUTCDeltaStatus: {hci.EventTimeTAIUTCDeltaStatus, encodeDeltaRecord},
	timemodel.OpcodeTimeRoleStatus:    {hci.EventTimeRoleStatus, encodeRoleRecord},
}

// HandleStatus implements mesh.StatusHandler. ev is released on every path.
func (c *Client) HandleStatus(kind timemodel.Opcode, ev mesh.Event, rec any) {
	defer ev.Release()

	if err := c.dispatchStatus(kind, ev, rec); err != nil && c.log != nil {
		c.log.Warnf("status %#04x dropped: %v", uint16(kind), err)
	}
}

func (c *Client) dispatchStatus(kind timemodel.Opcode, ev mesh.Event, rec any) error {
	route, ok := statusRoutes[kind]
	if !ok {
		return fmt.Errorf("%w: %#04x", ErrUnrecognizedStatusKind, uint16(kind))
	}

	var buf [timemodel.MaxRecordSize]byte
	n, err := route.encode(buf[:], rec)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	hdr := ev.Header()
	if c.log != nil {
		c.log.Tracef("%s from %#04x: %+v", kind, hdr.Source, rec)
	}
	return c.sender.SendEvent(route.event, hdr, buf[:n])
}

func encodeTimeRecord(buf []byte, rec any) (int, error) {
	s, ok := rec.(*timemodel.TimeState)
	if !ok || s == nil {
		return 0, recordMismatch(rec)
	}
	return EncodeTimeStatus(buf, s)
}

func encodeZoneRecord(buf []byte, rec any) (int, error) {
	z, ok := rec.(*timemodel.TimeZoneStatus)
	if !ok || z == nil {
		return 0, recordMismatch(rec)
	}
	return EncodeTimeZoneStatus(buf, z)
}

func encodeDeltaRecord(buf []byte, rec any) (int, error) {
	d, ok := rec.(*timemodel.TAIUTCDeltaStatus)
	if !ok || d == nil {
		return 0, recordMismatch(rec)
	}
	return EncodeTAIUTCDeltaStatus(buf, d)
}

func encodeRoleRecord(buf []byte, rec any) (int, error) {
	r, ok := rec.(*timemodel.TimeRoleMsg)
	if !ok || r == nil {
		return 0, recordMismatch(rec)
	}
	return EncodeTimeRoleStatus(buf, r)
}

func recordMismatch(rec any) error {
	return fmt.Errorf("%w: got %T", ErrRecordMismatch, rec)
}
