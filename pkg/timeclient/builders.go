package timeclient

import (
	"fmt"

	"github.com/backkem/meshtime/pkg/cursor"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
)

// Get builders ignore any payload.

func (c *Client) timeGet(req *mesh.Request, _ []byte) error {
	return c.mesh.TimeGet(req)
}

func (c *Client) timeZoneGet(req *mesh.Request, _ []byte) error {
	return c.mesh.TimeZoneGet(req)
}

func (c *Client) taiUTCDeltaGet(req *mesh.Request, _ []byte) error {
	return c.mesh.TAIUTCDeltaGet(req)
}

func (c *Client) timeRoleGet(req *mesh.Request, _ []byte) error {
	return c.mesh.TimeRoleGet(req)
}

// Set builders decode their record from the payload, which must be exactly
// the record size.

func (c *Client) timeSet(req *mesh.Request, payload []byte) error {
	var s timemodel.TimeState
	if err := decodeSetPayload(payload, &s); err != nil {
		return err
	}
	if c.log != nil {
		c.log.Tracef("time set: tai=%#x subsecond=%#x uncertainty=%#x authority=%v delta=%#x zone=%#x",
			s.TAISeconds, s.Subsecond, s.Uncertainty, s.TimeAuthority, s.TAIUTCDelta, s.TimeZoneOffset)
	}
	return c.mesh.TimeSet(req, &s)
}

func (c *Client) timeZoneSet(req *mesh.Request, payload []byte) error {
	var z timemodel.TimeZoneSet
	if err := decodeSetPayload(payload, &z); err != nil {
		return err
	}
	if c.log != nil {
		c.log.Tracef("zone set: offset_new=%#x tai_of_change=%#x", z.OffsetNew, z.TAIOfZoneChange)
	}
	return c.mesh.TimeZoneSet(req, &z)
}

func (c *Client) taiUTCDeltaSet(req *mesh.Request, payload []byte) error {
	var d timemodel.TAIUTCDeltaSet
	if err := decodeSetPayload(payload, &d); err != nil {
		return err
	}
	if c.log != nil {
		c.log.Tracef("delta set: delta_new=%#x tai_of_change=%#x", d.DeltaNew, d.TAIOfDeltaChange)
	}
	return c.mesh.TAIUTCDeltaSet(req, &d)
}

func (c *Client) timeRoleSet(req *mesh.Request, payload []byte) error {
	var r timemodel.TimeRoleMsg
	if err := decodeSetPayload(payload, &r); err != nil {
		return err
	}
	if c.log != nil {
		c.log.Tracef("role set: role=%s", r.Role)
	}
	return c.mesh.TimeRoleSet(req, &r)
}

func decodeSetPayload(payload []byte, rec timemodel.Record) error {
	switch {
	case len(payload) < rec.Size():
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortPayload, len(payload), rec.Size())
	case len(payload) > rec.Size():
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPayloadTooLong, len(payload), rec.Size())
	}
	return rec.DecodeFrom(cursor.NewReader(payload))
}
