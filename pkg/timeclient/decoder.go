package timeclient

import (
	"errors"
	"fmt"

	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
)

// requestBuilder sends one kind of request. payload is the command data
// after the request header.
type requestBuilder func(c *Client, req *mesh.Request, payload []byte) error

// requestBuilders maps each Time command to its builder. Commands missing
// from the table are not part of the Time family.
var requestBuilders = map[hci.Opcode]requestBuilder{
	hci.CommandTimeGet:            (*Client).timeGet,
	hci.CommandTimeSet:            (*Client).timeSet,
	hci.CommandTimeZoneGet:        (*Client).timeZoneGet,
	hci.CommandTimeZoneSet:        (*Client).timeZoneSet,
	hci.CommandTimeTAIUTCDeltaGet: (*Client).taiUTCDeltaGet,
	hci.CommandTimeTAIUTCDeltaSet: (*Client).taiUTCDeltaSet,
	hci.CommandTimeRoleGet:        (*Client).timeRoleGet,
	hci.CommandTimeRoleSet:        (*Client).timeRoleSet,
}

// IsTimeCommand reports whether op belongs to the Time command family.
func IsTimeCommand(op hci.Opcode) bool {
	_, ok := requestBuilders[op]
	return ok
}

// HandleCommand implements hci.CommandHandler. It reports false only for
// opcodes outside the Time family; rejected Time commands are handled.
func (c *Client) HandleCommand(op hci.Opcode, data []byte) bool {
	err := c.Decode(op, data)
	return !errors.Is(err, ErrUnsupportedOpcode)
}

// Decode checks op, builds the request context from data and runs the
// matching request builder.
func (c *Client) Decode(op hci.Opcode, data []byte) error {
	build, ok := requestBuilders[op]
	if !ok {
		if c.log != nil {
			c.log.Debugf("unsupported opcode %#04x", uint16(op))
		}
		return fmt.Errorf("%w: %#04x", ErrUnsupportedOpcode, uint16(op))
	}

	if c.log != nil {
		c.log.Debugf("command %s len=%d", op, len(data))
	}

	req, payload, err := c.buildContext(uint16(op), c.companyID, c.modelID, data)
	if err != nil {
		if c.log != nil {
			c.log.Warnf("%s: bad header: %v", op, err)
		}
		return fmt.Errorf("%w: %w", ErrMalformedHeader, err)
	}

	if err := build(c, req, payload); err != nil {
		if c.log != nil {
			c.log.Warnf("%s to %#04x failed: %v", op, req.Destination, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
