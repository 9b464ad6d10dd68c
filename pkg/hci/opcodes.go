// Package hci implements the host control link of the Time client.
//
// The link carries framed commands from the host to the mesh node and
// status events back. Every frame is
//
//	marker(1)=0x19 code(2) length(2) payload(length)
//
// with little-endian integers. Command payloads start with the mesh request
// header (see mesh.ParseRequest); event payloads start with the mesh event
// header (see mesh.EventHeader).
//
// Frames travel over a Transport: a byte stream (TCP connection, serial
// port) or a packet connection carrying one frame per datagram (Pipe).
package hci

import "fmt"

// Opcode is a host command code.
type Opcode uint16

// Time client commands.
const (
	CommandTimeGet            Opcode = 0x1690
	CommandTimeSet            Opcode = 0x1691
	CommandTimeZoneGet        Opcode = 0x1692
	CommandTimeZoneSet        Opcode = 0x1693
	CommandTimeTAIUTCDeltaGet Opcode = 0x1694
	CommandTimeTAIUTCDeltaSet Opcode = 0x1695
	CommandTimeRoleGet        Opcode = 0x1696
	CommandTimeRoleSet        Opcode = 0x1697
)

// String returns the command name.
func (o Opcode) String() string {
	switch o {
	case CommandTimeGet:
		return "TimeGet"
	case CommandTimeSet:
		return "TimeSet"
	case CommandTimeZoneGet:
		return "TimeZoneGet"
	case CommandTimeZoneSet:
		return "TimeZoneSet"
	case CommandTimeTAIUTCDeltaGet:
		return "TimeTAIUTCDeltaGet"
	case CommandTimeTAIUTCDeltaSet:
		return "TimeTAIUTCDeltaSet"
	case CommandTimeRoleGet:
		return "TimeRoleGet"
	case CommandTimeRoleSet:
		return "TimeRoleSet"
	default:
		return fmt.Sprintf("Opcode(%#04x)", uint16(o))
	}
}

// EventCode is a host event code.
type EventCode uint16

// Time client events.
const (
	EventTimeStatus            EventCode = 0x1690
	EventTimeZoneStatus        EventCode = 0x1691
	EventTimeTAIUTCDeltaStatus EventCode = 0x1692
	EventTimeRoleStatus        EventCode = 0x1693
)

// String returns the event name.
func (c EventCode) String() string {
	switch c {
	case EventTimeStatus:
		return "TimeStatus"
	case EventTimeZoneStatus:
		return "TimeZoneStatus"
	case EventTimeTAIUTCDeltaStatus:
		return "TimeTAIUTCDeltaStatus"
	case EventTimeRoleStatus:
		return "TimeRoleStatus"
	default:
		return fmt.Sprintf("EventCode(%#04x)", uint16(c))
	}
}
