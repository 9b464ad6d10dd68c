// Package timemodel implements the Bluetooth mesh Time model messages.
//
// It defines the Time, Time Zone, TAI-UTC Delta and Time Role records, their
// fixed host-link layouts (plain little-endian fields) and their
// over-the-air access-layer encodings (bit-packed parameters behind a 1 or 2
// octet opcode).
//
// See Mesh Model Specification Section 5.2.1 (Time messages).
package timemodel

// Opcode is a Time model access-layer opcode.
// One-octet opcodes are below 0x80; two-octet opcodes are 0x8000-0xBFFF.
type Opcode uint16

// Time model opcodes (Mesh Model Specification Section 7.1).
const (
	OpcodeTimeGet    Opcode = 0x8237
	OpcodeTimeSet    Opcode = 0x005C
	OpcodeTimeStatus Opcode = 0x005D

	OpcodeTimeRoleGet    Opcode = 0x8238
	OpcodeTimeRoleSet    Opcode = 0x8239
	OpcodeTimeRoleStatus Opcode = 0x823A

	OpcodeTimeZoneGet    Opcode = 0x823B
	OpcodeTimeZoneSet    Opcode = 0x823C
	OpcodeTimeZoneStatus Opcode = 0x823D

	OpcodeTAIUTCDeltaGet    Opcode = 0x823E
	OpcodeTAIUTCDeltaSet    Opcode = 0x823F
	OpcodeTAIUTCDeltaStatus Opcode = 0x8240
)

// String returns the message name.
func (o Opcode) String() string {
	switch o {
	case OpcodeTimeGet:
		return "TimeGet"
	case OpcodeTimeSet:
		return "TimeSet"
	case OpcodeTimeStatus:
		return "TimeStatus"
	case OpcodeTimeRoleGet:
		return "TimeRoleGet"
	case OpcodeTimeRoleSet:
		return "TimeRoleSet"
	case OpcodeTimeRoleStatus:
		return "TimeRoleStatus"
	case OpcodeTimeZoneGet:
		return "TimeZoneGet"
	case OpcodeTimeZoneSet:
		return "TimeZoneSet"
	case OpcodeTimeZoneStatus:
		return "TimeZoneStatus"
	case OpcodeTAIUTCDeltaGet:
		return "TAIUTCDeltaGet"
	case OpcodeTAIUTCDeltaSet:
		return "TAIUTCDeltaSet"
	case OpcodeTAIUTCDeltaStatus:
		return "TAIUTCDeltaStatus"
	default:
		return "Unknown"
	}
}

// IsStatus reports whether o is one of the four status opcodes.
func (o Opcode) IsStatus() bool {
	switch o {
	case OpcodeTimeStatus, OpcodeTimeRoleStatus, OpcodeTimeZoneStatus, OpcodeTAIUTCDeltaStatus:
		return true
	default:
		return false
	}
}

// Size returns the number of octets o occupies in an access PDU.
func (o Opcode) Size() int {
	if o < 0x80 {
		return 1
	}
	return 2
}
