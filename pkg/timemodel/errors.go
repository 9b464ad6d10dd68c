package timemodel

import "errors"

// Time model errors.
var (
	// ErrInvalidRole is returned when a Time Role value is outside the
	// defined enumeration (None, Authority, Relay, Client).
	ErrInvalidRole = errors.New("timemodel: invalid time role")

	// ErrInvalidAuthority is returned when a Time Authority byte is neither 0 nor 1.
	ErrInvalidAuthority = errors.New("timemodel: invalid time authority (must be 0 or 1)")

	// ErrRecordLength is returned when a host-link record is not exactly its
	// fixed size.
	ErrRecordLength = errors.New("timemodel: record length mismatch")

	// ErrDeltaOverflow is returned when a TAI-UTC delta does not fit the
	// 15-bit over-the-air field.
	ErrDeltaOverflow = errors.New("timemodel: TAI-UTC delta exceeds 15 bits")

	// ErrInvalidOpcode is returned for malformed or vendor (3-octet) opcodes.
	ErrInvalidOpcode = errors.New("timemodel: invalid access opcode")

	// ErrUnexpectedOpcode is returned when an access PDU carries a different
	// message than the one being decoded.
	ErrUnexpectedOpcode = errors.New("timemodel: unexpected access opcode")

	// ErrParamsLength is returned when access parameters have the wrong length.
	ErrParamsLength = errors.New("timemodel: invalid access parameters length")
)
