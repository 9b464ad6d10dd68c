package timeclient

import "errors"

// Time client errors. None of them is fatal; each one ends the handling
// of a single command or status.
var (
	// ErrUnsupportedOpcode is returned for host commands outside the Time
	// family. HandleCommand reports such commands as not handled.
	ErrUnsupportedOpcode = errors.New("timeclient: unsupported opcode")

	// ErrMalformedHeader is returned when the mesh request context cannot be
	// built from the command header. No request is sent.
	ErrMalformedHeader = errors.New("timeclient: malformed header")

	// ErrShortPayload is returned when a Set payload is shorter than its record.
	ErrShortPayload = errors.New("timeclient: truncated payload")

	// ErrPayloadTooLong is returned when a Set payload is longer than its record.
	ErrPayloadTooLong = errors.New("timeclient: payload too long")

	// ErrUnrecognizedStatusKind is returned for status kinds other than the
	// four Time statuses. The status is dropped.
	ErrUnrecognizedStatusKind = errors.New("timeclient: unrecognized status kind")

	// ErrRecordMismatch is returned when a status record does not match its kind.
	ErrRecordMismatch = errors.New("timeclient: record does not match status kind")

	// ErrNoMeshClient is returned when Config.MeshClient is nil.
	ErrNoMeshClient = errors.New("timeclient: mesh client is required")

	// ErrNoSender is returned when Config.Sender is nil.
	ErrNoSender = errors.New("timeclient: event sender is required")
)
