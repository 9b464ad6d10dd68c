package hci

import "errors"

// Host link errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed link
	// or transport.
	ErrClosed = errors.New("hci: closed")

	// ErrFrameTooLarge is returned when a frame payload exceeds MaxPayloadSize.
	ErrFrameTooLarge = errors.New("hci: frame payload too large")

	// ErrInvalidMarker is returned when a packet does not start with FrameMarker.
	ErrInvalidMarker = errors.New("hci: invalid frame marker")

	// ErrShortFrame is returned when a packet is shorter than the frame header.
	ErrShortFrame = errors.New("hci: short frame")

	// ErrLengthMismatch is returned when the length field disagrees with the
	// packet size.
	ErrLengthMismatch = errors.New("hci: frame length mismatch")

	// ErrNoHost is returned by SendEvent when no host is attached.
	ErrNoHost = errors.New("hci: no host attached")

	// ErrNoHandler is returned when a required handler is not configured.
	ErrNoHandler = errors.New("hci: no handler configured")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("hci: already started")

	// ErrHostBusy is returned when a second host connects while one is attached.
	ErrHostBusy = errors.New("hci: host already attached")

	// ErrNoSerialPort is returned when no serial port name is configured.
	ErrNoSerialPort = errors.New("hci: serial port name is empty")

	// ErrInvalidBaudRate is returned for a negative baud rate.
	ErrInvalidBaudRate = errors.New("hci: invalid serial baud rate")
)

// isFrameError reports whether err describes one bad frame rather than a
// broken transport. The read loop skips such frames.
func isFrameError(err error) bool {
	return errors.Is(err, ErrFrameTooLarge) ||
		errors.Is(err, ErrInvalidMarker) ||
		errors.Is(err, ErrShortFrame) ||
		errors.Is(err, ErrLengthMismatch)
}
