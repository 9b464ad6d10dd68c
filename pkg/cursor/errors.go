package cursor

import "errors"

// Cursor errors.
var (
	// ErrShortBuffer is returned when a field does not fit in the remaining
	// bytes of the buffer.
	ErrShortBuffer = errors.New("cursor: short buffer")

	// ErrInvalidBool is returned when a boolean byte is neither 0 nor 1.
	ErrInvalidBool = errors.New("cursor: invalid boolean")

	// ErrValueOverflow is returned when a value does not fit in its field width.
	ErrValueOverflow = errors.New("cursor: value exceeds field width")
)
