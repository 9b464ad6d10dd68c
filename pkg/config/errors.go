package config

import "errors"

// Configuration errors.
var (
	// ErrInvalidMode is returned for a host link mode other than tcp or serial.
	ErrInvalidMode = errors.New("config: invalid host link mode")

	// ErrMissingSerialPort is returned when serial mode has no port.
	ErrMissingSerialPort = errors.New("config: serial mode requires a port")

	// ErrInvalidRole is returned for an unknown simulated time role.
	ErrInvalidRole = errors.New("config: invalid time role")

	// ErrInvalidLogLevel is returned for an unknown log level name.
	ErrInvalidLogLevel = errors.New("config: invalid log level")

	// ErrInvalidValue is returned when a field is out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)
