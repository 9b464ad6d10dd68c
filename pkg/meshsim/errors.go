package meshsim

import "errors"

// Simulator errors.
var (
	// ErrUnsupportedMessage is returned when the server receives an access
	// message it does not serve.
	ErrUnsupportedMessage = errors.New("meshsim: unsupported access message")

	// ErrNoServer is returned when a stack is created without a server.
	ErrNoServer = errors.New("meshsim: no time server")

	// ErrUnexpectedStatus is returned when the server replies with a
	// message that is not a Time status.
	ErrUnexpectedStatus = errors.New("meshsim: unexpected status message")
)
