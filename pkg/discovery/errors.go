package discovery

import "errors"

// Advertiser errors.
var (
	// ErrClosed is returned by an Advertiser after Close.
	ErrClosed = errors.New("discovery: closed")

	// ErrAlreadyStarted is returned by Start while the service is advertised.
	ErrAlreadyStarted = errors.New("discovery: already advertising")

	// ErrNotStarted is returned by Stop when nothing is advertised.
	ErrNotStarted = errors.New("discovery: not advertising")

	// ErrInvalidPort is returned for a host link port outside 1-65535.
	ErrInvalidPort = errors.New("discovery: invalid port (must be 1-65535)")
)

// TXT record errors.
var (
	// ErrInvalidName is returned for a bridge name that is empty or longer
	// than 63 characters.
	ErrInvalidName = errors.New("discovery: invalid bridge name (1-63 characters)")

	// ErrInvalidTXTRecord is returned when a TXT record lacks a key or has a
	// malformed value.
	ErrInvalidTXTRecord = errors.New("discovery: invalid TXT record")
)

// Resolver errors.
var (
	// ErrServiceNotFound is returned when a lookup ends without an answer.
	ErrServiceNotFound = errors.New("discovery: bridge not found")

	// ErrTimeout is returned when a lookup deadline expires.
	ErrTimeout = errors.New("discovery: lookup timed out")
)
