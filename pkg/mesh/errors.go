package mesh

import "errors"

// Mesh boundary errors.
var (
	// ErrHeaderTooShort is returned when a command is shorter than the
	// request header.
	ErrHeaderTooShort = errors.New("mesh: request header too short")

	// ErrInvalidTTL is returned for TTL 1 or 0x80-0xFE. 0xFF selects the
	// default TTL.
	ErrInvalidTTL = errors.New("mesh: invalid TTL")

	// ErrInvalidFlag is returned when a boolean header byte is neither 0 nor 1.
	ErrInvalidFlag = errors.New("mesh: invalid header flag")

	// ErrInvalidDestination is returned for the unassigned address 0x0000.
	ErrInvalidDestination = errors.New("mesh: unassigned destination address")

	// ErrNotProvisioned is returned when sending from an unprovisioned node.
	ErrNotProvisioned = errors.New("mesh: node not provisioned")

	// ErrNotRegistered is returned when no Time Client model is registered.
	ErrNotRegistered = errors.New("mesh: time client not registered")
)
