package timemodel

import (
	"fmt"

	"github.com/backkem/meshtime/pkg/cursor"
)

// Access parameter sizes in octets (Mesh Model Specification Section 5.2.1).
const (
	TimeParamsSize        = 10
	TimeUnknownParamsSize = 5 // Time Status with TAI seconds 0
	TimeZoneSetParamsSize = 6
	TimeZoneStatusParams  = 7
	DeltaSetParamsSize    = 7
	DeltaStatusParamsSize = 9
	TimeRoleParamsSize    = 1
)

const (
	authorityBit uint16 = 0x0001
	deltaMask    uint16 = 0x7FFF
)

// EncodeAccess builds an access PDU from an opcode and its parameters.
// Two-octet opcodes are sent most significant octet first; parameters are
// appended unchanged.
func EncodeAccess(op Opcode, params []byte) ([]byte, error) {
	if !validOpcode(op) {
		return nil, fmt.Errorf("%w: %#04x", ErrInvalidOpcode, uint16(op))
	}

	pdu := make([]byte, 0, op.Size()+len(params))
	if op.Size() == 1 {
		pdu = append(pdu, byte(op))
	} else {
		pdu = append(pdu, byte(op>>8), byte(op))
	}
	return append(pdu, params...), nil
}

// DecodeAccess splits an access PDU into its opcode and parameters.
// The returned parameters alias pdu.
func DecodeAccess(pdu []byte) (Opcode, []byte, error) {
	if len(pdu) == 0 {
		return 0, nil, ErrInvalidOpcode
	}

	b0 := pdu[0]
	switch {
	case b0 == 0x7F:
		// Reserved for future use.
		return 0, nil, ErrInvalidOpcode
	case b0&0x80 == 0:
		return Opcode(b0), pdu[1:], nil
	case b0&0xC0 == 0x80:
		if len(pdu) < 2 {
			return 0, nil, ErrInvalidOpcode
		}
		return Opcode(uint16(b0)<<8 | uint16(pdu[1])), pdu[2:], nil
	default:
		// Three-octet vendor opcodes never carry Time model messages.
		return 0, nil, ErrInvalidOpcode
	}
}

// ExpectAccess decodes pdu and returns its parameters if it carries want.
func ExpectAccess(pdu []byte, want Opcode) ([]byte, error) {
	op, params, err := DecodeAccess(pdu)
	if err != nil {
		return nil, err
	}
	if op != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnexpectedOpcode, op, want)
	}
	return params, nil
}

func validOpcode(op Opcode) bool {
	switch {
	case op < 0x7F:
		return true
	case op >= 0x8000 && op < 0xC000:
		return true
	default:
		return false
	}
}

// MarshalParams encodes the Time Set parameters. Time Authority and the
// TAI-UTC delta share one little-endian 16-bit field: authority in bit 0,
// delta in bits 1-15.
func (s *TimeState) MarshalParams() ([]byte, error) {
	return s.marshalParams(false)
}

// MarshalStatusParams encodes the Time Status parameters. An unknown time
// (TAISeconds 0) is sent as the TAI seconds field alone.
func (s *TimeState) MarshalStatusParams() ([]byte, error) {
	return s.marshalParams(true)
}

func (s *TimeState) marshalParams(status bool) ([]byte, error) {
	if s.TAIUTCDelta > MaxTAIUTCDelta {
		return nil, ErrDeltaOverflow
	}

	size := TimeParamsSize
	if status && s.TAISeconds == 0 {
		size = TimeUnknownParamsSize
	}

	w := cursor.NewWriter(make([]byte, size))
	w.PutUint40(s.TAISeconds)
	if size == TimeParamsSize {
		packed := s.TAIUTCDelta << 1
		if s.TimeAuthority {
			packed |= authorityBit
		}
		w.PutUint8(s.Subsecond)
		w.PutUint8(s.Uncertainty)
		w.PutUint16(packed)
		w.PutUint8(s.TimeZoneOffset)
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// UnmarshalParams decodes Time Set or Time Status parameters.
func (s *TimeState) UnmarshalParams(p []byte) error {
	r := cursor.NewReader(p)

	switch len(p) {
	case TimeUnknownParamsSize:
		tai := r.Uint40()
		if tai != 0 {
			return fmt.Errorf("%w: short time status with TAI seconds %d", ErrParamsLength, tai)
		}
		*s = TimeState{}
		return nil

	case TimeParamsSize:
		tai := r.Uint40()
		subsecond := r.Uint8()
		uncertainty := r.Uint8()
		packed := r.Uint16()
		zone := r.Uint8()
		if err := r.Err(); err != nil {
			return err
		}
		*s = TimeState{
			TAISeconds:     tai,
			Subsecond:      subsecond,
			Uncertainty:    uncertainty,
			TimeAuthority:  packed&authorityBit != 0,
			TAIUTCDelta:    packed >> 1,
			TimeZoneOffset: zone,
		}
		return nil

	default:
		return fmt.Errorf("%w: time params %d octets", ErrParamsLength, len(p))
	}
}

// MarshalParams encodes the Time Zone Set parameters (same layout as the host link).
func (z *TimeZoneSet) MarshalParams() ([]byte, error) {
	return Marshal(z)
}

// UnmarshalParams decodes the Time Zone Set parameters.
func (z *TimeZoneSet) UnmarshalParams(p []byte) error {
	return unmarshalParams(p, z)
}

// MarshalParams encodes the Time Zone Status parameters.
func (z *TimeZoneStatus) MarshalParams() ([]byte, error) {
	return Marshal(z)
}

// UnmarshalParams decodes the Time Zone Status parameters.
func (z *TimeZoneStatus) UnmarshalParams(p []byte) error {
	return unmarshalParams(p, z)
}

// MarshalParams encodes the TAI-UTC Delta Set parameters: a 15-bit delta
// followed by one padding bit, then the 40-bit TAI of the change.
func (d *TAIUTCDeltaSet) MarshalParams() ([]byte, error) {
	if d.DeltaNew > MaxTAIUTCDelta {
		return nil, ErrDeltaOverflow
	}
	return Marshal(d)
}

// UnmarshalParams decodes the TAI-UTC Delta Set parameters, ignoring the
// padding bit.
func (d *TAIUTCDeltaSet) UnmarshalParams(p []byte) error {
	if err := unmarshalParams(p, d); err != nil {
		return err
	}
	d.DeltaNew &= deltaMask
	return nil
}

// MarshalParams encodes the TAI-UTC Delta Status parameters.
func (d *TAIUTCDeltaStatus) MarshalParams() ([]byte, error) {
	if d.DeltaCurrent > MaxTAIUTCDelta || d.DeltaNew > MaxTAIUTCDelta {
		return nil, ErrDeltaOverflow
	}
	return Marshal(d)
}

// UnmarshalParams decodes the TAI-UTC Delta Status parameters, ignoring the
// padding bits.
func (d *TAIUTCDeltaStatus) UnmarshalParams(p []byte) error {
	if err := unmarshalParams(p, d); err != nil {
		return err
	}
	d.DeltaCurrent &= deltaMask
	d.DeltaNew &= deltaMask
	return nil
}

// MarshalParams encodes the Time Role Set / Status parameters.
func (m *TimeRoleMsg) MarshalParams() ([]byte, error) {
	if !m.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	return Marshal(m)
}

// UnmarshalParams decodes the Time Role parameters.
func (m *TimeRoleMsg) UnmarshalParams(p []byte) error {
	return unmarshalParams(p, m)
}

func unmarshalParams(p []byte, rec Record) error {
	if len(p) != rec.Size() {
		return fmt.Errorf("%w: got %d octets, want %d", ErrParamsLength, len(p), rec.Size())
	}
	return rec.DecodeFrom(cursor.NewReader(p))
}
