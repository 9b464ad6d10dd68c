package timemodel

import (
	"fmt"

	"github.com/backkem/meshtime/pkg/cursor"
)

// Host-link record sizes in bytes.
const (
	// TimeStateSize: TAI seconds (5) + subsecond (1) + uncertainty (1) +
	// authority (1) + TAI-UTC delta (2) + zone offset (1).
	TimeStateSize = 11

	// TimeZoneSetSize: offset new (1) + TAI of zone change (5).
	TimeZoneSetSize = 6

	// TimeZoneStatusSize: offset current (1) + offset new (1) + TAI of zone change (5).
	TimeZoneStatusSize = 7

	// TAIUTCDeltaSetSize: delta new (2) + TAI of delta change (5).
	TAIUTCDeltaSetSize = 7

	// TAIUTCDeltaStatusSize: delta current (2) + delta new (2) + TAI of delta change (5).
	TAIUTCDeltaStatusSize = 9

	// TimeRoleSize: role (1).
	TimeRoleSize = 1

	// MaxRecordSize is the largest host-link record.
	MaxRecordSize = TimeStateSize
)

// Role is the Time Role of a node.
type Role uint8

const (
	// RoleNone means the element does not participate in time propagation.
	RoleNone Role = 0

	// RoleAuthority means the element publishes Time Status and may have a
	// reliable clock source.
	RoleAuthority Role = 1

	// RoleRelay means the element relays Time Status messages it receives.
	RoleRelay Role = 2

	// RoleClient means the element consumes Time Status messages.
	RoleClient Role = 3
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "None"
	case RoleAuthority:
		return "Authority"
	case RoleRelay:
		return "Relay"
	case RoleClient:
		return "Client"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// IsValid reports whether r is a defined role.
func (r Role) IsValid() bool {
	return r <= RoleClient
}

// Record is a fixed-layout host-link record.
type Record interface {
	// Size returns the encoded size in bytes.
	Size() int
	// EncodeTo writes the record fields in wire order.
	EncodeTo(w *cursor.Writer) error
	// DecodeFrom reads the record fields in wire order.
	DecodeFrom(r *cursor.Reader) error
}

// TimeState is the Time state carried by Time Set and Time Status.
type TimeState struct {
	// TAISeconds counts seconds since the TAI epoch (40 bits).
	TAISeconds uint64

	// Subsecond is the fractional second in 1/256 s units.
	Subsecond uint8

	// Uncertainty is the estimated clock uncertainty in 10 ms units.
	Uncertainty uint8

	// TimeAuthority reports whether the node has a reliable time source.
	TimeAuthority bool

	// TAIUTCDelta is the raw TAI-UTC delta (seconds + 255).
	TAIUTCDelta uint16

	// TimeZoneOffset is the raw zone offset (15-minute units + 64).
	TimeZoneOffset uint8
}

// Size implements Record.
func (s *TimeState) Size() int { return TimeStateSize }

// EncodeTo implements Record.
func (s *TimeState) EncodeTo(w *cursor.Writer) error {
	w.PutUint40(s.TAISeconds)
	w.PutUint8(s.Subsecond)
	w.PutUint8(s.Uncertainty)
	w.PutBool(s.TimeAuthority)
	w.PutUint16(s.TAIUTCDelta)
	w.PutUint8(s.TimeZoneOffset)
	return w.Err()
}

// DecodeFrom implements Record.
func (s *TimeState) DecodeFrom(r *cursor.Reader) error {
	tai := r.Uint40()
	subsecond := r.Uint8()
	uncertainty := r.Uint8()
	authority := r.Uint8()
	delta := r.Uint16()
	zone := r.Uint8()
	if err := r.Err(); err != nil {
		return err
	}
	if authority > 1 {
		return ErrInvalidAuthority
	}

	*s = TimeState{
		TAISeconds:     tai,
		Subsecond:      subsecond,
		Uncertainty:    uncertainty,
		TimeAuthority:  authority == 1,
		TAIUTCDelta:    delta,
		TimeZoneOffset: zone,
	}
	return nil
}

// TimeZoneSet schedules a new zone offset at a TAI instant.
type TimeZoneSet struct {
	OffsetNew       uint8
	TAIOfZoneChange uint64
}

// Size implements Record.
func (z *TimeZoneSet) Size() int { return TimeZoneSetSize }

// EncodeTo implements Record.
func (z *TimeZoneSet) EncodeTo(w *cursor.Writer) error {
	w.PutUint8(z.OffsetNew)
	w.PutUint40(z.TAIOfZoneChange)
	return w.Err()
}

// DecodeFrom implements Record.
func (z *TimeZoneSet) DecodeFrom(r *cursor.Reader) error {
	offsetNew := r.Uint8()
	tai := r.Uint40()
	if err := r.Err(); err != nil {
		return err
	}
	*z = TimeZoneSet{OffsetNew: offsetNew, TAIOfZoneChange: tai}
	return nil
}

// TimeZoneStatus reports the current zone offset and any scheduled change.
type TimeZoneStatus struct {
	OffsetCurrent   uint8
	OffsetNew       uint8
	TAIOfZoneChange uint64
}

// Size implements Record.
func (z *TimeZoneStatus) Size() int { return TimeZoneStatusSize }

// EncodeTo implements Record.
func (z *TimeZoneStatus) EncodeTo(w *cursor.Writer) error {
	w.PutUint8(z.OffsetCurrent)
	w.PutUint8(z.OffsetNew)
	w.PutUint40(z.TAIOfZoneChange)
	return w.Err()
}

// DecodeFrom implements Record.
func (z *TimeZoneStatus) DecodeFrom(r *cursor.Reader) error {
	current := r.Uint8()
	offsetNew := r.Uint8()
	tai := r.Uint40()
	if err := r.Err(); err != nil {
		return err
	}
	*z = TimeZoneStatus{OffsetCurrent: current, OffsetNew: offsetNew, TAIOfZoneChange: tai}
	return nil
}

// TAIUTCDeltaSet schedules a new TAI-UTC delta at a TAI instant.
type TAIUTCDeltaSet struct {
	DeltaNew         uint16
	TAIOfDeltaChange uint64
}

// Size implements Record.
func (d *TAIUTCDeltaSet) Size() int { return TAIUTCDeltaSetSize }

// EncodeTo implements Record.
func (d *TAIUTCDeltaSet) EncodeTo(w *cursor.Writer) error {
	w.PutUint16(d.DeltaNew)
	w.PutUint40(d.TAIOfDeltaChange)
	return w.Err()
}

// DecodeFrom implements Record.
func (d *TAIUTCDeltaSet) DecodeFrom(r *cursor.Reader) error {
	deltaNew := r.Uint16()
	tai := r.Uint40()
	if err := r.Err(); err != nil {
		return err
	}
	*d = TAIUTCDeltaSet{DeltaNew: deltaNew, TAIOfDeltaChange: tai}
	return nil
}

// TAIUTCDeltaStatus reports the current TAI-UTC delta and any scheduled change.
type TAIUTCDeltaStatus struct {
	DeltaCurrent     uint16
	DeltaNew         uint16
	TAIOfDeltaChange uint64
}

// Size implements Record.
func (d *TAIUTCDeltaStatus) Size() int { return TAIUTCDeltaStatusSize }

// EncodeTo implements Record.
func (d *TAIUTCDeltaStatus) EncodeTo(w *cursor.Writer) error {
	w.PutUint16(d.DeltaCurrent)
	w.PutUint16(d.DeltaNew)
	w.PutUint40(d.TAIOfDeltaChange)
	return w.Err()
}

// DecodeFrom implements Record.
func (d *TAIUTCDeltaStatus) DecodeFrom(r *cursor.Reader) error {
	current := r.Uint16()
	deltaNew := r.Uint16()
	tai := r.Uint40()
	if err := r.Err(); err != nil {
		return err
	}
	*d = TAIUTCDeltaStatus{DeltaCurrent: current, DeltaNew: deltaNew, TAIOfDeltaChange: tai}
	return nil
}

// TimeRoleMsg carries a Time Role (Set and Status share the layout).
type TimeRoleMsg struct {
	Role Role
}

// Size implements Record.
func (m *TimeRoleMsg) Size() int { return TimeRoleSize }

// EncodeTo implements Record.
func (m *TimeRoleMsg) EncodeTo(w *cursor.Writer) error {
	w.PutUint8(uint8(m.Role))
	return w.Err()
}

// DecodeFrom implements Record.
func (m *TimeRoleMsg) DecodeFrom(r *cursor.Reader) error {
	role := Role(r.Uint8())
	if err := r.Err(); err != nil {
		return err
	}
	if !role.IsValid() {
		return ErrInvalidRole
	}
	m.Role = role
	return nil
}

// Marshal encodes rec into a new buffer of exactly rec.Size() bytes.
func Marshal(rec Record) ([]byte, error) {
	buf := make([]byte, rec.Size())
	w := cursor.NewWriter(buf)
	if err := rec.EncodeTo(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes data into rec. data must be exactly rec.Size() bytes.
func Unmarshal(data []byte, rec Record) error {
	if len(data) != rec.Size() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrRecordLength, len(data), rec.Size())
	}
	return rec.DecodeFrom(cursor.NewReader(data))
}

// Verify the records implement Record.
var (
	_ Record = (*TimeState)(nil)
	_ Record = (*TimeZoneSet)(nil)
	_ Record = (*TimeZoneStatus)(nil)
	_ Record = (*TAIUTCDeltaSet)(nil)
	_ Record = (*TAIUTCDeltaStatus)(nil)
	_ Record = (*TimeRoleMsg)(nil)
)
