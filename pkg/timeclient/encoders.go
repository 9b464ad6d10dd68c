package timeclient

import (
	"github.com/backkem/meshtime/pkg/cursor"
	"github.com/backkem/meshtime/pkg/timemodel"
)

// The status encoders write a record into buf in the layout the Set
// builders read and return the number of bytes written. buf must hold at
// least the record size; timemodel.MaxRecordSize fits every record.

// EncodeTimeStatus encodes a Time Status record.
func EncodeTimeStatus(buf []byte, s *timemodel.TimeState) (int, error) {
	return encodeRecord(buf, s)
}

// EncodeTimeZoneStatus encodes a Time Zone Status record.
func EncodeTimeZoneStatus(buf []byte, z *timemodel.TimeZoneStatus) (int, error) {
	return encodeRecord(buf, z)
}

// EncodeTAIUTCDeltaStatus encodes a TAI-UTC Delta Status record.
func EncodeTAIUTCDeltaStatus(buf []byte, d *timemodel.TAIUTCDeltaStatus) (int, error) {
	return encodeRecord(buf, d)
}

// EncodeTimeRoleStatus encodes a Time Role Status record.
func EncodeTimeRoleStatus(buf []byte, r *timemodel.TimeRoleMsg) (int, error) {
	return encodeRecord(buf, r)
}

func encodeRecord(buf []byte, rec timemodel.Record) (int, error) {
	w := cursor.NewWriter(buf)
	if err := rec.EncodeTo(w); err != nil {
		return 0, err
	}
	return w.Len(), nil
}
