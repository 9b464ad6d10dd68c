package timemodel

import (
	"time"
)

// TAIEpoch is the mesh TAI epoch, 2000-01-01T00:00:00 TAI.
// TAI has no leap seconds, so TAIEpoch.Add(n * time.Second) is the TAI
// calendar label of TAI second n.
var TAIEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	// TAIUTCDeltaBias is subtracted from the raw TAI-UTC delta to get seconds.
	TAIUTCDeltaBias = 255

	// MaxTAIUTCDelta is the largest raw delta the 15-bit air field carries.
	MaxTAIUTCDelta uint16 = 0x7FFF

	// ZoneOffsetBias is subtracted from the raw zone offset to get 15-minute steps.
	ZoneOffsetBias = 64

	// ZoneOffsetStep is the unit of the zone offset.
	ZoneOffsetStep = 15 * time.Minute

	// SubsecondStep is the unit of the subsecond field.
	SubsecondStep = time.Second / 256

	// UncertaintyStep is the unit of the uncertainty field.
	UncertaintyStep = 10 * time.Millisecond
)

// UTCDeltaSeconds converts a raw TAI-UTC delta to seconds.
func UTCDeltaSeconds(raw uint16) int {
	return int(raw) - TAIUTCDeltaBias
}

// RawUTCDelta converts TAI-UTC seconds to the raw field value.
func RawUTCDelta(seconds int) uint16 {
	return uint16(seconds + TAIUTCDeltaBias)
}

// ZoneOffset converts a raw zone offset to a duration east of UTC.
func ZoneOffset(raw uint8) time.Duration {
	return time.Duration(int(raw)-ZoneOffsetBias) * ZoneOffsetStep
}

// RawZoneOffset converts a duration east of UTC to the raw field value,
// rounding toward zero to a 15-minute step.
func RawZoneOffset(d time.Duration) uint8 {
	return uint8(int(d/ZoneOffsetStep) + ZoneOffsetBias)
}

// UncertaintyDuration returns the uncertainty as a duration.
func (s *TimeState) UncertaintyDuration() time.Duration {
	return time.Duration(s.Uncertainty) * UncertaintyStep
}

// UTC returns the UTC instant described by the state.
// A zero TAISeconds means the time is unknown and yields the zero time.
func (s *TimeState) UTC() time.Time {
	if s.TAISeconds == 0 {
		return time.Time{}
	}
	sec := TAIEpoch.Unix() + int64(s.TAISeconds) - int64(UTCDeltaSeconds(s.TAIUTCDelta))
	nsec := int64(s.Subsecond) * int64(SubsecondStep)
	return time.Unix(sec, nsec).UTC()
}

// Local returns the state as local time in the zone carried by the state.
func (s *TimeState) Local() time.Time {
	t := s.UTC()
	if t.IsZero() {
		return t
	}
	offset := ZoneOffset(s.TimeZoneOffset)
	return t.In(time.FixedZone("", int(offset/time.Second)))
}

// TimeStateAt builds a TimeState for the UTC instant t with the given raw
// TAI-UTC delta and zone offset. Instants before the TAI epoch clamp to 0.
func TimeStateAt(t time.Time, rawDelta uint16, rawZone uint8) TimeState {
	sec := t.Unix() - TAIEpoch.Unix() + int64(UTCDeltaSeconds(rawDelta))
	if sec < 0 {
		return TimeState{TAIUTCDelta: rawDelta, TimeZoneOffset: rawZone}
	}
	return TimeState{
		TAISeconds:     uint64(sec),
		Subsecond:      uint8(time.Duration(t.Nanosecond()) / SubsecondStep),
		TAIUTCDelta:    rawDelta,
		TimeZoneOffset: rawZone,
	}
}
