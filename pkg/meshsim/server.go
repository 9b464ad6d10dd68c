// Package meshsim is an in-process stand-in for a Bluetooth mesh stack.
//
// A Server plays the Time Server and Time Setup Server models of a remote
// node: it consumes access PDUs and answers with status PDUs. A Stack plays
// the local node hosting the Time Client: it turns requests into access
// PDUs, runs them against the Server, decodes the replies and hands them to
// the registered status handler.
package meshsim

import (
	"fmt"
	"sync"
	"time"

	"github.com/backkem/meshtime/pkg/timemodel"
	"github.com/pion/logging"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// Now returns the current wall-clock time (default: time.Now).
	Now func() time.Time

	// Time is the initial UTC time. The zero value leaves the time unknown
	// until a Time Set arrives.
	Time time.Time

	Role        timemodel.Role
	Uncertainty uint8
	Authority   bool

	// TAIUTCDelta is the raw current TAI-UTC delta.
	TAIUTCDelta uint16

	// ZoneOffset is the raw current zone offset.
	ZoneOffset uint8

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Server holds the Time state of a simulated remote node.
type Server struct {
	mu  sync.Mutex
	now func() time.Time
	log logging.LeveledLogger

	// base is the Time state last set, valid at baseAt.
	base   timemodel.TimeState
	baseAt time.Time

	role timemodel.Role

	zoneCurrent uint8
	zoneNew     uint8
	zoneChange  uint64

	deltaCurrent uint16
	deltaNew     uint16
	deltaChange  uint64
}

// NewServer creates a Server.
func NewServer(config ServerConfig) (*Server, error) {
	if !config.Role.IsValid() {
		return nil, fmt.Errorf("%w: %d", timemodel.ErrInvalidRole, config.Role)
	}
	if config.TAIUTCDelta > timemodel.MaxTAIUTCDelta {
		return nil, timemodel.ErrDeltaOverflow
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Server{
		now:          config.Now,
		role:         config.Role,
		zoneCurrent:  config.ZoneOffset,
		zoneNew:      config.ZoneOffset,
		deltaCurrent: config.TAIUTCDelta,
		deltaNew:     config.TAIUTCDelta,
	}
	s.baseAt = s.now()
	if !config.Time.IsZero() {
		s.base = timemodel.TimeStateAt(config.Time, config.TAIUTCDelta, config.ZoneOffset)
		s.baseAt = config.Time
	}
	s.base.Uncertainty = config.Uncertainty
	s.base.TimeAuthority = config.Authority

	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("meshsim")
	}
	return s, nil
}

// Handle processes one access PDU and returns the status PDU to send back.
func (s *Server) Handle(pdu []byte) ([]byte, error) {
	op, params, err := timemodel.DecodeAccess(pdu)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.log != nil {
		s.log.Debugf("server: %s (%d octets)", op, len(params))
	}

	switch op {
	case timemodel.OpcodeTimeGet:
		return s.timeStatus()

	case timemodel.OpcodeTimeSet:
		var st timemodel.TimeState
		if err := st.UnmarshalParams(params); err != nil {
			return nil, err
		}
		s.setTime(st)
		return s.timeStatus()

	case timemodel.OpcodeTimeZoneGet:
		return s.zoneStatus()

	case timemodel.OpcodeTimeZoneSet:
		var z timemodel.TimeZoneSet
		if err := z.UnmarshalParams(params); err != nil {
			return nil, err
		}
		s.zoneNew = z.OffsetNew
		s.zoneChange = z.TAIOfZoneChange
		return s.zoneStatus()

	case timemodel.OpcodeTAIUTCDeltaGet:
		return s.deltaStatus()

	case timemodel.OpcodeTAIUTCDeltaSet:
		var d timemodel.TAIUTCDeltaSet
		if err := d.UnmarshalParams(params); err != nil {
			return nil, err
		}
		s.deltaNew = d.DeltaNew
		s.deltaChange = d.TAIOfDeltaChange
		return s.deltaStatus()

	case timemodel.OpcodeTimeRoleGet:
		return s.roleStatus()

	case timemodel.OpcodeTimeRoleSet:
		var m timemodel.TimeRoleMsg
		if err := m.UnmarshalParams(params); err != nil {
			return nil, err
		}
		s.role = m.Role
		return s.roleStatus()

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMessage, op)
	}
}

// TimeStatus returns an unsolicited Time Status PDU, as published by the
// server.
func (s *Server) TimeStatus() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeStatus()
}

// Snapshot returns the current Time state.
func (s *Server) Snapshot() timemodel.TimeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Role returns the current Time Role.
func (s *Server) Role() timemodel.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Server) setTime(st timemodel.TimeState) {
	s.base = st
	s.baseAt = s.now()
	s.deltaCurrent = st.TAIUTCDelta
	s.zoneCurrent = st.TimeZoneOffset
	if s.log != nil {
		s.log.Infof("server: time set to tai=%d delta=%d zone=%d", st.TAISeconds, st.TAIUTCDelta, st.TimeZoneOffset)
	}
}

// current advances the base state to now and applies any scheduled zone or
// delta change that has come due. Must be called with s.mu held.
func (s *Server) current() timemodel.TimeState {
	st := s.base
	if st.TAISeconds != 0 {
		elapsed := s.now().Sub(s.baseAt)
		if elapsed > 0 {
			ticks := uint64(st.Subsecond) + uint64(elapsed/timemodel.SubsecondStep)
			st.TAISeconds += ticks / 256
			st.Subsecond = uint8(ticks % 256)
		}
		s.applyScheduled(st.TAISeconds)
	}
	st.TAIUTCDelta = s.deltaCurrent
	st.TimeZoneOffset = s.zoneCurrent
	return st
}

func (s *Server) applyScheduled(tai uint64) {
	if s.zoneChange != 0 && tai >= s.zoneChange {
		if s.log != nil {
			s.log.Infof("server: zone offset %d -> %d", s.zoneCurrent, s.zoneNew)
		}
		s.zoneCurrent = s.zoneNew
		s.zoneChange = 0
	}
	if s.deltaChange != 0 && tai >= s.deltaChange {
		if s.log != nil {
			s.log.Infof("server: TAI-UTC delta %d -> %d", s.deltaCurrent, s.deltaNew)
		}
		s.deltaCurrent = s.deltaNew
		s.deltaChange = 0
	}
}

func (s *Server) timeStatus() ([]byte, error) {
	st := s.current()
	params, err := st.MarshalStatusParams()
	if err != nil {
		return nil, err
	}
	return timemodel.EncodeAccess(timemodel.OpcodeTimeStatus, params)
}

func (s *Server) zoneStatus() ([]byte, error) {
	s.current()
	z := timemodel.TimeZoneStatus{
		OffsetCurrent:   s.zoneCurrent,
		OffsetNew:       s.zoneNew,
		TAIOfZoneChange: s.zoneChange,
	}
	params, err := z.MarshalParams()
	if err != nil {
		return nil, err
	}
	return timemodel.EncodeAccess(timemodel.OpcodeTimeZoneStatus, params)
}

func (s *Server) deltaStatus() ([]byte, error) {
	s.current()
	d := timemodel.TAIUTCDeltaStatus{
		DeltaCurrent:     s.deltaCurrent,
		DeltaNew:         s.deltaNew,
		TAIOfDeltaChange: s.deltaChange,
	}
	params, err := d.MarshalParams()
	if err != nil {
		return nil, err
	}
	return timemodel.EncodeAccess(timemodel.OpcodeTAIUTCDeltaStatus, params)
}

func (s *Server) roleStatus() ([]byte, error) {
	m := timemodel.TimeRoleMsg{Role: s.role}
	params, err := m.MarshalParams()
	if err != nil {
		return nil, err
	}
	return timemodel.EncodeAccess(timemodel.OpcodeTimeRoleStatus, params)
}
