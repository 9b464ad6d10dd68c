package meshsim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
	"github.com/pion/logging"
)

// StackConfig configures a Stack.
type StackConfig struct {
	// Server answers every request.
	// Required.
	Server *Server

	// PublishAddress is the source reported for unsolicited Time Status
	// messages (default: 0x0001).
	PublishAddress uint16

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Stack is a simulated local mesh node hosting one Time Client model.
type Stack struct {
	server     *Server
	publishSrc uint16
	log        logging.LeveledLogger

	mu          sync.Mutex
	handler     mesh.StatusHandler
	provisioned bool

	outstanding atomic.Int64
}

// NewStack creates a Stack.
func NewStack(config StackConfig) (*Stack, error) {
	if config.Server == nil {
		return nil, ErrNoServer
	}
	if config.PublishAddress == 0 {
		config.PublishAddress = 0x0001
	}

	s := &Stack{
		server:     config.Server,
		publishSrc: config.PublishAddress,
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("meshsim")
	}
	return s, nil
}

// RegisterTimeClient implements mesh.Registrar.
func (s *Stack) RegisterTimeClient(handler mesh.StatusHandler, provisioned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
	s.provisioned = provisioned
	return nil
}

// SetProvisioned changes the provisioning state of the node.
func (s *Stack) SetProvisioned(provisioned bool) {
	s.mu.Lock()
	s.provisioned = provisioned
	s.mu.Unlock()
}

// Outstanding returns the number of delivered events not yet released.
func (s *Stack) Outstanding() int {
	return int(s.outstanding.Load())
}

// TimeGet sends a Time Get.
func (s *Stack) TimeGet(req *mesh.Request) error {
	return s.send(req, timemodel.OpcodeTimeGet, nil)
}

// TimeSet sends a Time Set.
func (s *Stack) TimeSet(req *mesh.Request, st *timemodel.TimeState) error {
	params, err := st.MarshalParams()
	if err != nil {
		return err
	}
	return s.send(req, timemodel.OpcodeTimeSet, params)
}

// TimeZoneGet sends a Time Zone Get.
func (s *Stack) TimeZoneGet(req *mesh.Request) error {
	return s.send(req, timemodel.OpcodeTimeZoneGet, nil)
}

// TimeZoneSet sends a Time Zone Set.
func (s *Stack) TimeZoneSet(req *mesh.Request, z *timemodel.TimeZoneSet) error {
	params, err := z.MarshalParams()
	if err != nil {
		return err
	}
	return s.send(req, timemodel.OpcodeTimeZoneSet, params)
}

// TAIUTCDeltaGet sends a TAI-UTC Delta Get.
func (s *Stack) TAIUTCDeltaGet(req *mesh.Request) error {
	return s.send(req, timemodel.OpcodeTAIUTCDeltaGet, nil)
}

// TAIUTCDeltaSet sends a TAI-UTC Delta Set.
func (s *Stack) TAIUTCDeltaSet(req *mesh.Request, d *timemodel.TAIUTCDeltaSet) error {
	params, err := d.MarshalParams()
	if err != nil {
		return err
	}
	return s.send(req, timemodel.OpcodeTAIUTCDeltaSet, params)
}

// TimeRoleGet sends a Time Role Get.
func (s *Stack) TimeRoleGet(req *mesh.Request) error {
	return s.send(req, timemodel.OpcodeTimeRoleGet, nil)
}

// TimeRoleSet sends a Time Role Set.
func (s *Stack) TimeRoleSet(req *mesh.Request, m *timemodel.TimeRoleMsg) error {
	params, err := m.MarshalParams()
	if err != nil {
		return err
	}
	return s.send(req, timemodel.OpcodeTimeRoleSet, params)
}

// PublishTime delivers an unsolicited Time Status from the server, as a
// Time Authority publishes it.
func (s *Stack) PublishTime() error {
	handler, err := s.ready()
	if err != nil {
		return err
	}
	status, err := s.server.TimeStatus()
	if err != nil {
		return err
	}
	return s.deliver(handler, mesh.EventHeader{Source: s.publishSrc}, status)
}

// Run publishes Time Status every interval until ctx is done.
func (s *Stack) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.PublishTime(); err != nil && s.log != nil {
				s.log.Warnf("publish time: %v", err)
			}
		}
	}
}

func (s *Stack) ready() (mesh.StatusHandler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler == nil {
		return nil, mesh.ErrNotRegistered
	}
	if !s.provisioned {
		return nil, mesh.ErrNotProvisioned
	}
	return s.handler, nil
}

func (s *Stack) send(req *mesh.Request, op timemodel.Opcode, params []byte) error {
	if err := req.Validate(); err != nil {
		return err
	}
	handler, err := s.ready()
	if err != nil {
		return err
	}

	pdu, err := timemodel.EncodeAccess(op, params)
	if err != nil {
		return err
	}
	if s.log != nil {
		s.log.Debugf("%s -> %#04x app_key=%d ttl=%#02x", op, req.Destination, req.AppKeyIndex, req.TTL)
	}

	status, err := s.server.Handle(pdu)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hdr := mesh.EventHeader{
		Source:       req.Destination,
		AppKeyIndex:  req.AppKeyIndex,
		ElementIndex: req.ElementIndex,
	}
	return s.deliver(handler, hdr, status)
}

// deliver decodes a status PDU and hands it to the handler.
func (s *Stack) deliver(handler mesh.StatusHandler, hdr mesh.EventHeader, pdu []byte) error {
	op, params, err := timemodel.DecodeAccess(pdu)
	if err != nil {
		return err
	}
	rec, err := decodeStatus(op, params)
	if err != nil {
		return err
	}

	s.outstanding.Add(1)
	ev := &event{hdr: hdr, stack: s}
	handler(op, ev, rec)
	return nil
}

func decodeStatus(op timemodel.Opcode, params []byte) (any, error) {
	switch op {
	case timemodel.OpcodeTimeStatus:
		var st timemodel.TimeState
		return &st, st.UnmarshalParams(params)
	case timemodel.OpcodeTimeZoneStatus:
		var z timemodel.TimeZoneStatus
		return &z, z.UnmarshalParams(params)
	case timemodel.OpcodeTAIUTCDeltaStatus:
		var d timemodel.TAIUTCDeltaStatus
		return &d, d.UnmarshalParams(params)
	case timemodel.OpcodeTimeRoleStatus:
		var m timemodel.TimeRoleMsg
		return &m, m.UnmarshalParams(params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, op)
	}
}

// event is a mesh.Event that reports its release to the stack.
type event struct {
	hdr      mesh.EventHeader
	stack    *Stack
	released atomic.Bool
}

func (e *event) Header() mesh.EventHeader { return e.hdr }

func (e *event) Release() {
	if !e.released.CompareAndSwap(false, true) {
		if e.stack.log != nil {
			e.stack.log.Warnf("event from %#04x released twice", e.hdr.Source)
		}
		return
	}
	e.stack.outstanding.Add(-1)
}

var _ mesh.Registrar = (*Stack)(nil)
