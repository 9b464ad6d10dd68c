package meshsim

import (
	"errors"
	"testing"
	"time"

	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timeclient"
	"github.com/backkem/meshtime/pkg/timemodel"
)

var _ timeclient.MeshClient = (*Stack)(nil)

// delivery records one handler invocation.
type delivery struct {
	kind timemodel.Opcode
	hdr  mesh.EventHeader
	rec  any
}

// collector is a status handler that records and releases every event.
type collector struct {
	got     []delivery
	release bool
}

func (c *collector) handle(kind timemodel.Opcode, ev mesh.Event, rec any) {
	c.got = append(c.got, delivery{kind: kind, hdr: ev.Header(), rec: rec})
	if c.release {
		ev.Release()
	}
}

func newTestStack(t *testing.T) (*Stack, *collector) {
	t.Helper()
	srv := newTestServer(t, &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	s, err := NewStack(StackConfig{Server: srv})
	if err != nil {
		t.Fatalf("NewStack() error: %v", err)
	}
	c := &collector{release: true}
	if err := s.RegisterTimeClient(c.handle, true); err != nil {
		t.Fatalf("RegisterTimeClient() error: %v", err)
	}
	return s, c
}

func testRequest() *mesh.Request {
	return &mesh.Request{Destination: 0x0042, AppKeyIndex: 1, ElementIndex: 0, TTL: mesh.DefaultTTL}
}

func TestStackRequests(t *testing.T) {
	tests := []struct {
		name string
		send func(s *Stack) error
		kind timemodel.Opcode
		want any
	}{
		{
			name: "TimeGet",
			send: func(s *Stack) error { return s.TimeGet(testRequest()) },
			kind: timemodel.OpcodeTimeStatus,
			want: &timemodel.TimeState{},
		},
		{
			name: "TimeSet",
			send: func(s *Stack) error {
				return s.TimeSet(testRequest(), &timemodel.TimeState{TAISeconds: 42, TimeAuthority: true, TAIUTCDelta: 292, TimeZoneOffset: 64})
			},
			kind: timemodel.OpcodeTimeStatus,
			want: &timemodel.TimeState{TAISeconds: 42, TimeAuthority: true, TAIUTCDelta: 292, TimeZoneOffset: 64},
		},
		{
			name: "TimeZoneGet",
			send: func(s *Stack) error { return s.TimeZoneGet(testRequest()) },
			kind: timemodel.OpcodeTimeZoneStatus,
			want: &timemodel.TimeZoneStatus{OffsetCurrent: 64, OffsetNew: 64},
		},
		{
			name: "TimeZoneSet",
			send: func(s *Stack) error {
				return s.TimeZoneSet(testRequest(), &timemodel.TimeZoneSet{OffsetNew: 60, TAIOfZoneChange: 9000})
			},
			kind: timemodel.OpcodeTimeZoneStatus,
			want: &timemodel.TimeZoneStatus{OffsetCurrent: 64, OffsetNew: 60, TAIOfZoneChange: 9000},
		},
		{
			name: "TAIUTCDeltaGet",
			send: func(s *Stack) error { return s.TAIUTCDeltaGet(testRequest()) },
			kind: timemodel.OpcodeTAIUTCDeltaStatus,
			want: &timemodel.TAIUTCDeltaStatus{DeltaCurrent: 292, DeltaNew: 292},
		},
		{
			name: "TAIUTCDeltaSet",
			send: func(s *Stack) error {
				return s.TAIUTCDeltaSet(testRequest(), &timemodel.TAIUTCDeltaSet{DeltaNew: 293, TAIOfDeltaChange: 7000})
			},
			kind: timemodel.OpcodeTAIUTCDeltaStatus,
			want: &timemodel.TAIUTCDeltaStatus{DeltaCurrent: 292, DeltaNew: 293, TAIOfDeltaChange: 7000},
		},
		{
			name: "TimeRoleGet",
			send: func(s *Stack) error { return s.TimeRoleGet(testRequest()) },
			kind: timemodel.OpcodeTimeRoleStatus,
			want: &timemodel.TimeRoleMsg{Role: timemodel.RoleAuthority},
		},
		{
			name: "TimeRoleSet",
			send: func(s *Stack) error {
				return s.TimeRoleSet(testRequest(), &timemodel.TimeRoleMsg{Role: timemodel.RoleClient})
			},
			kind: timemodel.OpcodeTimeRoleStatus,
			want: &timemodel.TimeRoleMsg{Role: timemodel.RoleClient},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, c := newTestStack(t)
			if err := tc.send(s); err != nil {
				t.Fatalf("send error: %v", err)
			}
			if len(c.got) != 1 {
				t.Fatalf("deliveries = %d, want 1", len(c.got))
			}
			d := c.got[0]
			if d.kind != tc.kind {
				t.Errorf("kind = %s, want %s", d.kind, tc.kind)
			}
			wantHdr := mesh.EventHeader{Source: 0x0042, AppKeyIndex: 1}
			if d.hdr != wantHdr {
				t.Errorf("header = %+v, want %+v", d.hdr, wantHdr)
			}
			if !sameRecord(d.rec, tc.want) {
				t.Errorf("record = %+v, want %+v", d.rec, tc.want)
			}
			if s.Outstanding() != 0 {
				t.Errorf("Outstanding() = %d, want 0", s.Outstanding())
			}
		})
	}
}

func sameRecord(a, b any) bool {
	switch x := a.(type) {
	case *timemodel.TimeState:
		y, ok := b.(*timemodel.TimeState)
		return ok && *x == *y
	case *timemodel.TimeZoneStatus:
		y, ok := b.(*timemodel.TimeZoneStatus)
		return ok && *x == *y
	case *timemodel.TAIUTCDeltaStatus:
		y, ok := b.(*timemodel.TAIUTCDeltaStatus)
		return ok && *x == *y
	case *timemodel.TimeRoleMsg:
		y, ok := b.(*timemodel.TimeRoleMsg)
		return ok && *x == *y
	default:
		return false
	}
}

func TestStackNotReady(t *testing.T) {
	srv := newTestServer(t, &fakeClock{})
	s, err := NewStack(StackConfig{Server: srv})
	if err != nil {
		t.Fatalf("NewStack() error: %v", err)
	}

	if err := s.TimeGet(testRequest()); !errors.Is(err, mesh.ErrNotRegistered) {
		t.Errorf("TimeGet() before register error = %v, want ErrNotRegistered", err)
	}

	c := &collector{release: true}
	if err := s.RegisterTimeClient(c.handle, false); err != nil {
		t.Fatalf("RegisterTimeClient() error: %v", err)
	}
	if err := s.TimeGet(testRequest()); !errors.Is(err, mesh.ErrNotProvisioned) {
		t.Errorf("TimeGet() unprovisioned error = %v, want ErrNotProvisioned", err)
	}
	if len(c.got) != 0 {
		t.Errorf("deliveries = %d, want 0", len(c.got))
	}

	s.SetProvisioned(true)
	if err := s.TimeGet(testRequest()); err != nil {
		t.Errorf("TimeGet() provisioned error: %v", err)
	}
}

func TestStackRejectsBadRequest(t *testing.T) {
	s, c := newTestStack(t)

	req := testRequest()
	req.Destination = 0
	if err := s.TimeGet(req); !errors.Is(err, mesh.ErrInvalidDestination) {
		t.Errorf("TimeGet(dst 0) error = %v, want ErrInvalidDestination", err)
	}

	err := s.TAIUTCDeltaSet(testRequest(), &timemodel.TAIUTCDeltaSet{DeltaNew: 0x8000})
	if !errors.Is(err, timemodel.ErrDeltaOverflow) {
		t.Errorf("TAIUTCDeltaSet(0x8000) error = %v, want ErrDeltaOverflow", err)
	}

	err = s.TimeRoleSet(testRequest(), &timemodel.TimeRoleMsg{Role: 9})
	if !errors.Is(err, timemodel.ErrInvalidRole) {
		t.Errorf("TimeRoleSet(9) error = %v, want ErrInvalidRole", err)
	}

	if len(c.got) != 0 {
		t.Errorf("deliveries = %d, want 0", len(c.got))
	}
}

func TestStackOutstanding(t *testing.T) {
	s, c := newTestStack(t)
	c.release = false

	var held []mesh.Event
	if err := s.RegisterTimeClient(func(_ timemodel.Opcode, ev mesh.Event, _ any) {
		held = append(held, ev)
	}, true); err != nil {
		t.Fatalf("RegisterTimeClient() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.TimeRoleGet(testRequest()); err != nil {
			t.Fatalf("TimeRoleGet() error: %v", err)
		}
	}
	if s.Outstanding() != 3 {
		t.Fatalf("Outstanding() = %d, want 3", s.Outstanding())
	}

	held[0].Release()
	held[0].Release()
	if s.Outstanding() != 2 {
		t.Errorf("Outstanding() after double release = %d, want 2", s.Outstanding())
	}
	held[1].Release()
	held[2].Release()
	if s.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", s.Outstanding())
	}
}

func TestStackPublishTime(t *testing.T) {
	s, c := newTestStack(t)

	if err := s.PublishTime(); err != nil {
		t.Fatalf("PublishTime() error: %v", err)
	}
	if len(c.got) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(c.got))
	}
	if c.got[0].kind != timemodel.OpcodeTimeStatus {
		t.Errorf("kind = %s, want TimeStatus", c.got[0].kind)
	}
	if c.got[0].hdr.Source != 0x0001 {
		t.Errorf("source = %#04x, want 0x0001", c.got[0].hdr.Source)
	}
}

func TestStackWithClient(t *testing.T) {
	s, _ := newTestStack(t)
	sender := &eventRecorder{}
	client, err := timeclient.New(timeclient.Config{MeshClient: s, Sender: sender})
	if err != nil {
		t.Fatalf("timeclient.New() error: %v", err)
	}
	if err := client.Register(s, true); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	hdr := (&mesh.Request{Destination: 0x0042, TTL: 5}).AppendHeader(nil)
	if !client.HandleCommand(hci.CommandTimeRoleSet, append(hdr, byte(timemodel.RoleRelay))) {
		t.Fatal("HandleCommand(TimeRoleSet) = false")
	}
	if len(sender.payloads) != 1 || len(sender.payloads[0]) != 1 || sender.payloads[0][0] != 0x02 {
		t.Errorf("payloads = %x, want [02]", sender.payloads)
	}
	if s.Outstanding() != 0 {
		t.Errorf("Outstanding() = %d, want 0", s.Outstanding())
	}
}
