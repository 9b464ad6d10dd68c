package timeclient

import (
	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
)

// meshCall records one outbound request.
type meshCall struct {
	name string
	req  *mesh.Request
	rec  any
}

// recordingMesh is a MeshClient that records every send.
type recordingMesh struct {
	calls []meshCall
	err   error
}

func (m *recordingMesh) record(name string, req *mesh.Request, rec any) error {
	m.calls = append(m.calls, meshCall{name: name, req: req, rec: rec})
	return m.err
}

func (m *recordingMesh) TimeGet(req *mesh.Request) error { return m.record("TimeGet", req, nil) }
func (m *recordingMesh) TimeSet(req *mesh.Request, s *timemodel.TimeState) error {
	return m.record("TimeSet", req, s)
}
func (m *recordingMesh) TimeZoneGet(req *mesh.Request) error {
	return m.record("TimeZoneGet", req, nil)
}
func (m *recordingMesh) TimeZoneSet(req *mesh.Request, z *timemodel.TimeZoneSet) error {
	return m.record("TimeZoneSet", req, z)
}
func (m *recordingMesh) TAIUTCDeltaGet(req *mesh.Request) error {
	return m.record("TAIUTCDeltaGet", req, nil)
}
func (m *recordingMesh) TAIUTCDeltaSet(req *mesh.Request, d *timemodel.TAIUTCDeltaSet) error {
	return m.record("TAIUTCDeltaSet", req, d)
}
func (m *recordingMesh) TimeRoleGet(req *mesh.Request) error {
	return m.record("TimeRoleGet", req, nil)
}
func (m *recordingMesh) TimeRoleSet(req *mesh.Request, r *timemodel.TimeRoleMsg) error {
	return m.record("TimeRoleSet", req, r)
}

// sentEvent records one event handed to the host link.
type sentEvent struct {
	code    hci.EventCode
	hdr     mesh.EventHeader
	payload []byte
}

// recordingSender is an EventSender that records every event.
type recordingSender struct {
	events []sentEvent
}

func (s *recordingSender) SendEvent(code hci.EventCode, hdr mesh.EventHeader, payload []byte) error {
	s.events = append(s.events, sentEvent{code: code, hdr: hdr, payload: append([]byte(nil), payload...)})
	return nil
}

// countingEvent is a mesh.Event that counts releases.
type countingEvent struct {
	hdr      mesh.EventHeader
	releases int
	headers  int
}

func (e *countingEvent) Header() mesh.EventHeader {
	e.headers++
	return e.hdr
}

func (e *countingEvent) Release() { e.releases++ }

// recordingRegistrar is a mesh.Registrar that keeps the handler.
type recordingRegistrar struct {
	handler     mesh.StatusHandler
	provisioned bool
}

func (r *recordingRegistrar) RegisterTimeClient(h mesh.StatusHandler, provisioned bool) error {
	r.handler = h
	r.provisioned = provisioned
	return nil
}

// testHeader is a valid request header: dst 0x0002, app key 0, TTL 5.
var testHeader = []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00}

func withHeader(payload ...byte) []byte {
	return append(append([]byte(nil), testHeader...), payload...)
}

func newTestClient(m *recordingMesh, s *recordingSender) *Client {
	c, err := New(Config{MeshClient: m, Sender: s})
	if err != nil {
		panic(err)
	}
	return c
}
