package meshsim

import (
	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
)

// eventRecorder is a timeclient.EventSender that keeps payloads.
type eventRecorder struct {
	codes    []hci.EventCode
	payloads [][]byte
}

func (r *eventRecorder) SendEvent(code hci.EventCode, _ mesh.EventHeader, payload []byte) error {
	r.codes = append(r.codes, code)
	r.payloads = append(r.payloads, append([]byte(nil), payload...))
	return nil
}
