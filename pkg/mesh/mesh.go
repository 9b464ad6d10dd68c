// Package mesh defines the boundary between the Time client codec layer and
// the surrounding mesh stack.
//
// A Request is the outbound context built from a host command header: it
// names the destination element, the application key and the transport
// options for one send. An Event is the inbound context delivered with a
// status message; it is borrowed for one dispatch and must be released
// exactly once.
package mesh

import (
	"github.com/backkem/meshtime/pkg/timemodel"
)

// Company identifiers.
const (
	// CompanyIDBluetoothSIG marks SIG-defined models such as the Time Client.
	CompanyIDBluetoothSIG uint16 = 0x0000

	// CompanyIDCypress is the default device vendor in the composition data
	// and the DNS-SD TXT record.
	CompanyIDCypress uint16 = 0x0131
)

// Time model identifiers (Mesh Model Specification Section 7.3).
const (
	ModelIDTimeServer      uint16 = 0x1200
	ModelIDTimeSetupServer uint16 = 0x1201
	ModelIDTimeClient      uint16 = 0x1202
)

// StatusHandler receives a parsed status message from the mesh stack.
// kind is the status opcode and rec points to the matching timemodel
// record. The handler owns ev and must release it before returning.
type StatusHandler func(kind timemodel.Opcode, ev Event, rec any)

// Event is the context of one inbound mesh message.
type Event interface {
	// Header returns the addressing information forwarded to the host.
	Header() EventHeader
	// Release returns the event to the stack.
	Release()
}

// Registrar is implemented by mesh stacks that host a Time Client model.
type Registrar interface {
	// RegisterTimeClient installs the status handler. An unprovisioned
	// node registers but cannot send until provisioned.
	RegisterTimeClient(handler StatusHandler, provisioned bool) error
}
