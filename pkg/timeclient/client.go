// Package timeclient bridges host commands and mesh Time model messages.
//
// Downlink, a host command is checked against the Time command family,
// turned into a mesh request context and routed to one of eight request
// builders. Set builders decode the fixed-layout record from the command
// payload before sending.
//
// Uplink, a status from the mesh stack is routed by kind to one of four
// status encoders, which write the record in the same layout and hand it
// to the host link.
//
// Both paths are synchronous and keep no state between calls.
package timeclient

import (
	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
	"github.com/pion/logging"
)

// MeshClient sends Time Client requests through the mesh stack.
type MeshClient interface {
	TimeGet(req *mesh.Request) error
	TimeSet(req *mesh.Request, s *timemodel.TimeState) error
	TimeZoneGet(req *mesh.Request) error
	TimeZoneSet(req *mesh.Request, z *timemodel.TimeZoneSet) error
	TAIUTCDeltaGet(req *mesh.Request) error
	TAIUTCDeltaSet(req *mesh.Request, d *timemodel.TAIUTCDeltaSet) error
	TimeRoleGet(req *mesh.Request) error
	TimeRoleSet(req *mesh.Request, r *timemodel.TimeRoleMsg) error
}

// EventSender forwards status events to the host.
type EventSender interface {
	SendEvent(code hci.EventCode, hdr mesh.EventHeader, payload []byte) error
}

// ContextBuilder builds the mesh request context for a host command and
// returns the payload that follows the header.
type ContextBuilder func(opcode, companyID, modelID uint16, data []byte) (*mesh.Request, []byte, error)

// Config configures a Client.
type Config struct {
	// MeshClient sends outbound requests.
	// Required.
	MeshClient MeshClient

	// Sender delivers status events to the host.
	// Required.
	Sender EventSender

	// ContextBuilder defaults to mesh.ParseRequest.
	ContextBuilder ContextBuilder

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Client is the Time client codec and dispatch layer.
type Client struct {
	mesh         MeshClient
	sender       EventSender
	companyID    uint16
	modelID      uint16
	buildContext ContextBuilder
	log          logging.LeveledLogger
}

// New creates a Client with the given configuration.
func New(config Config) (*Client, error) {
	if config.MeshClient == nil {
		return nil, ErrNoMeshClient
	}
	if config.Sender == nil {
		return nil, ErrNoSender
	}
	if config.ContextBuilder == nil {
		config.ContextBuilder = mesh.ParseRequest
	}

	c := &Client{
		mesh:         config.MeshClient,
		sender:       config.Sender,
		companyID:    mesh.CompanyIDBluetoothSIG,
		modelID:      mesh.ModelIDTimeClient,
		buildContext: config.ContextBuilder,
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("timeclient")
	}
	return c, nil
}

// Model returns the company and model identifiers placed in every request
// context. They name the SIG Time Client model and do not depend on the
// identity the device advertises.
func (c *Client) Model() (companyID, modelID uint16) {
	return c.companyID, c.modelID
}

// Register installs the client's status handler on the mesh stack.
func (c *Client) Register(stack mesh.Registrar, provisioned bool) error {
	if c.log != nil {
		c.log.Infof("registering time client (provisioned=%v)", provisioned)
	}
	return stack.RegisterTimeClient(c.HandleStatus, provisioned)
}

var _ hci.CommandHandler = (*Client)(nil)
