// Package config loads the bridge configuration from YAML.
//
// A missing field keeps its value from Default, so a file only needs to
// name what it changes.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/backkem/meshtime/pkg/hci"
	"github.com/backkem/meshtime/pkg/mesh"
	"github.com/backkem/meshtime/pkg/timemodel"
	"gopkg.in/yaml.v3"
)

// Host link modes.
const (
	ModeTCP    = "tcp"
	ModeSerial = "serial"
)

// Config is the top-level configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Mesh      MeshConfig      `yaml:"mesh"`
	HostLink  HostLinkConfig  `yaml:"hostLink"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies the bridge to hosts.
type DeviceConfig struct {
	Name string `yaml:"name"`

	// CompanyID is the advertised device vendor. Mesh requests always
	// carry the SIG company of the Time Client model.
	CompanyID uint16 `yaml:"companyID"`
	ProductID uint16 `yaml:"productID"`
	VersionID uint16 `yaml:"versionID"`
}

// MeshConfig configures the mesh side.
type MeshConfig struct {
	// Provisioned registers the Time Client as provisioned.
	Provisioned bool `yaml:"provisioned"`

	Simulator SimulatorConfig `yaml:"simulator"`
}

// SimulatorConfig sets the initial state of the simulated Time Server.
type SimulatorConfig struct {
	Enabled bool `yaml:"enabled"`

	// Role is one of none, authority, relay, client.
	Role string `yaml:"role"`

	// Uncertainty in 10 ms units.
	Uncertainty uint8 `yaml:"uncertainty"`

	// TAIUTCDelta is the raw delta (seconds + 255).
	TAIUTCDelta uint16 `yaml:"taiUtcDelta"`

	// ZoneOffset is the raw offset (15-minute steps + 64).
	ZoneOffset uint8 `yaml:"zoneOffset"`

	// SyncClock starts the server at the local wall-clock time instead of
	// an unknown time.
	SyncClock bool `yaml:"syncClock"`

	// PublishInterval enables periodic Time Status publication when > 0.
	PublishInterval time.Duration `yaml:"publishInterval"`
}

// HostLinkConfig configures the host control link.
type HostLinkConfig struct {
	Mode         string        `yaml:"mode"`
	ListenAddr   string        `yaml:"listenAddr"`
	SerialPort   string        `yaml:"serialPort"`
	BaudRate     int           `yaml:"baudRate"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// DiscoveryConfig configures DNS-SD advertisement of the TCP host link.
type DiscoveryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

// LoggingConfig sets log levels.
type LoggingConfig struct {
	// Level is the default level: disable, error, warn, info, debug, trace.
	Level string `yaml:"level"`

	// Scopes overrides the level per logger scope.
	Scopes map[string]string `yaml:"scopes"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:      "Time Client",
			CompanyID: mesh.CompanyIDCypress,
			ProductID: 0x3023,
			VersionID: 0x0002,
		},
		Mesh: MeshConfig{
			Provisioned: true,
			Simulator: SimulatorConfig{
				Enabled:     true,
				Role:        "authority",
				TAIUTCDelta: timemodel.RawUTCDelta(37),
				ZoneOffset:  timemodel.ZoneOffsetBias,
				SyncClock:   true,
			},
		},
		HostLink: HostLinkConfig{
			Mode:         ModeTCP,
			ListenAddr:   ":5541",
			BaudRate:     115200,
			WriteTimeout: hci.DefaultWriteTimeout,
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks field ranges and combinations.
func (c *Config) Validate() error {
	switch c.HostLink.Mode {
	case ModeTCP:
	case ModeSerial:
		if c.HostLink.SerialPort == "" {
			return ErrMissingSerialPort
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.HostLink.Mode)
	}
	if c.HostLink.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidValue, c.HostLink.BaudRate)
	}

	if _, err := c.Mesh.Simulator.TimeRole(); err != nil {
		return err
	}
	if c.Mesh.Simulator.TAIUTCDelta > timemodel.MaxTAIUTCDelta {
		return fmt.Errorf("%w: TAI-UTC delta %#x", ErrInvalidValue, c.Mesh.Simulator.TAIUTCDelta)
	}
	if c.Mesh.Simulator.PublishInterval < 0 {
		return fmt.Errorf("%w: publish interval %s", ErrInvalidValue, c.Mesh.Simulator.PublishInterval)
	}

	if _, err := c.Logging.LoggerFactory(); err != nil {
		return err
	}
	return nil
}

// InstanceName returns the DNS-SD instance name, defaulting to the device name.
func (c *Config) InstanceName() string {
	if c.Discovery.Instance != "" {
		return c.Discovery.Instance
	}
	return c.Device.Name
}

// TimeRole returns the configured role.
func (s SimulatorConfig) TimeRole() (timemodel.Role, error) {
	return ParseRole(s.Role)
}

// ParseRole parses a role name, case-insensitively.
func ParseRole(name string) (timemodel.Role, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return timemodel.RoleNone, nil
	case "authority":
		return timemodel.RoleAuthority, nil
	case "relay":
		return timemodel.RoleRelay, nil
	case "client":
		return timemodel.RoleClient, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, name)
	}
}
