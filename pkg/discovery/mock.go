package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/grandcat/zeroconf"
)

// MockMDNSResolver is an MDNSResolver that serves registered entries
// without network I/O. Like zeroconf, it closes the entries channel when
// ctx is done.
type MockMDNSResolver struct {
	mu       sync.RWMutex
	services map[string][]*zeroconf.ServiceEntry
}

// NewMockMDNSResolver creates a new mock resolver.
func NewMockMDNSResolver() *MockMDNSResolver {
	return &MockMDNSResolver{
		services: make(map[string][]*zeroconf.ServiceEntry),
	}
}

// RegisterService registers a service that will be returned by Browse/Lookup.
func (m *MockMDNSResolver) RegisterService(service string, entry *zeroconf.ServiceEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service] = append(m.services[service], entry)
}

// Browse implements MDNSResolver.
func (m *MockMDNSResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	go m.serve(ctx, m.snapshot(service, ""), entries)
	return nil
}

// Lookup implements MDNSResolver.
func (m *MockMDNSResolver) Lookup(ctx context.Context, instance, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	go m.serve(ctx, m.snapshot(service, instance), entries)
	return nil
}

func (m *MockMDNSResolver) snapshot(service, instance string) []*zeroconf.ServiceEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*zeroconf.ServiceEntry
	for _, e := range m.services[service] {
		if instance == "" || e.Instance == instance {
			out = append(out, e)
		}
	}
	return out
}

func (m *MockMDNSResolver) serve(ctx context.Context, list []*zeroconf.ServiceEntry, entries chan<- *zeroconf.ServiceEntry) {
	defer close(entries)
	for _, e := range list {
		select {
		case entries <- e:
		case <-ctx.Done():
			return
		}
	}
	<-ctx.Done()
}

// MockHostLinkService creates a _meshtime._tcp entry for testing.
func MockHostLinkService(instance string, port int, ip net.IP, txt HostLinkTXT) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{
			Instance: instance,
			Service:  ServiceHostLink,
			Domain:   DefaultDomain,
		},
		HostName: instance + ".local.",
		Port:     port,
		Text:     txt.Encode(),
	}
	if ip.To4() != nil {
		entry.AddrIPv4 = []net.IP{ip}
	} else {
		entry.AddrIPv6 = []net.IP{ip}
	}
	return entry
}

// MockMDNSServerFactory records registrations instead of touching the network.
type MockMDNSServerFactory struct {
	mu            sync.Mutex
	Registrations []MockRegistration
	Err           error
}

// MockRegistration is one recorded Register call.
type MockRegistration struct {
	Instance string
	Service  string
	Domain   string
	Port     int
	Text     []string
	Server   *MockMDNSServer
}

// Register implements MDNSServerFactory.
func (f *MockMDNSServerFactory) Register(instance, service, domain string, port int, txt []string, _ []net.Interface) (MDNSServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	srv := &MockMDNSServer{}
	f.Registrations = append(f.Registrations, MockRegistration{
		Instance: instance,
		Service:  service,
		Domain:   domain,
		Port:     port,
		Text:     txt,
		Server:   srv,
	})
	return srv, nil
}

// MockMDNSServer counts Shutdown calls.
type MockMDNSServer struct {
	mu        sync.Mutex
	shutdowns int
}

// Shutdown implements MDNSServer.
func (s *MockMDNSServer) Shutdown() {
	s.mu.Lock()
	s.shutdowns++
	s.mu.Unlock()
}

// Shutdowns returns the number of Shutdown calls.
func (s *MockMDNSServer) Shutdowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdowns
}
