package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func newMockResolver(t *testing.T) (*Resolver, *MockMDNSResolver) {
	t.Helper()
	mock := NewMockMDNSResolver()
	r, err := NewResolver(ResolverConfig{
		MDNSResolver:  mock,
		BrowseTimeout: 200 * time.Millisecond,
		LookupTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewResolver() error: %v", err)
	}
	return r, mock
}

func TestResolverBrowse(t *testing.T) {
	r, mock := newMockResolver(t)
	mock.RegisterService(ServiceHostLink, MockHostLinkService("kitchen", 5541, net.ParseIP("192.168.1.20"), HostLinkTXT{Name: "Kitchen", ProductID: 0x3023}))
	mock.RegisterService(ServiceHostLink, MockHostLinkService("broken", 5541, net.ParseIP("192.168.1.21"), HostLinkTXT{Name: "x"}))
	mock.services[ServiceHostLink][1].Text = []string{"pid=nothex"}
	mock.RegisterService("_other._tcp", MockHostLinkService("other", 1, net.ParseIP("10.0.0.1"), HostLinkTXT{Name: "o"}))

	results, err := r.Browse(context.Background())
	if err != nil {
		t.Fatalf("Browse() error: %v", err)
	}

	var got []ResolvedService
	for svc := range results {
		got = append(got, svc)
	}
	if len(got) != 1 {
		t.Fatalf("results = %d, want 1", len(got))
	}
	if got[0].InstanceName != "kitchen" || got[0].TXT.ProductID != 0x3023 {
		t.Errorf("result = %+v", got[0])
	}
	if got[0].Addr() != "192.168.1.20:5541" {
		t.Errorf("Addr() = %q", got[0].Addr())
	}
}

func TestResolverBrowseCancel(t *testing.T) {
	r, mock := newMockResolver(t)
	mock.RegisterService(ServiceHostLink, MockHostLinkService("a", 1, net.ParseIP("10.0.0.1"), HostLinkTXT{Name: "a"}))
	mock.RegisterService(ServiceHostLink, MockHostLinkService("b", 1, net.ParseIP("10.0.0.2"), HostLinkTXT{Name: "b"}))

	ctx, cancel := context.WithCancel(context.Background())
	results, err := r.Browse(ctx)
	if err != nil {
		t.Fatalf("Browse() error: %v", err)
	}
	<-results
	cancel()

	select {
	case <-drain(results):
	case <-time.After(2 * time.Second):
		t.Fatal("results not closed after cancel")
	}
}

func drain(ch <-chan ResolvedService) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}

func TestResolverLookup(t *testing.T) {
	r, mock := newMockResolver(t)
	mock.RegisterService(ServiceHostLink, MockHostLinkService("hall", 6000, net.ParseIP("fd00::7"), HostLinkTXT{Name: "Hall"}))

	svc, err := r.Lookup(context.Background(), "hall")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if svc.TXT.Name != "Hall" || svc.Addr() != "[fd00::7]:6000" {
		t.Errorf("Lookup() = %+v", svc)
	}

	_, err = r.Lookup(context.Background(), "missing")
	if !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrTimeout or ErrServiceNotFound", err)
	}
}

// sendAllResolver answers with every entry using plain blocking sends, the
// way zeroconf does, and closes finished once the query has shut down.
type sendAllResolver struct {
	answers  []*zeroconf.ServiceEntry
	finished chan struct{}
}

func (s *sendAllResolver) Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	return s.Lookup(ctx, "", service, domain, entries)
}

func (s *sendAllResolver) Lookup(ctx context.Context, instance, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	go func() {
		defer close(s.finished)
		for _, e := range s.answers {
			entries <- e
		}
		<-ctx.Done()
		close(entries)
	}()
	return nil
}

func TestResolverLookupReleasesQuery(t *testing.T) {
	txt := HostLinkTXT{Name: "Hall"}
	mdns := &sendAllResolver{
		answers: []*zeroconf.ServiceEntry{
			MockHostLinkService("hall", 6000, net.ParseIP("192.168.1.7"), txt),
			MockHostLinkService("hall", 6000, net.ParseIP("fd00::7"), txt),
			MockHostLinkService("hall", 6000, net.ParseIP("fe80::7"), txt),
		},
		finished: make(chan struct{}),
	}
	r, err := NewResolver(ResolverConfig{MDNSResolver: mdns, LookupTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewResolver() error: %v", err)
	}

	svc, err := r.Lookup(context.Background(), "hall")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if svc.Addr() != "192.168.1.7:6000" {
		t.Errorf("Lookup() addr = %q, want first answer", svc.Addr())
	}

	select {
	case <-mdns.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("query still blocked sending answers after Lookup returned")
	}
}
