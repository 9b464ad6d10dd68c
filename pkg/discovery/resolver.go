package discovery

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/grandcat/zeroconf"
)

// Query timeouts applied when the caller's context has no deadline.
const (
	DefaultBrowseTimeout = 10 * time.Second
	DefaultLookupTimeout = 5 * time.Second
)

// ResolvedService contains information about a discovered bridge.
type ResolvedService struct {
	InstanceName string
	HostName     string

	// Port is the host link TCP port.
	Port int

	// IPs are the advertised addresses, best first (see SortIPsByPreference).
	IPs []net.IP

	// TXT is the decoded TXT record.
	TXT HostLinkTXT
}

// PreferredIP returns the first address, or nil.
func (r *ResolvedService) PreferredIP() net.IP {
	if len(r.IPs) > 0 {
		return r.IPs[0]
	}
	return nil
}

// Addr returns host:port for the preferred address, or "" when unresolved.
func (r *ResolvedService) Addr() string {
	return DialAddress(r.PreferredIP(), r.Port)
}

// MDNSResolver runs DNS-SD queries. *zeroconf.Resolver satisfies it.
// Both methods return once the query is running; entries is closed by the
// implementation when ctx is done.
type MDNSResolver interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
	Lookup(ctx context.Context, instance, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// MDNSResolver defaults to a zeroconf resolver on all interfaces.
	MDNSResolver MDNSResolver

	// BrowseTimeout and LookupTimeout bound queries whose context has no
	// deadline. Zero selects the defaults.
	BrowseTimeout time.Duration
	LookupTimeout time.Duration
}

// Resolver discovers bridges via DNS-SD.
type Resolver struct {
	mdns          MDNSResolver
	browseTimeout time.Duration
	lookupTimeout time.Duration
}

// NewResolver creates a Resolver.
func NewResolver(config ResolverConfig) (*Resolver, error) {
	r := &Resolver{
		mdns:          config.MDNSResolver,
		browseTimeout: config.BrowseTimeout,
		lookupTimeout: config.LookupTimeout,
	}
	if r.mdns == nil {
		zr, err := zeroconf.NewResolver(nil)
		if err != nil {
			return nil, err
		}
		r.mdns = zr
	}
	if r.browseTimeout == 0 {
		r.browseTimeout = DefaultBrowseTimeout
	}
	if r.lookupTimeout == 0 {
		r.lookupTimeout = DefaultLookupTimeout
	}
	return r, nil
}

// Browse discovers bridges. The returned channel is closed when ctx is done
// or the browse timeout expires. Entries with a malformed TXT record are
// skipped.
func (r *Resolver) Browse(ctx context.Context) (<-chan ResolvedService, error) {
	ctx, cancel := r.withTimeout(ctx, r.browseTimeout)

	entries := make(chan *zeroconf.ServiceEntry)
	if err := r.mdns.Browse(ctx, ServiceHostLink, DefaultDomain, entries); err != nil {
		cancel()
		return nil, err
	}

	found := make(chan ResolvedService)
	go r.forward(ctx, cancel, entries, found)
	return found, nil
}

// forward converts entries until the resolver closes them. Once ctx is done
// the remaining entries are drained unread.
func (r *Resolver) forward(ctx context.Context, cancel context.CancelFunc, entries <-chan *zeroconf.ServiceEntry, found chan<- ResolvedService) {
	defer close(found)
	defer cancel()

	for entry := range entries {
		svc, err := serviceFromEntry(entry)
		if err != nil {
			continue
		}
		select {
		case found <- svc:
		case <-ctx.Done():
			for range entries {
			}
			return
		}
	}
}

// Lookup resolves one bridge by instance name. Only the first answer is
// used; later ones are discarded until the query shuts down.
func (r *Resolver) Lookup(ctx context.Context, instance string) (*ResolvedService, error) {
	ctx, cancel := r.withTimeout(ctx, r.lookupTimeout)

	entries := make(chan *zeroconf.ServiceEntry)
	if err := r.mdns.Lookup(ctx, instance, ServiceHostLink, DefaultDomain, entries); err != nil {
		cancel()
		return nil, err
	}
	defer discard(cancel, entries)

	var entry *zeroconf.ServiceEntry
	select {
	case entry = <-entries:
	case <-ctx.Done():
	}
	if entry == nil {
		switch err := ctx.Err(); {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrTimeout
		case err != nil:
			return nil, err
		default:
			return nil, ErrServiceNotFound
		}
	}

	svc, err := serviceFromEntry(entry)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// discard ends a query and consumes its remaining entries. The resolver
// sends without a timeout and only closes entries after it stops.
func discard(cancel context.CancelFunc, entries <-chan *zeroconf.ServiceEntry) {
	cancel()
	go func() {
		for range entries {
		}
	}()
}

// withTimeout applies d if ctx has no deadline.
func (r *Resolver) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func serviceFromEntry(entry *zeroconf.ServiceEntry) (ResolvedService, error) {
	txt, err := ParseHostLinkTXT(entry.Text)
	if err != nil {
		return ResolvedService{}, err
	}

	ips := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	ips = append(ips, entry.AddrIPv4...)
	ips = append(ips, entry.AddrIPv6...)

	svc := ResolvedService{
		InstanceName: entry.Instance,
		HostName:     entry.HostName,
		Port:         entry.Port,
		IPs:          SortIPsByPreference(ips),
		TXT:          *txt,
	}
	return svc, nil
}
