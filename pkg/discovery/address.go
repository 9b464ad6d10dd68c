package discovery

import (
	"net"
	"sort"
	"strconv"
)

// SortIPsByPreference orders addresses for dialing. Host links usually sit
// on a LAN, so routable IPv4 comes first, then IPv6 global, unique local
// and link-local, then loopback. The input is not modified.
func SortIPsByPreference(ips []net.IP) []net.IP {
	if len(ips) <= 1 {
		return ips
	}

	sorted := make([]net.IP, len(ips))
	copy(sorted, ips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ipPriority(sorted[i]) < ipPriority(sorted[j])
	})
	return sorted
}

// ipPriority returns the priority of an IP address (lower is better).
func ipPriority(ip net.IP) int {
	if ip.To16() == nil {
		return 99
	}
	switch {
	case ip.IsLoopback():
		return 80
	case ip.IsMulticast() || ip.IsUnspecified():
		return 90
	case ip.To4() != nil:
		return 0
	case isUniqueLocal(ip):
		return 2
	case ip.IsLinkLocalUnicast():
		return 3
	case ip.IsGlobalUnicast():
		return 1
	default:
		return 10
	}
}

// isUniqueLocal reports whether ip is in fc00::/7.
func isUniqueLocal(ip net.IP) bool {
	ip = ip.To16()
	return ip != nil && ip.To4() == nil && ip[0]&0xfe == 0xfc
}

// DialAddress returns host:port for ip, or "" when ip is nil.
func DialAddress(ip net.IP, port int) string {
	if ip == nil {
		return ""
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(port))
}
