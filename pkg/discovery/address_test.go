package discovery

import (
	"net"
	"testing"
)

func TestSortIPsByPreference(t *testing.T) {
	in := []net.IP{
		net.ParseIP("::1"),
		net.ParseIP("fe80::1"),
		net.ParseIP("fd00::1"),
		net.ParseIP("2001:db8::1"),
		net.ParseIP("192.168.1.10"),
		net.ParseIP("127.0.0.1"),
	}
	want := []string{"192.168.1.10", "2001:db8::1", "fd00::1", "fe80::1", "::1", "127.0.0.1"}

	got := SortIPsByPreference(in)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if in[0].String() != "::1" {
		t.Error("SortIPsByPreference() modified its input")
	}
}

func TestDialAddress(t *testing.T) {
	tests := []struct {
		ip   net.IP
		port int
		want string
	}{
		{net.ParseIP("10.0.0.2"), 5541, "10.0.0.2:5541"},
		{net.ParseIP("fd00::2"), 5541, "[fd00::2]:5541"},
		{nil, 5541, ""},
	}
	for _, tc := range tests {
		if got := DialAddress(tc.ip, tc.port); got != tc.want {
			t.Errorf("DialAddress(%v, %d) = %q, want %q", tc.ip, tc.port, got, tc.want)
		}
	}
}
