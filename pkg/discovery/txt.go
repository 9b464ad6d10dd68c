// Package discovery advertises and finds mesh time bridges via DNS-SD.
//
// A bridge serving its host link over TCP registers one _meshtime._tcp
// instance whose TXT record identifies the device. Host tools browse for
// that service type and dial the resolved address.
package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// Service identifiers.
const (
	// ServiceHostLink is the DNS-SD service type of the TCP host link.
	ServiceHostLink = "_meshtime._tcp"

	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."
)

// TXT record keys.
const (
	TXTKeyName      = "name"
	TXTKeyProductID = "pid"
	TXTKeyVersionID = "vid"
	TXTKeyCompanyID = "cid"
)

// MaxNameLength is the longest device name carried in the TXT record.
const MaxNameLength = 63

// HostLinkTXT holds the TXT record of a _meshtime._tcp instance.
type HostLinkTXT struct {
	Name      string
	ProductID uint16
	VersionID uint16
	CompanyID uint16
}

// Validate checks the record can be advertised.
func (t *HostLinkTXT) Validate() error {
	if t.Name == "" || len(t.Name) > MaxNameLength {
		return ErrInvalidName
	}
	return nil
}

// Encode returns the TXT strings. Identifiers are four hex digits.
func (t *HostLinkTXT) Encode() []string {
	return []string{
		TXTKeyName + "=" + t.Name,
		fmt.Sprintf("%s=%04X", TXTKeyProductID, t.ProductID),
		fmt.Sprintf("%s=%04X", TXTKeyVersionID, t.VersionID),
		fmt.Sprintf("%s=%04X", TXTKeyCompanyID, t.CompanyID),
	}
}

// ParseTXT parses raw TXT record strings into a map.
func ParseTXT(records []string) map[string]string {
	result := make(map[string]string)
	for _, record := range records {
		if idx := strings.IndexByte(record, '='); idx > 0 {
			result[record[:idx]] = record[idx+1:]
		}
	}
	return result
}

// ParseHostLinkTXT parses raw TXT records. Missing identifiers stay zero.
func ParseHostLinkTXT(records []string) (*HostLinkTXT, error) {
	m := ParseTXT(records)

	txt := &HostLinkTXT{Name: m[TXTKeyName]}
	fields := []struct {
		key string
		dst *uint16
	}{
		{TXTKeyProductID, &txt.ProductID},
		{TXTKeyVersionID, &txt.VersionID},
		{TXTKeyCompanyID, &txt.CompanyID},
	}
	for _, f := range fields {
		s, ok := m[f.key]
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, f.key, s)
		}
		*f.dst = uint16(v)
	}
	return txt, nil
}
