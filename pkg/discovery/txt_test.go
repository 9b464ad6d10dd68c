package discovery

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestHostLinkTXTEncode(t *testing.T) {
	txt := HostLinkTXT{Name: "Time Client", ProductID: 0x3023, VersionID: 0x0002, CompanyID: 0x0131}
	want := []string{"name=Time Client", "pid=3023", "vid=0002", "cid=0131"}

	if got := txt.Encode(); !reflect.DeepEqual(got, want) {
		t.Errorf("Encode() = %q, want %q", got, want)
	}

	parsed, err := ParseHostLinkTXT(want)
	if err != nil {
		t.Fatalf("ParseHostLinkTXT() error: %v", err)
	}
	if *parsed != txt {
		t.Errorf("ParseHostLinkTXT() = %+v, want %+v", *parsed, txt)
	}
}

func TestHostLinkTXTValidate(t *testing.T) {
	tests := []struct {
		name    string
		txt     HostLinkTXT
		wantErr bool
	}{
		{"Valid", HostLinkTXT{Name: "bridge"}, false},
		{"Max length", HostLinkTXT{Name: strings.Repeat("a", MaxNameLength)}, false},
		{"Empty", HostLinkTXT{}, true},
		{"Too long", HostLinkTXT{Name: strings.Repeat("a", MaxNameLength+1)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.txt.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("Validate() error = %v, want ErrInvalidName", err)
			}
		})
	}
}

func TestParseHostLinkTXT(t *testing.T) {
	tests := []struct {
		name    string
		records []string
		want    HostLinkTXT
		wantErr bool
	}{
		{
			name:    "Name only",
			records: []string{"name=hub"},
			want:    HostLinkTXT{Name: "hub"},
		},
		{
			name:    "Lowercase hex",
			records: []string{"pid=ab12", "other=x", "noequals"},
			want:    HostLinkTXT{ProductID: 0xAB12},
		},
		{
			name:    "Value with equals",
			records: []string{"name=a=b"},
			want:    HostLinkTXT{Name: "a=b"},
		},
		{
			name:    "Bad hex",
			records: []string{"vid=zz"},
			wantErr: true,
		},
		{
			name:    "Too wide",
			records: []string{"cid=10000"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHostLinkTXT(tc.records)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTXTRecord) {
					t.Errorf("ParseHostLinkTXT() error = %v, want ErrInvalidTXTRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHostLinkTXT() error: %v", err)
			}
			if *got != tc.want {
				t.Errorf("ParseHostLinkTXT() = %+v, want %+v", *got, tc.want)
			}
		})
	}
}
