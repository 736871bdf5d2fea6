package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		service  string
		wantNil  bool
		wantName string
		wantIP   string
		wantPort int
	}{
		{
			name: "octoprint service always accepted",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "workshop"},
				HostName:      "octopi.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.40")},
				Text:          []string{"path=/", "version=1.9.3"},
			},
			service:  OctoPrintService,
			wantName: "workshop",
			wantIP:   "192.168.1.40",
			wantPort: 80,
		},
		{
			name: "prusalink over generic http",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PrusaMINI"},
				HostName:      "prusa-mini.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
			},
			service:  HTTPService,
			wantName: "PrusaMINI",
			wantIP:   "192.168.1.50",
			wantPort: 80,
		},
		{
			name: "unrelated http service filtered out",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "nas-admin"},
				HostName:      "nas.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.10")},
			},
			service: HTTPService,
			wantNil: true,
		},
		{
			name: "entry without address dropped",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PrusaXL"},
				HostName:      "prusa-xl.local.",
				Port:          80,
			},
			service: HTTPService,
			wantNil: true,
		},
		{
			name: "missing port defaults to 80",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PrusaMK4"},
				HostName:      "prusa-mk4.local.",
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.60")},
			},
			service:  HTTPService,
			wantName: "PrusaMK4",
			wantIP:   "192.168.1.60",
			wantPort: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer := parseServiceEntry(tt.entry, tt.service)

			if tt.wantNil {
				if printer != nil {
					t.Fatalf("parseServiceEntry() = %+v, want nil", printer)
				}
				return
			}

			if printer == nil {
				t.Fatal("parseServiceEntry() = nil, want printer")
			}
			if printer.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", printer.Name, tt.wantName)
			}
			if printer.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", printer.IP, tt.wantIP)
			}
			if printer.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", printer.Port, tt.wantPort)
			}
			if printer.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "PrusaMINI"},
		HostName:      "prusa-mini.local.",
		Port:          80,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
		Text:          []string{"path=/", "flag"},
	}

	printer := parseServiceEntry(entry, HTTPService)
	if printer == nil {
		t.Fatal("parseServiceEntry() = nil, want printer")
	}

	if got := printer.GetMetadata("path"); got != "/" {
		t.Errorf(`GetMetadata("path") = %q, want "/"`, got)
	}
	if got := printer.GetMetadata("flag"); got != "" {
		t.Errorf(`GetMetadata("flag") = %q, want ""`, got)
	}
	if got := printer.GetMetadata("missing"); got != "" {
		t.Errorf(`GetMetadata("missing") = %q, want ""`, got)
	}
}
