package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Printer represents a discovered network 3D printer
type Printer struct {
	// Name is the mDNS instance name (e.g., "PrusaMINI")
	Name string

	// Hostname is the mDNS hostname (e.g., "prusa-mini.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.50")
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Service is the mDNS service type the printer was found under
	Service string

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the printer was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the printer
func (p *Printer) String() string {
	return fmt.Sprintf("%s (%s) at %s:%d", p.Name, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the HTTP base URL for the printer
func (p *Printer) BaseURL() string {
	if p.Port == 80 {
		return fmt.Sprintf("http://%s", p.IP)
	}
	return fmt.Sprintf("http://%s:%d", p.IP, p.Port)
}

// Host returns the value to prefill in the wizard's host field: the mDNS
// hostname when available (stable across DHCP leases), the IP otherwise.
func (p *Printer) Host() string {
	if p.Hostname != "" {
		host := strings.TrimSuffix(p.Hostname, ".")
		if p.Port != 0 && p.Port != 80 {
			return fmt.Sprintf("%s:%d", host, p.Port)
		}
		return host
	}
	if p.Port != 0 && p.Port != 80 {
		return fmt.Sprintf("%s:%d", p.IP, p.Port)
	}
	return p.IP
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (p *Printer) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
