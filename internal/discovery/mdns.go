package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// OctoPrintService is advertised exclusively by OctoPrint instances
	OctoPrintService = "_octoprint._tcp"

	// HTTPService is the generic HTTP service type. PrusaLink firmwares
	// advertise here, so entries are filtered by name.
	HTTPService = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for printer discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP port for printers
	DefaultPort = 80
)

// printerPattern matches instance/host names of known printer firmwares
// advertising under the generic HTTP service type.
var printerPattern = regexp.MustCompile(`(?i)(prusa|octoprint|printer)`)

// Scanner handles mDNS printer discovery
type Scanner struct {
	// Timeout is the maximum time to wait for printer discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForPrinters discovers all printers on the local network
func (s *Scanner) ScanForPrinters() ([]*Printer, error) {
	return s.ScanForPrintersWithContext(context.Background())
}

// ScanForPrintersWithContext discovers printers with a custom context
func (s *Scanner) ScanForPrintersWithContext(ctx context.Context) ([]*Printer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		printers = make(map[string]*Printer) // keyed by IP:port, dedupes across services
		wg       sync.WaitGroup
		firstErr error
	)

	for _, service := range []string{OctoPrintService, HTTPService} {
		wg.Add(1)
		go func(service string) {
			defer wg.Done()

			if err := s.browse(ctx, service, func(p *Printer) {
				mu.Lock()
				key := fmt.Sprintf("%s:%d", p.IP, p.Port)
				// The dedicated service type carries better metadata;
				// don't let a later generic entry clobber it.
				if _, seen := printers[key]; !seen || service == OctoPrintService {
					printers[key] = p
				}
				mu.Unlock()
			}); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(service)
	}

	wg.Wait()

	if len(printers) == 0 && firstErr != nil {
		return nil, firstErr
	}

	list := make([]*Printer, 0, len(printers))
	for _, p := range printers {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list, nil
}

// browse runs one mDNS browse for the given service type, invoking found
// for every entry that parses as a printer.
func (s *Scanner) browse(ctx context.Context, service string, found func(*Printer)) error {
	entries := make(chan *zeroconf.ServiceEntry)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			if printer := parseServiceEntry(entry, service); printer != nil {
				found(printer)
			}
		}
	}()

	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for %s services: %w", service, err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Printer.
// Returns nil if the entry doesn't look like a printer.
func parseServiceEntry(entry *zeroconf.ServiceEntry, service string) *Printer {
	// The generic HTTP service type carries every web thing on the
	// network; keep only entries that look like a printer.
	if service != OctoPrintService &&
		!printerPattern.MatchString(entry.Instance) &&
		!printerPattern.MatchString(entry.HostName) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default to 80 if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Printer{
		Name:         entry.Instance,
		Hostname:     strings.TrimSuffix(entry.HostName, "."),
		IP:           ip,
		Port:         port,
		Service:      service,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForPrinters is a convenience function to scan with a custom timeout
func ScanForPrinters(timeout time.Duration) ([]*Printer, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForPrinters()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Printer, error) {
	return ScanForPrinters(3 * time.Second)
}
