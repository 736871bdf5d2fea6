// Package discovery provides mDNS-based discovery of network 3D printers.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate PrusaLink- and OctoPrint-style printers on the local
// network, so the setup wizard can prefill the host field instead of asking
// the user for an address.
//
// # Discovery Process
//
//  1. Browses the "_octoprint._tcp" service type, whose advertisers are
//     printers by definition
//  2. Browses the generic "_http._tcp" service type and keeps entries whose
//     instance or hostname looks like a printer (PrusaLink firmwares
//     advertise plain HTTP)
//  3. Collects printer information (instance name, hostname, IP, port,
//     TXT metadata)
//  4. Returns the list after the timeout period
//
// # Usage Example
//
//	printers, err := discovery.ScanForPrinters(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range printers {
//	    fmt.Printf("Found: %s at %s\n", p.Name, p.BaseURL())
//	}
//
// Discovery is best effort: an empty result is not an error, and the wizard
// always allows manual host entry.
package discovery
