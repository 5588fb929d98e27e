package probeset

import "strconv"

// WatchPorts is the port set the continuous monitor checks each cycle.
var WatchPorts = []int{80, 443, 22, 21, 25, 53, 110, 143, 993, 995}

// ReconPorts is the port set the recon scanner sweeps once per run.
var ReconPorts = []int{21, 22, 23, 25, 53, 80, 110, 443, 993, 995, 1723, 3306, 3389, 5900, 8080, 8443}

// serviceNames maps well-known ports to display names.
var serviceNames = map[int]string{
	20:   "ftp-data",
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	143:  "imap",
	443:  "https",
	993:  "imaps",
	995:  "pop3s",
	1723: "pptp",
	3306: "mysql",
	3389: "rdp",
	5432: "postgres",
	5900: "vnc",
	8080: "http-proxy",
	8443: "https-alt",
}

// ServiceName returns the well-known service for a port, or "unknown".
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "unknown"
}

// PortLabel renders "port/service" for display, e.g. "22/ssh".
func PortLabel(port int) string {
	return strconv.Itoa(port) + "/" + ServiceName(port)
}
