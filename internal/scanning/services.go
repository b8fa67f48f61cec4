package scanning

// commonServices maps well-known ports to the service names reported in scan
// results. The table covers the services most often probed during host
// assessment; ports without an entry are reported with an empty service name.
var commonServices = map[int]string{
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	135:  "msrpc",
	139:  "netbios-ssn",
	143:  "imap",
	443:  "https",
	993:  "imaps",
	995:  "pop3s",
	1433: "mssql",
	3306: "mysql",
	3389: "rdp",
	5432: "postgresql",
	5900: "vnc",
	8080: "http-proxy",
}

// ServiceName returns the well-known service name for a port, or the empty
// string when the port has no entry in the table.
func ServiceName(port int) string {
	return commonServices[port]
}
