package report

import (
	"fmt"
	"io"
	"strings"
)

// textWriter renders the document as a plain text report, one block
// per host with its open ports.
type textWriter struct{}

func (textWriter) Write(w io.Writer, doc *Document) error {
	var b strings.Builder

	b.WriteString("ScanPro Scan Report\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i := range doc.Hosts {
		host := &doc.Hosts[i]

		fmt.Fprintf(&b, "Host: %s\n", host.Host)
		status := "Down"
		if host.IsAlive {
			status = "Up"
		}
		fmt.Fprintf(&b, "Status: %s\n", status)
		fmt.Fprintf(&b, "Scan Duration: %.2fs\n\n", host.ScanDuration)

		openPorts := make([]Port, 0, len(host.Ports))
		for _, port := range host.Ports {
			if port.State == "open" {
				openPorts = append(openPorts, port)
			}
		}

		if len(openPorts) > 0 {
			b.WriteString("Open Ports:\n")
			for _, port := range openPorts {
				serviceInfo := ""
				if port.Service != "" {
					serviceInfo = fmt.Sprintf(" (%s)", port.Service)
				}
				bannerInfo := ""
				if port.Banner != "" {
					bannerInfo = fmt.Sprintf(" - %s", port.Banner)
				}
				fmt.Fprintf(&b, "  %d/tcp%s%s\n", port.Port, serviceInfo, bannerInfo)
			}
		} else {
			b.WriteString("No open ports found\n")
		}

		b.WriteString("\n" + strings.Repeat("-", 30) + "\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
