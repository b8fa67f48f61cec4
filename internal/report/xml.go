package report

import (
	"encoding/xml"
	"io"
	"time"
)

// xmlDocument is the root element for XML serialization.
type xmlDocument struct {
	XMLName   xml.Name  `xml:"scanresult"`
	Version   string    `xml:"version,attr"`
	StartTime string    `xml:"start_time,attr"`
	EndTime   string    `xml:"end_time,attr"`
	Duration  string    `xml:"duration,attr"`
	Hosts     []xmlHost `xml:"host"`
}

// xmlHost represents a scanned host for XML serialization.
type xmlHost struct {
	Address string    `xml:"Address"`
	Status  string    `xml:"Status"`
	Ports   []xmlPort `xml:"Ports,omitempty"`
}

// xmlPort represents a probed port for XML serialization.
type xmlPort struct {
	Number   int    `xml:"Number"`
	Protocol string `xml:"Protocol"`
	State    string `xml:"State"`
	Service  string `xml:"Service,omitempty"`
	Banner   string `xml:"Banner,omitempty"`
}

// xmlWriter renders the document as indented XML.
type xmlWriter struct{}

func (xmlWriter) Write(w io.Writer, doc *Document) error {
	out := &xmlDocument{
		Version:   doc.Version,
		StartTime: doc.ScanInfo.StartTime.Format(time.RFC3339),
		EndTime:   doc.ScanInfo.EndTime.Format(time.RFC3339),
		Duration:  formatSeconds(doc.ScanInfo.DurationSeconds),
		Hosts:     make([]xmlHost, 0, len(doc.Hosts)),
	}

	for i := range doc.Hosts {
		host := &doc.Hosts[i]
		status := "down"
		if host.IsAlive {
			status = "up"
		}
		outHost := xmlHost{
			Address: host.Host,
			Status:  status,
			Ports:   make([]xmlPort, 0, len(host.Ports)),
		}
		for _, port := range host.Ports {
			outHost.Ports = append(outHost.Ports, xmlPort{
				Number:   port.Port,
				Protocol: "tcp",
				State:    port.State,
				Service:  port.Service,
				Banner:   port.Banner,
			})
		}
		out.Hosts = append(out.Hosts, outHost)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func formatSeconds(seconds float64) string {
	return time.Duration(seconds * float64(time.Second)).String()
}
