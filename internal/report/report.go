// Package report renders completed scan runs into output documents.
// A run is first converted into a format-neutral Document, then any of
// the registered writers (json, text, xml) serializes it to an
// io.Writer or a file.
package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MAS191/ScanPro/internal/scanning"
)

// Version identifies the report document format.
const Version = "1.0.0"

// Document is the format-neutral description of one scan run.
type Document struct {
	Version  string   `json:"scanpro_version"`
	ScanInfo ScanInfo `json:"scan_info"`
	Hosts    []Host   `json:"hosts"`
}

// ScanInfo summarizes the run.
type ScanInfo struct {
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	DurationSeconds   float64    `json:"duration_seconds"`
	TotalHosts        int        `json:"total_hosts"`
	TotalPortsScanned int        `json:"total_ports_scanned"`
	ScanConfig        ScanConfig `json:"scan_config"`
}

// ScanConfig records the settings the run was performed with. Target
// and port lists can be tens of thousands of entries long, so only
// their sizes are kept.
type ScanConfig struct {
	ScanType    string  `json:"scan_type,omitempty"`
	TargetCount int     `json:"target_count"`
	PortCount   int     `json:"port_count"`
	Timeout     float64 `json:"timeout"`
	Concurrency int     `json:"concurrency"`
	Delay       float64 `json:"delay"`
	Banners     bool    `json:"banners"`
}

// Host is one scanned host in the report.
type Host struct {
	Host         string    `json:"host"`
	ScanStart    time.Time `json:"scan_start"`
	ScanEnd      time.Time `json:"scan_end"`
	ScanDuration float64   `json:"scan_duration"`
	IsAlive      bool      `json:"is_alive"`
	Ports        []Port    `json:"ports"`
}

// Port is one probed port in the report.
type Port struct {
	Port     int     `json:"port"`
	State    string  `json:"state"`
	Service  string  `json:"service,omitempty"`
	Banner   string  `json:"banner,omitempty"`
	ScanTime float64 `json:"scan_time"`
	Error    string  `json:"error,omitempty"`
}

// New builds a Document from a completed run. cfg may be nil when the
// run's configuration is not available.
func New(result *scanning.RunResult, cfg *scanning.Config) *Document {
	doc := &Document{
		Version: Version,
		ScanInfo: ScanInfo{
			StartTime:         result.StartTime,
			EndTime:           result.EndTime,
			DurationSeconds:   result.Duration.Seconds(),
			TotalHosts:        result.Stats.TotalHosts,
			TotalPortsScanned: result.Stats.PortsScanned,
		},
		Hosts: make([]Host, 0, len(result.Hosts)),
	}

	if cfg != nil {
		doc.ScanInfo.ScanConfig = ScanConfig{
			ScanType:    string(cfg.ScanType),
			TargetCount: len(cfg.Targets),
			PortCount:   len(cfg.Ports),
			Timeout:     cfg.Timeout.Seconds(),
			Concurrency: cfg.Concurrency,
			Delay:       cfg.Delay.Seconds(),
			Banners:     cfg.Banners,
		}
	}

	for i := range result.Hosts {
		hr := &result.Hosts[i]
		host := Host{
			Host:         hr.Host,
			ScanStart:    hr.ScanStart,
			ScanEnd:      hr.ScanEnd,
			ScanDuration: hr.ScanEnd.Sub(hr.ScanStart).Seconds(),
			IsAlive:      hr.IsAlive,
			Ports:        make([]Port, 0, len(hr.Ports)),
		}
		for _, pr := range hr.Ports {
			port := Port{
				Port:     pr.Port,
				State:    string(pr.State),
				Service:  pr.Service,
				Banner:   pr.Banner,
				ScanTime: pr.Elapsed.Seconds(),
				Error:    pr.Err,
			}
			host.Ports = append(host.Ports, port)
		}
		doc.Hosts = append(doc.Hosts, host)
	}
	return doc
}

// Writer renders a Document in one output format.
type Writer interface {
	Write(w io.Writer, doc *Document) error
}

var writers = map[string]Writer{
	"json": jsonWriter{},
	"text": textWriter{},
	"txt":  textWriter{},
	"xml":  xmlWriter{},
}

// NewWriter returns the writer registered for format.
func NewWriter(format string) (Writer, error) {
	writer, ok := writers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
	return writer, nil
}

// Formats returns the registered format names sorted alphabetically.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders doc to w in the given format.
func Write(w io.Writer, format string, doc *Document) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}
	return writer.Write(w, doc)
}

// Save renders doc to a file in the given format.
func Save(path, format string, doc *Document) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}
	if err := validateFilePath(path); err != nil {
		return fmt.Errorf("invalid report path: %w", err)
	}

	file, err := os.Create(path) //nolint:gosec // path is validated by validateFilePath
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	return writer.Write(file, doc)
}

// validateFilePath validates that the file path is safe to use.
func validateFilePath(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal")
	}
	return nil
}
