package profiles

import (
	"sort"
	"strings"

	"github.com/MAS191/ScanPro/internal/errors"
)

// PortPreset is a named set of commonly scanned ports.
type PortPreset struct {
	Name  string `json:"name"`
	Ports []int  `json:"ports"`
}

// portPresets holds the built-in port sets. The lists are kept in
// their published order; callers that need them sorted normalize on
// their side.
var portPresets = map[string][]int{
	"top20": {
		21, 22, 23, 25, 53, 80, 110, 111, 135, 139, 143, 443, 993, 995,
		1723, 3306, 3389, 5900, 8080, 8443,
	},

	"top100": {
		7, 9, 13, 21, 22, 23, 25, 26, 37, 53, 79, 80, 81, 88, 106, 110,
		111, 113, 119, 135, 139, 143, 144, 179, 199, 389, 427, 443, 444,
		445, 465, 513, 514, 515, 543, 544, 548, 554, 587, 631, 646, 873,
		990, 993, 995, 1025, 1026, 1027, 1028, 1029, 1110, 1433, 1720,
		1723, 1755, 1900, 2000, 2001, 2049, 2121, 2717, 3000, 3128, 3306,
		3389, 3986, 4899, 5000, 5009, 5051, 5060, 5101, 5190, 5357, 5432,
		5631, 5666, 5800, 5900, 6000, 6001, 6646, 7070, 8000, 8008, 8009,
		8080, 8081, 8443, 8888, 9100, 9999, 10000, 32768, 49152, 49153,
		49154, 49155, 49156, 49157,
	},

	"web": {80, 443, 8000, 8008, 8080, 8081, 8443, 8888, 9000, 9090},

	"mail": {25, 110, 143, 465, 587, 993, 995},

	"db": {1433, 1521, 3306, 5432, 27017, 6379},

	"remote": {22, 23, 3389, 5900, 5901, 5902},

	"all": allPorts(),
}

// allPorts covers the full TCP port range.
func allPorts() []int {
	ports := make([]int, 65535)
	for i := range ports {
		ports[i] = i + 1
	}
	return ports
}

// GetPreset returns a copy of the named port preset. Names are matched
// case-insensitively.
func GetPreset(name string) ([]int, error) {
	ports, ok := portPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.ErrNotFoundWithID("port preset", name)
	}
	out := make([]int, len(ports))
	copy(out, ports)
	return out, nil
}

// ListPresets returns every built-in port preset sorted by name.
func ListPresets() []PortPreset {
	out := make([]PortPreset, 0, len(portPresets))
	for name, ports := range portPresets {
		copied := make([]int, len(ports))
		copy(copied, ports)
		out = append(out, PortPreset{Name: name, Ports: copied})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// PresetNames returns the available preset names sorted alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(portPresets))
	for name := range portPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
