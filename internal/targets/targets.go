// Package targets parses target and port specifications into the
// concrete host and port lists the scan engine consumes. It expands
// CIDR networks and IP ranges into individual addresses and resolves
// named port presets, rejecting malformed input instead of silently
// dropping it.
package targets

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/MAS191/ScanPro/internal/profiles"
)

const (
	minPort = 1
	maxPort = 65535

	// maxExpansion bounds how many hosts a specification may expand to.
	// A /16 network fits exactly; anything larger is almost certainly a
	// typo and would keep the scanner busy for hours.
	maxExpansion = 65536
)

// ParseTargets expands a comma-separated target specification into
// individual scan targets. Each entry may be a single IP address or
// hostname, a CIDR network such as 192.168.1.0/24, or a dotted IPv4
// range such as 192.168.1.10-192.168.1.20. CIDR entries expand to
// their usable host addresses. Malformed entries fail the whole
// specification.
func ParseTargets(spec string) ([]string, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("target specification is empty")
	}

	var targets []string
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("target specification %q contains an empty entry", spec)
		}
		expanded, err := expandTarget(token)
		if err != nil {
			return nil, err
		}
		targets = append(targets, expanded...)
		if len(targets) > maxExpansion {
			return nil, fmt.Errorf("target specification expands to more than %d hosts", maxExpansion)
		}
	}
	return targets, nil
}

// LoadTargetsFile reads target specifications from a file, one per
// line. Blank lines and lines starting with # are skipped; every other
// line is parsed like a ParseTargets specification and the results are
// concatenated in file order.
func LoadTargetsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		expanded, err := ParseTargets(line)
		if err != nil {
			return nil, fmt.Errorf("targets file %s line %d: %w", path, lineNo, err)
		}
		targets = append(targets, expanded...)
		if len(targets) > maxExpansion {
			return nil, fmt.Errorf("targets file %s expands to more than %d hosts", path, maxExpansion)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets file: %w", err)
	}
	return targets, nil
}

func expandTarget(token string) ([]string, error) {
	if strings.Contains(token, "/") {
		return expandCIDR(token)
	}
	if start, end, ok := splitRange(token); ok {
		return expandRange(token, start, end)
	}
	return []string{token}, nil
}

// splitRange reports whether token looks like an IPv4 range. Only
// tokens whose text before the first dash is a full IPv4 address are
// treated as ranges, so hostnames containing dashes pass through
// untouched.
func splitRange(token string) (string, string, bool) {
	i := strings.IndexByte(token, '-')
	if i < 0 {
		return "", "", false
	}
	start := strings.TrimSpace(token[:i])
	if ip := net.ParseIP(start); ip == nil || ip.To4() == nil {
		return "", "", false
	}
	return start, strings.TrimSpace(token[i+1:]), true
}

func expandCIDR(token string) ([]string, error) {
	_, ipnet, err := net.ParseCIDR(token)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR notation %q: %w", token, err)
	}

	ones, bits := ipnet.Mask.Size()
	if bits-ones > 16 {
		return nil, fmt.Errorf("network %q expands to more than %d addresses", token, maxExpansion)
	}
	total := 1 << uint(bits-ones)

	hosts := make([]string, 0, total)
	addr := make(net.IP, len(ipnet.IP))
	copy(addr, ipnet.IP)
	for i := 0; i < total; i++ {
		if usableHost(i, total, bits) {
			hosts = append(hosts, addr.String())
		}
		incIP(addr)
	}
	return hosts, nil
}

// usableHost reports whether the i-th address of a network holding
// total addresses is scannable. IPv4 networks larger than a /31
// reserve the first address for the network and the last for
// broadcast; IPv6 networks reserve only the first.
func usableHost(i, total, bits int) bool {
	if bits == 32 {
		if total <= 2 {
			return true
		}
		return i != 0 && i != total-1
	}
	if total == 1 {
		return true
	}
	return i != 0
}

// incIP advances addr by one, in place.
func incIP(addr net.IP) {
	for i := len(addr) - 1; i >= 0; i-- {
		addr[i]++
		if addr[i] != 0 {
			return
		}
	}
}

func expandRange(token, startStr, endStr string) ([]string, error) {
	end := net.ParseIP(endStr)
	if end == nil || end.To4() == nil {
		return nil, fmt.Errorf("invalid IP range %q: %q is not an IPv4 address", token, endStr)
	}
	start := net.ParseIP(startStr)

	lo := binary.BigEndian.Uint32(start.To4())
	hi := binary.BigEndian.Uint32(end.To4())
	if lo > hi {
		return nil, fmt.Errorf("invalid IP range %q: start address is greater than end address", token)
	}
	if uint64(hi)-uint64(lo)+1 > maxExpansion {
		return nil, fmt.Errorf("range %q expands to more than %d addresses", token, maxExpansion)
	}

	hosts := make([]string, 0, hi-lo+1)
	buf := make(net.IP, net.IPv4len)
	for v := lo; ; v++ {
		binary.BigEndian.PutUint32(buf, v)
		hosts = append(hosts, buf.String())
		if v == hi {
			break
		}
	}
	return hosts, nil
}

// ParsePorts turns a port specification into a sorted, deduplicated
// port list. The specification is either the name of a port preset
// (top20, web, all, ...) or a comma-separated mix of single ports and
// dashed ranges such as "22,80,8000-8100". Every port must fall within
// 1-65535; malformed entries fail the whole specification.
func ParsePorts(spec string) ([]int, error) {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return nil, fmt.Errorf("port specification is empty")
	}

	if preset, err := profiles.GetPreset(trimmed); err == nil {
		return NormalizePorts(preset), nil
	}

	var ports []int
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("port specification %q contains an empty entry", spec)
		}
		if strings.Contains(token, "-") {
			lo, hi, err := parsePortRange(token)
			if err != nil {
				return nil, err
			}
			for p := lo; p <= hi; p++ {
				ports = append(ports, p)
			}
			continue
		}
		p, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: not a port number or a named preset", token)
		}
		if err := checkPort(p); err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return NormalizePorts(ports), nil
}

func parsePortRange(token string) (int, int, error) {
	parts := strings.SplitN(token, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q", token)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q", token)
	}
	if err := checkPort(lo); err != nil {
		return 0, 0, err
	}
	if err := checkPort(hi); err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("invalid port range %q: start is greater than end", token)
	}
	return lo, hi, nil
}

func checkPort(p int) error {
	if p < minPort || p > maxPort {
		return fmt.Errorf("port %d is out of range (%d-%d)", p, minPort, maxPort)
	}
	return nil
}

// IsPrivateTarget reports whether target lies in private, loopback, or
// link-local address space. Deployments restricted to lab networks use
// this to refuse scans of addresses that could leave the local
// environment. Hostnames cannot be judged without resolving them, so
// only "localhost" passes; any other name is treated as public.
func IsPrivateTarget(target string) bool {
	if strings.EqualFold(strings.TrimSpace(target), "localhost") {
		return true
	}
	ip := net.ParseIP(strings.TrimSpace(target))
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

// NormalizePorts returns ports sorted ascending with duplicates
// removed. Scan configuration validation expects the normalized form,
// so callers assembling port lists by hand should pass them through
// here. The input slice is not modified.
func NormalizePorts(ports []int) []int {
	if len(ports) == 0 {
		return nil
	}
	out := make([]int, len(ports))
	copy(out, ports)
	sort.Ints(out)

	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
