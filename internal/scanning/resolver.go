package scanning

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// defaultDNSTimeout bounds direct DNS queries when the caller passes no
// timeout.
const defaultDNSTimeout = 5 * time.Second

// Resolver turns a scan target into the IP address the prober dials.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// SystemResolver resolves targets through the operating system resolver,
// preferring IPv4 addresses the way the rest of the engine expects.
type SystemResolver struct{}

// Resolve returns the first IPv4 address for host. IP literals pass through
// without a lookup.
func (SystemResolver) Resolve(ctx context.Context, host string) (string, error) {
	if addr, ok := literalIP(host); ok {
		return addr, nil
	}

	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses found for %s", host)
	}
	return addrs[0].String(), nil
}

// DNSResolver resolves targets by querying a specific DNS server directly,
// bypassing the system resolver. It is used when the configuration names a
// dns_server.
type DNSResolver struct {
	server string
	client *dns.Client
}

// NewDNSResolver creates a resolver that sends A queries to server. The
// server may omit the port, in which case 53 is assumed.
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &DNSResolver{
		server: server,
		client: &dns.Client{Timeout: timeout},
	}
}

// Resolve sends an A query for host and returns the first answer. IP
// literals pass through without a query.
func (r *DNSResolver) Resolve(ctx context.Context, host string) (string, error) {
	if addr, ok := literalIP(host); ok {
		return addr, nil
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return "", fmt.Errorf("dns query for %s: %w", host, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("dns query for %s: %s", host, dns.RcodeToString[resp.Rcode])
	}
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("no A records for %s", host)
}

// literalIP reports whether host is already an IP literal, returning its
// canonical form when it is.
func literalIP(host string) (string, bool) {
	ip := net.ParseIP(host)
	if ip == nil {
		return "", false
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.String(), true
	}
	return ip.String(), true
}
