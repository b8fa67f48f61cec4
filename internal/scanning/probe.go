package scanning

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

const (
	// bannerReadLimit caps a single banner read.
	bannerReadLimit = 1024
	// bannerMaxLength caps the stored banner, in characters.
	bannerMaxLength = 200
	// bannerTimeout bounds the banner exchange, independently of the
	// connect timeout.
	bannerTimeout = 2 * time.Second
)

// Prober probes a single host/port pair and classifies the outcome. The
// returned error is non-nil only when the probe was aborted by context
// cancellation; an aborted probe's result must be discarded, not recorded.
type Prober interface {
	Probe(ctx context.Context, host string, port int) (PortResult, error)
}

// ConnectProber implements Prober with full TCP connect probes. It requires
// no elevated privileges. The zero value is not usable; construct with
// NewConnectProber.
type ConnectProber struct {
	timeout time.Duration
	banners bool
}

// NewConnectProber creates a prober whose connection attempts are bounded by
// timeout. When banners is true, every open port gets a follow-up banner
// read on the same connection.
func NewConnectProber(timeout time.Duration, banners bool) *ConnectProber {
	return &ConnectProber{timeout: timeout, banners: banners}
}

// Probe dials host:port and classifies the result. Elapsed always covers the
// connection attempt only, never the banner exchange.
func (p *ConnectProber) Probe(ctx context.Context, host string, port int) (PortResult, error) {
	result := PortResult{
		Host:  host,
		Port:  port,
		State: PortStateUnknown,
	}

	dialer := net.Dialer{Timeout: p.timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	result.Elapsed = time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.State, result.Err = classifyDialError(err)
		return result, nil
	}
	defer conn.Close()

	result.State = PortStateOpen
	result.Service = ServiceName(port)
	if p.banners {
		result.Banner = grabBanner(conn, host, port)
	}
	return result, nil
}

// classifyDialError maps a dial failure onto a port state. Refused
// connections are closed ports, timeouts are filtered ones, and anything
// else is unknown with the error text preserved.
func classifyDialError(err error) (PortState, string) {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return PortStateClosed, ""
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return PortStateFiltered, "timeout"
	}
	return PortStateUnknown, err.Error()
}

// bannerRequest returns the bytes to send before reading a banner. Services
// that speak first (ftp, ssh, smtp) get nothing; HTTP gets a real request;
// everything else gets a bare CRLF to coax a response.
func bannerRequest(host string, port int) []byte {
	switch port {
	case 80:
		return []byte("GET / HTTP/1.1\r\nHost: " + host + "\r\n\r\n")
	case 21, 22, 25:
		return nil
	default:
		return []byte("\r\n")
	}
}

// grabBanner performs a best-effort banner read on an established
// connection. Failures of any kind return an empty banner; they never fail
// the probe.
func grabBanner(conn net.Conn, host string, port int) string {
	if err := conn.SetDeadline(time.Now().Add(bannerTimeout)); err != nil {
		return ""
	}

	if req := bannerRequest(host, port); req != nil {
		if _, err := conn.Write(req); err != nil {
			return ""
		}
	}

	buf := make([]byte, bannerReadLimit)
	n, _ := conn.Read(buf)
	if n <= 0 {
		return ""
	}

	// Drop invalid UTF-8 rather than failing the read.
	banner := strings.ToValidUTF8(string(buf[:n]), "")
	banner = strings.TrimSpace(banner)
	if utf8.RuneCountInString(banner) > bannerMaxLength {
		banner = string([]rune(banner)[:bannerMaxLength])
	}
	return banner
}
