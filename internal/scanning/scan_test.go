package scanning

import (
	"context"
	"fmt"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MAS191/ScanPro/internal/errors"
)

// startListener opens a loopback listener that accepts and immediately
// closes connections, returning the port it listens on.
func startListener(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// freePort returns a loopback port with nothing listening on it.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

// stubResolver resolves only the names it was given, without touching DNS.
type stubResolver struct {
	addrs map[string]string
}

func (s stubResolver) Resolve(_ context.Context, host string) (string, error) {
	if addr, ok := s.addrs[host]; ok {
		return addr, nil
	}
	return "", fmt.Errorf("no such host: %s", host)
}

func validConfig() *Config {
	return &Config{
		Targets:     []string{"127.0.0.1"},
		Ports:       []int{22, 80, 443},
		ScanType:    ScanTypeTCPConnect,
		Timeout:     time.Second,
		Concurrency: 10,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(*Config) {},
			wantError: false,
		},
		{
			name:      "empty targets",
			mutate:    func(c *Config) { c.Targets = nil },
			wantError: true,
		},
		{
			name:      "empty ports",
			mutate:    func(c *Config) { c.Ports = nil },
			wantError: true,
		},
		{
			name:      "port zero",
			mutate:    func(c *Config) { c.Ports = []int{0, 80} },
			wantError: true,
		},
		{
			name:      "port too high",
			mutate:    func(c *Config) { c.Ports = []int{80, 65536} },
			wantError: true,
		},
		{
			name:      "unsorted ports",
			mutate:    func(c *Config) { c.Ports = []int{443, 80} },
			wantError: true,
		},
		{
			name:      "duplicate ports",
			mutate:    func(c *Config) { c.Ports = []int{80, 80} },
			wantError: true,
		},
		{
			name:      "unknown scan type",
			mutate:    func(c *Config) { c.ScanType = "xmas" },
			wantError: true,
		},
		{
			name:      "recognized but unimplemented scan type",
			mutate:    func(c *Config) { c.ScanType = ScanTypeUDP },
			wantError: false,
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.Timeout = 0 },
			wantError: true,
		},
		{
			name:      "zero concurrency",
			mutate:    func(c *Config) { c.Concurrency = 0 },
			wantError: true,
		},
		{
			name:      "negative delay",
			mutate:    func(c *Config) { c.Delay = -time.Second },
			wantError: true,
		},
		{
			name:      "single port boundary values",
			mutate:    func(c *Config) { c.Ports = []int{1, 65535} },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunScanLoopback(t *testing.T) {
	openPort := startListener(t)
	closedPort := freePort(t)

	ports := []int{openPort, closedPort}
	sort.Ints(ports)

	cfg := &Config{
		Targets:     []string{"127.0.0.1"},
		Ports:       ports,
		ScanType:    ScanTypeTCPConnect,
		Timeout:     2 * time.Second,
		Concurrency: 2,
	}

	result, err := Run(cfg)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Hosts, 1)

	host := result.Hosts[0]
	assert.Equal(t, "127.0.0.1", host.Host)
	assert.True(t, host.IsAlive)
	assert.False(t, host.ScanEnd.Before(host.ScanStart))
	require.Len(t, host.Ports, 2)

	byPort := make(map[int]PortResult, len(host.Ports))
	for _, p := range host.Ports {
		byPort[p.Port] = p
	}
	require.Contains(t, byPort, openPort)
	require.Contains(t, byPort, closedPort)

	assert.Equal(t, PortStateOpen, byPort[openPort].State)
	assert.Equal(t, "127.0.0.1", byPort[openPort].Host)
	assert.Empty(t, byPort[openPort].Err)

	assert.Equal(t, PortStateClosed, byPort[closedPort].State)
	assert.Empty(t, byPort[closedPort].Err)

	assert.Equal(t, 1, result.Stats.TotalHosts)
	assert.Equal(t, 1, result.Stats.LiveHosts)
	assert.Equal(t, 2, result.Stats.PortsScanned)
	assert.Equal(t, 1, result.Stats.OpenPorts)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestRunReportsOriginalTargetName(t *testing.T) {
	openPort := startListener(t)

	resolver := stubResolver{addrs: map[string]string{
		"web.internal": "127.0.0.1",
	}}
	cfg := &Config{
		Targets:     []string{"web.internal"},
		Ports:       []int{openPort},
		ScanType:    ScanTypeTCPConnect,
		Timeout:     2 * time.Second,
		Concurrency: 1,
	}

	result, err := RunWithResolver(context.Background(), cfg, resolver, nil)
	require.NoError(t, err)
	require.Len(t, result.Hosts, 1)

	host := result.Hosts[0]
	assert.Equal(t, "web.internal", host.Host)
	require.Len(t, host.Ports, 1)
	assert.Equal(t, "127.0.0.1", host.Ports[0].Host)
}

func TestRunSkipsUnresolvableTargets(t *testing.T) {
	openPort := startListener(t)

	resolver := stubResolver{addrs: map[string]string{
		"good.internal": "127.0.0.1",
	}}
	cfg := &Config{
		Targets:     []string{"bad.internal", "good.internal"},
		Ports:       []int{openPort},
		ScanType:    ScanTypeTCPConnect,
		Timeout:     2 * time.Second,
		Concurrency: 1,
	}

	var skipped []string
	result, err := RunWithResolver(context.Background(), cfg, resolver, func(ev Event) {
		if ev.Type == EventHostSkipped {
			skipped = append(skipped, ev.Target)
			assert.Error(t, ev.Err)
		}
	})
	require.NoError(t, err)

	require.Len(t, result.Hosts, 1)
	assert.Equal(t, "good.internal", result.Hosts[0].Host)
	assert.Equal(t, []string{"bad.internal"}, skipped)

	assert.Equal(t, 1, result.Stats.TotalHosts)
	assert.Equal(t, 1, result.Stats.PortsScanned)
}

func TestRunUnsupportedScanTypes(t *testing.T) {
	for _, scanType := range []ScanType{ScanTypeTCPSYN, ScanTypeUDP, ScanTypeICMP} {
		t.Run(string(scanType), func(t *testing.T) {
			cfg := validConfig()
			cfg.ScanType = scanType

			result, err := Run(cfg)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeScanUnsupported))
			assert.Contains(t, err.Error(), "not supported")
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	result, err := Run(&Config{})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestRunEventStream(t *testing.T) {
	openPort := startListener(t)

	cfg := &Config{
		Targets:     []string{"127.0.0.1", "127.0.0.1"},
		Ports:       []int{openPort},
		ScanType:    ScanTypeTCPConnect,
		Timeout:     2 * time.Second,
		Concurrency: 3,
	}

	var events []Event
	result, err := RunWithProgress(context.Background(), cfg, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.Len(t, result.Hosts, 2)
	require.NotEmpty(t, events)

	counts := make(map[EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	assert.Equal(t, 2, counts[EventHostStarted])
	assert.Equal(t, 2, counts[EventPortResult])
	assert.Equal(t, 2, counts[EventHostCompleted])
	assert.Equal(t, 1, counts[EventScanCompleted])
	assert.Zero(t, counts[EventHostSkipped])

	first := events[0]
	assert.Equal(t, EventHostStarted, first.Type)
	assert.Equal(t, 0, first.TargetIndex)
	assert.Equal(t, 2, first.TargetCount)

	last := events[len(events)-1]
	assert.Equal(t, EventScanCompleted, last.Type)
	assert.NoError(t, last.Err)

	// Targets run strictly one after another, so the first host must be
	// fully finished before the second one starts.
	firstCompleted, secondStarted := -1, -1
	for i, ev := range events {
		if ev.Type == EventHostCompleted && ev.TargetIndex == 0 {
			firstCompleted = i
		}
		if ev.Type == EventHostStarted && ev.TargetIndex == 1 {
			secondStarted = i
		}
	}
	require.GreaterOrEqual(t, firstCompleted, 0)
	require.GreaterOrEqual(t, secondStarted, 0)
	assert.Less(t, firstCompleted, secondStarted)

	for _, ev := range events {
		switch ev.Type {
		case EventPortResult:
			require.NotNil(t, ev.Result)
			assert.Equal(t, openPort, ev.Result.Port)
		case EventHostCompleted:
			require.NotNil(t, ev.Host)
			assert.True(t, ev.Host.IsAlive)
		}
	}
}

func TestRunCancellationReturnsPartialResults(t *testing.T) {
	openPort := startListener(t)

	cfg := &Config{
		Targets:     []string{"127.0.0.1", "127.0.0.1", "127.0.0.1"},
		Ports:       []int{openPort},
		ScanType:    ScanTypeTCPConnect,
		Timeout:     2 * time.Second,
		Concurrency: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := RunWithProgress(ctx, cfg, func(ev Event) {
		// Cancel as soon as the first host finishes.
		if ev.Type == EventHostCompleted && ev.TargetIndex == 0 {
			cancel()
		}
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCanceled))
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, result)
	assert.Len(t, result.Hosts, 1)
	assert.Equal(t, 1, result.Stats.TotalHosts)
}

func TestRunAlreadyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunWithContext(ctx, validConfig())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCanceled))
	require.NotNil(t, result)
	assert.Empty(t, result.Hosts)
	assert.Zero(t, result.Stats.TotalHosts)
}
