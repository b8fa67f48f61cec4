package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_InitializationAndUpdate(t *testing.T) {
	pm := NewPrometheusMetrics()
	if pm == nil {
		t.Fatalf("NewPrometheusMetrics returned nil")
	}

	reg := pm.GetRegistry()
	if reg == nil {
		t.Fatalf("GetRegistry returned nil")
	}

	// Should be able to update system metrics without panic
	pm.UpdateSystemMetrics()
	// Uptime should be increasing
	before := pm.GetUptime()
	time.Sleep(10 * time.Millisecond)
	after := pm.GetUptime()
	if before >= after {
		t.Fatalf("expected uptime to increase, before=%v after=%v", before, after)
	}
}

func TestPrometheusMetrics_HTTPHandlerServes(t *testing.T) {
	pm := NewPrometheusMetrics()
	// Update once to populate gauges
	pm.UpdateSystemMetrics()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	handler := promhttp.HandlerFor(pm.GetRegistry(), promhttp.HandlerOpts{})
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	body := rr.Body.String()
	if body == "" {
		t.Fatalf("expected non-empty metrics body")
	}
	// Expect a known metric name prefix (namespace + subsystem + name)
	if !contains(body, "scanpro_system_uptime_seconds") {
		end := minInt(200, len(body))
		t.Fatalf("expected uptime metric in output, got: %s", body[:end])
	}
}

func TestPrometheusMetrics_ScanMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	// Test IncrementScansTotal
	pm.IncrementScansTotal("tcp_connect", "success")
	pm.IncrementScansTotal("tcp_connect", "success")
	pm.IncrementScansTotal("tcp_connect", "error")

	count := testutil.CollectAndCount(pm.scansTotal)
	if count != 2 {
		t.Errorf("expected 2 label combinations, got %d", count)
	}

	// Test RecordScanDuration
	pm.RecordScanDuration("tcp_connect", 5*time.Second)
	pm.RecordScanDuration("tcp_connect", 3*time.Second)

	count = testutil.CollectAndCount(pm.scanDuration)
	if count != 1 {
		t.Errorf("expected 1 scan type, got %d", count)
	}

	// Test IncrementScanErrors
	pm.IncrementScanErrors("tcp_connect", "timeout")
	pm.IncrementScanErrors("tcp_connect", "resolve_failed")

	count = testutil.CollectAndCount(pm.scanErrors)
	if count != 2 {
		t.Errorf("expected 2 error types, got %d", count)
	}

	// Test IncrementPortsScanned
	pm.IncrementPortsScanned("tcp_connect", "open", 10)
	pm.IncrementPortsScanned("tcp_connect", "open", 5)
	pm.IncrementPortsScanned("tcp_connect", "closed", 100)

	count = testutil.CollectAndCount(pm.portsScanned)
	if count != 2 {
		t.Errorf("expected 2 port state types, got %d", count)
	}

	// Test IncrementHostsScanned
	pm.IncrementHostsScanned("tcp_connect", "alive", 3)
	pm.IncrementHostsScanned("tcp_connect", "down", 10)

	count = testutil.CollectAndCount(pm.hostsScanned)
	if count != 2 {
		t.Errorf("expected 2 host status combinations, got %d", count)
	}

	// Test SetActiveScans
	pm.SetActiveScans(5)
	pm.SetActiveScans(3)

	count = testutil.CollectAndCount(pm.activeScans)
	if count != 1 {
		t.Errorf("expected 1 gauge metric, got %d", count)
	}
}

func TestPrometheusMetrics_JobMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	// Test IncrementJobsTotal
	pm.IncrementJobsTotal("api", "completed")
	pm.IncrementJobsTotal("api", "completed")
	pm.IncrementJobsTotal("scheduler", "failed")

	count := testutil.CollectAndCount(pm.jobsTotal)
	if count != 2 {
		t.Errorf("expected 2 label combinations, got %d", count)
	}

	// Test RecordJobDuration
	pm.RecordJobDuration("api", 1*time.Second)
	pm.RecordJobDuration("scheduler", 500*time.Millisecond)

	count = testutil.CollectAndCount(pm.jobDuration)
	if count != 2 {
		t.Errorf("expected 2 job sources, got %d", count)
	}

	// Test IncrementJobErrors
	pm.IncrementJobsTotal("api", "canceled")
	pm.IncrementJobErrors("api", "timeout")
	pm.IncrementJobErrors("scheduler", "queue_full")

	count = testutil.CollectAndCount(pm.jobErrors)
	if count != 2 {
		t.Errorf("expected 2 error types, got %d", count)
	}

	// Test SetQueueDepth
	pm.SetQueueDepth(2)
	pm.SetQueueDepth(0)

	count = testutil.CollectAndCount(pm.queueDepth)
	if count != 1 {
		t.Errorf("expected 1 gauge metric, got %d", count)
	}

	// Test SetBusyWorkers
	pm.SetBusyWorkers(4)
	pm.SetBusyWorkers(1)

	count = testutil.CollectAndCount(pm.busyWorkers)
	if count != 1 {
		t.Errorf("expected 1 gauge metric, got %d", count)
	}
}

func TestPrometheusMetrics_APIMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	// Test IncrementHTTPRequests
	pm.IncrementHTTPRequests("GET", "/api/v1/scans", "200")
	pm.IncrementHTTPRequests("POST", "/api/v1/scans", "201")
	pm.IncrementHTTPRequests("GET", "/api/v1/scans", "200")

	count := testutil.CollectAndCount(pm.httpRequests)
	if count != 2 {
		t.Errorf("expected 2 endpoint/status combinations, got %d", count)
	}

	// Test RecordHTTPDuration
	pm.RecordHTTPDuration("GET", "/api/v1/scans", 100*time.Millisecond)
	pm.RecordHTTPDuration("POST", "/api/v1/scans", 200*time.Millisecond)

	count = testutil.CollectAndCount(pm.httpDuration)
	if count != 2 {
		t.Errorf("expected 2 endpoint types, got %d", count)
	}

	// Test IncrementHTTPErrors
	pm.IncrementHTTPErrors("GET", "/api/v1/scans", "timeout")
	pm.IncrementHTTPErrors("POST", "/api/v1/scans", "validation_error")

	count = testutil.CollectAndCount(pm.httpErrors)
	if count != 2 {
		t.Errorf("expected 2 error types, got %d", count)
	}
}

func TestPrometheusMetrics_SystemMetrics(t *testing.T) {
	pm := NewPrometheusMetrics()

	// Test UpdateSystemMetrics
	pm.UpdateSystemMetrics()

	// Verify gauges are populated
	count := testutil.CollectAndCount(pm.memoryUsage)
	if count != 1 {
		t.Errorf("expected 1 memory metric, got %d", count)
	}

	count = testutil.CollectAndCount(pm.goroutines)
	if count != 1 {
		t.Errorf("expected 1 goroutines metric, got %d", count)
	}

	count = testutil.CollectAndCount(pm.uptime)
	if count != 1 {
		t.Errorf("expected 1 uptime metric, got %d", count)
	}

	// Test SetCPUUsage
	pm.SetCPUUsage(45.5)
	pm.SetCPUUsage(50.0)

	count = testutil.CollectAndCount(pm.cpuUsage)
	if count != 1 {
		t.Errorf("expected 1 CPU metric, got %d", count)
	}

	// Test GetLastUpdate
	before := pm.GetLastUpdate()
	time.Sleep(10 * time.Millisecond)
	pm.UpdateSystemMetrics()
	after := pm.GetLastUpdate()

	if !after.After(before) {
		t.Errorf("expected last update to change after UpdateSystemMetrics")
	}
}

func TestPrometheusMetrics_StartPeriodicUpdates(t *testing.T) {
	pm := NewPrometheusMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		pm.StartPeriodicUpdates(ctx, 20*time.Millisecond)
		close(done)
	}()

	// Wait for context to expire
	<-ctx.Done()
	<-done

	// Verify metrics were updated at least once
	count := testutil.CollectAndCount(pm.uptime)
	if count != 1 {
		t.Errorf("expected metrics to be updated, got %d uptime metrics", count)
	}
}

func TestPrometheusMetrics_GlobalInstance(t *testing.T) {
	// Test GetGlobalMetrics
	gm1 := GetGlobalMetrics()
	if gm1 == nil {
		t.Fatal("GetGlobalMetrics returned nil")
	}

	// Should return same instance
	gm2 := GetGlobalMetrics()
	if gm1 != gm2 {
		t.Error("GetGlobalMetrics should return same instance")
	}
}

func TestPrometheusMetrics_GlobalConvenienceFunctions(t *testing.T) {
	gm := GetGlobalMetrics()

	// Test RecordScanDurationPrometheus
	RecordScanDurationPrometheus("tcp_connect", 5*time.Second)
	count := testutil.CollectAndCount(gm.scanDuration)
	if count == 0 {
		t.Error("RecordScanDurationPrometheus did not record metric")
	}

	// Test IncrementScanTotalPrometheus
	IncrementScanTotalPrometheus("tcp_connect", "success")
	count = testutil.CollectAndCount(gm.scansTotal)
	if count == 0 {
		t.Error("IncrementScanTotalPrometheus did not record metric")
	}

	// Test IncrementScanErrorsPrometheus
	IncrementScanErrorsPrometheus("tcp_connect", "timeout")
	count = testutil.CollectAndCount(gm.scanErrors)
	if count == 0 {
		t.Error("IncrementScanErrorsPrometheus did not record metric")
	}

	// Test IncrementPortsScannedPrometheus
	IncrementPortsScannedPrometheus("tcp_connect", "open", 5)
	count = testutil.CollectAndCount(gm.portsScanned)
	if count == 0 {
		t.Error("IncrementPortsScannedPrometheus did not record metric")
	}

	// Test RecordJobDurationPrometheus
	RecordJobDurationPrometheus("api", 1*time.Second)
	count = testutil.CollectAndCount(gm.jobDuration)
	if count == 0 {
		t.Error("RecordJobDurationPrometheus did not record metric")
	}

	// Test IncrementJobsTotalPrometheus
	IncrementJobsTotalPrometheus("api", "completed")
	count = testutil.CollectAndCount(gm.jobsTotal)
	if count == 0 {
		t.Error("IncrementJobsTotalPrometheus did not record metric")
	}

	// Test SetQueueDepthPrometheus
	SetQueueDepthPrometheus(10)
	count = testutil.CollectAndCount(gm.queueDepth)
	if count == 0 {
		t.Error("SetQueueDepthPrometheus did not record metric")
	}

	// Test SetBusyWorkersPrometheus
	SetBusyWorkersPrometheus(3)
	count = testutil.CollectAndCount(gm.busyWorkers)
	if count == 0 {
		t.Error("SetBusyWorkersPrometheus did not record metric")
	}
}

// contains is a tiny helper to avoid importing strings just for tests
func contains(s, substr string) bool {
	return substr == "" || (len(s) >= len(substr) && indexOf(s, substr) >= 0)
}

func indexOf(s, substr string) int {
	// naive search sufficient for test
	n := len(s)
	m := len(substr)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
