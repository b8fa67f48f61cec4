package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MAS191/ScanPro/internal/api/handlers/mocks"
	"github.com/MAS191/ScanPro/internal/errors"
	"github.com/MAS191/ScanPro/internal/jobs"
	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/scanning"
)

// testJob returns a job snapshot in the given status.
func testJob(status jobs.Status) jobs.Job {
	now := time.Now().UTC()
	job := jobs.Job{
		ID:     uuid.NewString(),
		Status: status,
		Source: jobs.SourceAPI,
		Request: jobs.Request{
			Name:    "office subnet",
			Targets: []string{"192.168.1.10"},
			Ports:   "22,80,443",
			Profile: "default",
		},
		CreatedAt: now,
	}
	if status != jobs.StatusPending {
		started := now.Add(10 * time.Millisecond)
		job.StartedAt = &started
	}
	if status.Finished() {
		ended := now.Add(500 * time.Millisecond)
		job.EndedAt = &ended
	}
	return job
}

func TestNewScanHandler(t *testing.T) {
	handler := NewScanHandler(nil, createTestLogger(), metrics.NewRegistry())

	assert.NotNil(t, handler)
	assert.NotNil(t, handler.logger)
	assert.NotNil(t, handler.metrics)
}

func TestScanHandler_ValidateScanRequest(t *testing.T) {
	timeout := 500
	badTimeout := 0
	badConcurrency := -1
	badDelay := -10

	tests := []struct {
		name        string
		request     *ScanRequest
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid request",
			request: &ScanRequest{
				Name:    "office scan",
				Targets: []string{"192.168.1.1"},
			},
		},
		{
			name: "valid with timing overrides",
			request: &ScanRequest{
				Targets:   []string{"10.0.0.1", "10.0.0.2"},
				TimeoutMS: &timeout,
			},
		},
		{
			name: "name too long",
			request: &ScanRequest{
				Name:    strings.Repeat("a", 256),
				Targets: []string{"192.168.1.1"},
			},
			expectError: true,
			errorMsg:    "scan name too long",
		},
		{
			name:        "no targets",
			request:     &ScanRequest{Name: "empty"},
			expectError: true,
			errorMsg:    "at least one target is required",
		},
		{
			name: "empty target entry",
			request: &ScanRequest{
				Targets: []string{"192.168.1.1", ""},
			},
			expectError: true,
			errorMsg:    "target 2 is empty",
		},
		{
			name: "target too long",
			request: &ScanRequest{
				Targets: []string{strings.Repeat("a", 256)},
			},
			expectError: true,
			errorMsg:    "target 1 too long",
		},
		{
			name: "zero timeout",
			request: &ScanRequest{
				Targets:   []string{"192.168.1.1"},
				TimeoutMS: &badTimeout,
			},
			expectError: true,
			errorMsg:    "timeout_ms must be positive",
		},
		{
			name: "negative concurrency",
			request: &ScanRequest{
				Targets:     []string{"192.168.1.1"},
				Concurrency: &badConcurrency,
			},
			expectError: true,
			errorMsg:    "concurrency must be positive",
		},
		{
			name: "negative delay",
			request: &ScanRequest{
				Targets: []string{"192.168.1.1"},
				DelayMS: &badDelay,
			},
			expectError: true,
			errorMsg:    "delay_ms cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScanRequest(tt.request)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScanHandler_ToJobRequest(t *testing.T) {
	timeout := 1500
	delay := 20
	concurrency := 64
	banners := true

	req := &ScanRequest{
		Name:        "full options",
		Targets:     []string{"192.168.1.1"},
		Ports:       "top100",
		Profile:     "fast",
		ScanType:    "tcp_connect",
		TimeoutMS:   &timeout,
		DelayMS:     &delay,
		Concurrency: &concurrency,
		Banners:     &banners,
	}

	out := toJobRequest(req)

	assert.Equal(t, jobs.SourceAPI, out.Source)
	assert.Equal(t, "fast", out.Profile)
	require.NotNil(t, out.Timeout)
	assert.Equal(t, 1500*time.Millisecond, *out.Timeout)
	require.NotNil(t, out.Delay)
	assert.Equal(t, 20*time.Millisecond, *out.Delay)
	require.NotNil(t, out.Concurrency)
	assert.Equal(t, 64, *out.Concurrency)
	require.NotNil(t, out.Banners)
	assert.True(t, *out.Banners)

	// Unset optional fields stay nil so profile defaults apply.
	minimal := toJobRequest(&ScanRequest{Targets: []string{"10.0.0.1"}})
	assert.Nil(t, minimal.Timeout)
	assert.Nil(t, minimal.Delay)
	assert.Nil(t, minimal.Concurrency)
	assert.Nil(t, minimal.Banners)
}

func TestScanHandler_CreateScan(t *testing.T) {
	t.Run("accepts valid submission", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)

		submitted := testJob(jobs.StatusPending)
		jobService.EXPECT().
			Submit(gomock.Any()).
			DoAndReturn(func(req jobs.Request) (jobs.Job, error) {
				assert.Equal(t, []string{"192.168.1.10"}, req.Targets)
				assert.Equal(t, jobs.SourceAPI, req.Source)
				return submitted, nil
			})

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		body := `{"name":"office subnet","targets":["192.168.1.10"],"ports":"22,80,443"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		handler.CreateScan(recorder, req)

		assert.Equal(t, http.StatusAccepted, recorder.Code)

		var response ScanResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, submitted.ID, response.ID)
		assert.Equal(t, string(jobs.StatusPending), response.Status)
		assert.Equal(t, []string{"192.168.1.10"}, response.Targets)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"targets":`))
		recorder := httptest.NewRecorder()

		handler.CreateScan(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects request without targets", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(`{"name":"no targets"}`))
		recorder := httptest.NewRecorder()

		handler.CreateScan(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Contains(t, response.Message, "at least one target")
	})

	t.Run("maps queue saturation to 503", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().
			Submit(gomock.Any()).
			Return(jobs.Job{}, errors.ErrJobQueueFull(fmt.Errorf("queue full")))

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		body := `{"targets":["192.168.1.10"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		handler.CreateScan(recorder, req)

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		assert.Equal(t, "5", recorder.Header().Get("Retry-After"))
	})

	t.Run("maps rejected targets to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().
			Submit(gomock.Any()).
			Return(jobs.Job{}, errors.ErrInvalidTarget("8.8.8.8"))

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		body := `{"targets":["8.8.8.8"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		handler.CreateScan(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestScanHandler_ListScans(t *testing.T) {
	all := []jobs.Job{
		testJob(jobs.StatusRunning),
		testJob(jobs.StatusCompleted),
		testJob(jobs.StatusCompleted),
	}
	all[2].Source = jobs.SourceScheduler

	t.Run("returns all jobs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().List().Return(all)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans", http.NoBody)
		recorder := httptest.NewRecorder()

		handler.ListScans(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, 3, response.Pagination.TotalItems)
	})

	t.Run("filters by status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().List().Return(all)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans?status=completed", http.NoBody)
		recorder := httptest.NewRecorder()

		handler.ListScans(recorder, req)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, 2, response.Pagination.TotalItems)
	})

	t.Run("filters by source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().List().Return(all)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans?source=scheduler", http.NoBody)
		recorder := httptest.NewRecorder()

		handler.ListScans(recorder, req)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Pagination.TotalItems)
	})

	t.Run("paginates results", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().List().Return(all)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans?page=2&page_size=2", http.NoBody)
		recorder := httptest.NewRecorder()

		handler.ListScans(recorder, req)

		var response struct {
			Data       []ScanResponse `json:"data"`
			Pagination struct {
				TotalItems int `json:"total_items"`
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Len(t, response.Data, 1)
		assert.Equal(t, 3, response.Pagination.TotalItems)
		assert.Equal(t, 2, response.Pagination.TotalPages)
	})
}

func TestScanHandler_GetScan(t *testing.T) {
	t.Run("returns job", func(t *testing.T) {
		job := testJob(jobs.StatusRunning)

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Get(job.ID).Return(job, nil)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodGet, "/api/v1/scans/"+job.ID, map[string]string{"id": job.ID})
		recorder := httptest.NewRecorder()

		handler.GetScan(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var response ScanResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, job.ID, response.ID)
		assert.Equal(t, "running", response.Status)
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodGet, "/api/v1/scans/nope", map[string]string{"id": "nope"})
		recorder := httptest.NewRecorder()

		handler.GetScan(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown job is 404", func(t *testing.T) {
		id := uuid.NewString()

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Get(id).Return(jobs.Job{}, errors.ErrJobNotFound(id))

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodGet, "/api/v1/scans/"+id, map[string]string{"id": id})
		recorder := httptest.NewRecorder()

		handler.GetScan(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestScanHandler_GetScanResults(t *testing.T) {
	t.Run("running job is a conflict", func(t *testing.T) {
		id := uuid.NewString()

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Result(id).Return(nil, nil, errors.ErrJobStillRunning(id))

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodGet, "/api/v1/scans/"+id+"/results", map[string]string{"id": id})
		recorder := httptest.NewRecorder()

		handler.GetScanResults(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("completed job returns report", func(t *testing.T) {
		id := uuid.NewString()

		result := scanning.NewRunResult()
		result.Hosts = []scanning.HostResult{
			{Host: "192.168.1.10", IsAlive: true},
		}
		result.Complete()

		cfg := &scanning.Config{
			Targets:     []string{"192.168.1.10"},
			Ports:       []int{22, 80, 443},
			ScanType:    scanning.ScanTypeTCPConnect,
			Timeout:     time.Second,
			Concurrency: 10,
		}

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Result(id).Return(result, cfg, nil)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodGet, "/api/v1/scans/"+id+"/results", map[string]string{"id": id})
		recorder := httptest.NewRecorder()

		handler.GetScanResults(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var document map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &document))
		assert.Contains(t, document, "scan_info")
		assert.Contains(t, document, "hosts")
	})
}

func TestScanHandler_StopScan(t *testing.T) {
	t.Run("requests cancellation", func(t *testing.T) {
		job := testJob(jobs.StatusRunning)

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Cancel(job.ID).Return(job, nil)

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodPost, "/api/v1/scans/"+job.ID+"/stop", map[string]string{"id": job.ID})
		recorder := httptest.NewRecorder()

		handler.StopScan(recorder, req)

		assert.Equal(t, http.StatusAccepted, recorder.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, job.ID, response["id"])
		assert.Contains(t, response["message"], "cancellation")
	})

	t.Run("finished job is a conflict", func(t *testing.T) {
		id := uuid.NewString()

		ctrl := gomock.NewController(t)
		jobService := mocks.NewMockJobService(ctrl)
		jobService.EXPECT().Cancel(id).Return(jobs.Job{}, errors.ErrJobAlreadyFinished(id))

		handler := NewScanHandler(jobService, createTestLogger(), metrics.NewRegistry())
		req := requestWithVars(http.MethodPost, "/api/v1/scans/"+id+"/stop", map[string]string{"id": id})
		recorder := httptest.NewRecorder()

		handler.StopScan(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestScanHandler_JobToResponse(t *testing.T) {
	job := testJob(jobs.StatusCompleted)
	job.Progress = jobs.Progress{
		TargetsTotal: 1,
		TargetsDone:  1,
		PortsScanned: 3,
		OpenPorts:    2,
		Percent:      100,
	}

	response := jobToResponse(job)

	assert.Equal(t, job.ID, response.ID)
	assert.Equal(t, "completed", response.Status)
	assert.Equal(t, job.Request.Name, response.Name)
	assert.Equal(t, 100.0, response.Progress.Percent)
	assert.NotEmpty(t, response.Duration)

	pending := jobToResponse(testJob(jobs.StatusPending))
	assert.Empty(t, pending.Duration)
	assert.Nil(t, pending.StartedAt)
}
