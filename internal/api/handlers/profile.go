// Package handlers provides HTTP request handlers for the ScanPro API.
// This file implements scan profile management endpoints and the port
// preset listing.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MAS191/ScanPro/internal/metrics"
	"github.com/MAS191/ScanPro/internal/profiles"
)

// Profile validation constants.
const (
	maxProfileNameLength = 255
	maxProfileDescLength = 1000

	// Presets larger than this are summarized by count only so that
	// the full-range preset does not dump 65535 numbers per request.
	maxPresetPortsListed = 1024
)

// ProfileHandler handles profile and preset API endpoints.
type ProfileHandler struct {
	store   ProfileStore
	logger  *slog.Logger
	metrics metrics.MetricsRegistry
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(store ProfileStore, logger *slog.Logger, metricsRegistry metrics.MetricsRegistry) *ProfileHandler {
	return &ProfileHandler{
		store:   store,
		logger:  logger.With("handler", "profile"),
		metrics: metricsRegistry,
	}
}

// ProfileRequest represents a profile creation or update request.
// Durations are given in milliseconds.
type ProfileRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeoutMS   int    `json:"timeout_ms"`
	Concurrency int    `json:"concurrency"`
	DelayMS     int    `json:"delay_ms"`
}

// ProfileResponse represents a profile response.
type ProfileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TimeoutMS   int    `json:"timeout_ms"`
	Concurrency int    `json:"concurrency"`
	DelayMS     int    `json:"delay_ms"`
	BuiltIn     bool   `json:"built_in"`
}

// PresetResponse represents a port preset response.
type PresetResponse struct {
	Name      string `json:"name"`
	PortCount int    `json:"port_count"`
	Ports     []int  `json:"ports,omitempty"`
}

// ListProfiles handles GET /api/v1/profiles - list all profiles.
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	params, err := getPaginationParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	all := h.store.GetAll()
	page := paginate(all, params)

	responses := make([]ProfileResponse, 0, len(page))
	for _, p := range page {
		responses = append(responses, profileToResponse(p))
	}

	recordMetric(h.metrics, "api_profiles_listed_total", nil)
	writePaginatedResponse(w, r, responses, params, len(all))
}

// CreateProfile handles POST /api/v1/profiles - create a custom profile.
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.validateProfileRequest(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	profile := requestToProfile(&req)
	if err := h.store.Create(profile); err != nil {
		handleServiceError(w, r, err, "create", "profile", h.logger)
		return
	}

	h.logger.Info("Profile created",
		"request_id", getRequestID(r),
		"profile_id", profile.ID)

	recordMetric(h.metrics, "api_profiles_created_total", nil)
	writeJSON(w, r, http.StatusCreated, profileToResponse(profile))
}

// GetProfile handles GET /api/v1/profiles/{id} - get a specific profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := extractStringFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	profile, err := h.store.GetByID(id)
	if err != nil {
		handleServiceError(w, r, err, "get", "profile", h.logger)
		return
	}

	recordMetric(h.metrics, "api_profiles_retrieved_total", nil)
	writeJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// UpdateProfile handles PUT /api/v1/profiles/{id} - update a custom
// profile. Built-in profiles cannot be modified.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := extractStringFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var req ProfileRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if req.ID != "" && req.ID != id {
		writeError(w, r, http.StatusBadRequest,
			fmt.Errorf("profile ID in body does not match URL"))
		return
	}
	req.ID = id

	if err := h.validateProfileRequest(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	profile := requestToProfile(&req)
	if err := h.store.Update(profile); err != nil {
		handleServiceError(w, r, err, "update", "profile", h.logger)
		return
	}

	h.logger.Info("Profile updated",
		"request_id", getRequestID(r),
		"profile_id", profile.ID)

	recordMetric(h.metrics, "api_profiles_updated_total", nil)
	writeJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// DeleteProfile handles DELETE /api/v1/profiles/{id} - delete a custom
// profile. Built-in profiles cannot be deleted.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := extractStringFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.store.Delete(id); err != nil {
		handleServiceError(w, r, err, "delete", "profile", h.logger)
		return
	}

	h.logger.Info("Profile deleted",
		"request_id", getRequestID(r),
		"profile_id", id)

	recordMetric(h.metrics, "api_profiles_deleted_total", nil)
	w.WriteHeader(http.StatusNoContent)
}

// ListPresets handles GET /api/v1/presets - list the built-in port
// presets.
func (h *ProfileHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := profiles.ListPresets()

	responses := make([]PresetResponse, 0, len(presets))
	for _, preset := range presets {
		resp := PresetResponse{
			Name:      preset.Name,
			PortCount: len(preset.Ports),
		}
		if len(preset.Ports) <= maxPresetPortsListed {
			resp.Ports = preset.Ports
		}
		responses = append(responses, resp)
	}

	recordMetric(h.metrics, "api_presets_listed_total", nil)
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"presets": responses,
		"count":   len(responses),
	})
}

// Helper methods

// validateProfileRequest validates a profile request. Range and ID
// checks are delegated to the profiles package so the API and the
// config loader accept exactly the same definitions.
func (h *ProfileHandler) validateProfileRequest(req *ProfileRequest) error {
	if len(req.Name) > maxProfileNameLength {
		return fmt.Errorf("profile name too long (max %d characters)", maxProfileNameLength)
	}
	if len(req.Description) > maxProfileDescLength {
		return fmt.Errorf("description too long (max %d characters)", maxProfileDescLength)
	}
	return profiles.ValidateProfile(requestToProfile(req))
}

// requestToProfile converts an API profile request to a profile.
func requestToProfile(req *ProfileRequest) *profiles.Profile {
	return &profiles.Profile{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Timeout:     time.Duration(req.TimeoutMS) * time.Millisecond,
		Concurrency: req.Concurrency,
		Delay:       time.Duration(req.DelayMS) * time.Millisecond,
	}
}

// profileToResponse converts a profile to an API response.
func profileToResponse(p *profiles.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TimeoutMS:   int(p.Timeout / time.Millisecond),
		Concurrency: p.Concurrency,
		DelayMS:     int(p.Delay / time.Millisecond),
		BuiltIn:     p.BuiltIn,
	}
}
