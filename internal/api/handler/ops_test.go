package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/provider/resilience"
)

func TestHealthCheck_ReportsVersion(t *testing.T) {
	h := handler.NewOpsHandler("1.2.3", "2026-03-14T00:00:00Z", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", nil)
	rec := httptest.NewRecorder()

	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Details["version"])
}

func TestReadinessCheck_IsOK(t *testing.T) {
	h := handler.NewOpsHandler("dev", "unknown", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", nil)
	rec := httptest.NewRecorder()

	h.ReadinessCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestSystemStatus_ReportsRegisteredProviders(t *testing.T) {
	registry := resilience.NewRegistry()

	tomtomCfg := resilience.DefaultClientConfig("tomtom")
	tomtomCfg.Registry = registry
	resilience.NewClient(tomtomCfg)

	openaqCfg := resilience.DefaultClientConfig("openaq")
	openaqCfg.Registry = registry
	resilience.NewClient(openaqCfg)

	registry.RecordSuccess("tomtom")
	registry.RecordFailure("openaq", errors.New("upstream status 502"))

	h := handler.NewOpsHandler("dev", "unknown", registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", nil)
	rec := httptest.NewRecorder()

	h.SystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Providers, 2)

	byName := make(map[string]models.ProviderStatus)
	for _, p := range status.Providers {
		byName[p.Provider] = p
	}

	tomtom := byName["tomtom"]
	assert.Equal(t, models.HealthStatusOK, tomtom.Status)
	assert.NotNil(t, tomtom.LastSuccessAt)
	assert.Nil(t, tomtom.LastFailureAt)

	openaq := byName["openaq"]
	assert.NotNil(t, openaq.LastFailureAt)
	require.NotNil(t, openaq.Message)
	assert.Contains(t, *openaq.Message, "502")
}

func TestSystemStatus_NoRegistry(t *testing.T) {
	h := handler.NewOpsHandler("dev", "unknown", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", nil)
	rec := httptest.NewRecorder()

	h.SystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
}
