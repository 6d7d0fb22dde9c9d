package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcli/internal/health"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewAnalysisHandler(health.NewAnalyzer(nil, logger), logger)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func analysisPayload(participant string, days int) []byte {
	var records []map[string]interface{}
	for i := 0; i < days; i++ {
		records = append(records,
			map[string]interface{}{
				"participant_id": participant,
				"metric_type":    "steps",
				"timestamp":      fmt.Sprintf("2024-03-%02dT09:00:00Z", i+1),
				"value_1":        4000 + i*500,
			},
			map[string]interface{}{
				"participant_id": participant,
				"metric_type":    "sleep",
				"timestamp":      fmt.Sprintf("2024-03-%02dT22:00:00Z", i+1),
				"value_1":        6.0 + float64(i)*0.2,
			},
		)
	}
	body, _ := json.Marshal(map[string]interface{}{"records": records})
	return body
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/analysis", bytes.NewReader(analysisPayload("p1", 10)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Participants, "p1")
	assert.Contains(t, resp.Participants["p1"].DailyCorrelations, "steps_vs_sleep")
	assert.Equal(t, 20, resp.Quality.TotalRecords)
}

func TestAnalyzeEndpointRejectsMalformedJSON(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestAnalyzeEndpointRejectsEmptyRecords(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader(`{"records":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAnalyzeEndpointRejectsUnknownMetric(t *testing.T) {
	router := testRouter(t)

	body := `{"records":[{"participant_id":"p1","metric_type":"glucose","timestamp":"2024-03-01T09:00:00Z","value_1":5}]}`
	req := httptest.NewRequest(http.MethodPost, "/analysis", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown metric type")
}

func TestHealthCheckEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHealthHandler(logger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "healthcli", resp["service"])
}
