package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Capstone-E1/soilsense_backend/config"
	"github.com/Capstone-E1/soilsense_backend/internal/metrics"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
	"github.com/Capstone-E1/soilsense_backend/internal/store"
	"github.com/Capstone-E1/soilsense_backend/internal/views"
)

var base = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func readings(n int) []models.Reading {
	out := make([]models.Reading, n)
	for i := range out {
		v := float64(i)
		out[i] = models.Reading{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Depths:    [models.DepthCount]float64{v, v + 0.1, v + 0.2, v + 0.3, v + 0.4},
		}
	}
	return out
}

type testServer struct {
	store   *store.Store
	router  http.Handler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, n int) *testServer {
	t.Helper()
	require.NoError(t, views.LoadTemplates())

	s := store.NewStore()
	if n > 0 {
		s.Replace(readings(n), "test")
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	feed := services.NewFeed(s, m)
	h := NewHandlers(s, feed, services.DefaultSchema(), 30)

	cfg := config.ServerConfig{AllowedOrigins: []string{"*"}}
	return &testServer{
		store:   s,
		router:  SetupRoutes(cfg, h, nil, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		metrics: m,
	}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeReading(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal(body, &obj))
	return obj
}

func TestGetRecentReadings_Empty(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.get(t, "/api/dados")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetRecentReadings_Window(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		wantLen   int
		wantFirst float64
	}{
		{name: "smaller than window", size: 10, wantLen: 10, wantFirst: 0},
		{name: "exactly window", size: 30, wantLen: 30, wantFirst: 0},
		{name: "larger than window", size: 100, wantLen: 30, wantFirst: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.size)

			rec := ts.get(t, "/api/dados")
			require.Equal(t, http.StatusOK, rec.Code)

			var got []map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got[0]["depth_1"])

			// Chronological, oldest first
			var prev string
			for _, r := range got {
				stamp, ok := r["timestamp"].(string)
				require.True(t, ok)
				assert.Greater(t, stamp, prev)
				prev = stamp
			}
		})
	}
}

func TestGetRecentReadings_DoesNotMoveCursor(t *testing.T) {
	ts := newTestServer(t, 5)

	ts.get(t, "/api/dados")
	ts.get(t, "/api/dados")

	assert.Equal(t, 0, ts.store.Snapshot().CursorPosition)
}

func TestGetCurrentReading_CyclesAndWraps(t *testing.T) {
	ts := newTestServer(t, 3)

	want := []float64{0, 1, 2, 0, 1}
	for i, depth := range want {
		rec := ts.get(t, "/api/dados_atuais")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)

		obj := decodeReading(t, rec.Body.Bytes())
		assert.Equal(t, depth, obj["depth_1"], "request %d", i)
		assert.Contains(t, obj, "timestamp")
		for _, key := range []string{"depth_1", "depth_2", "depth_3", "depth_4", "depth_5"} {
			assert.Contains(t, obj, key)
		}
	}
}

func TestGetCurrentReading_NoData(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.get(t, "/api/dados_atuais")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, NoDataMessage, resp.Error)
}

func TestGetStatus(t *testing.T) {
	ts := newTestServer(t, 4)
	ts.get(t, "/api/dados_atuais")

	rec := ts.get(t, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    store.Status `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Data.Readings)
	assert.Equal(t, 1, resp.Data.CursorPosition)
	assert.Equal(t, "test", resp.Data.Source)
}

func TestGetDepthStats(t *testing.T) {
	ts := newTestServer(t, 3)

	rec := ts.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                    `json:"success"`
		Data    []services.DepthSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, models.DepthCount)
	assert.Equal(t, "depth_1", resp.Data[0].Depth)
	assert.InDelta(t, 1.0, resp.Data[0].Mean, 1e-9)
	assert.Equal(t, 2.0, resp.Data[0].Max)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestExportCSV(t *testing.T) {
	ts := newTestServer(t, 2)

	rec := ts.get(t, "/api/export/dados.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "data_hora,"))
}

func TestExportExcel(t *testing.T) {
	ts := newTestServer(t, 2)

	rec := ts.get(t, "/api/export/dados.xlsx")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	// xlsx is a zip archive
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, path := range []string{"/", "/mapa", "/dashboard"} {
		rec := ts.get(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}

	req := httptest.NewRequest(http.MethodPost, "/mapa", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.get(t, "/dashboard?device_id=sensor-7")
	assert.Contains(t, rec.Body.String(), "sensor-7")

	rec = ts.get(t, "/dashboard")
	assert.Contains(t, rec.Body.String(), views.DefaultDeviceID)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, 2)
	ts.get(t, "/api/dados_atuais")

	rec := ts.get(t, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "soilsense_feed_served_total 1")
}
