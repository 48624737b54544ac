package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/export"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
	"github.com/Capstone-E1/soilsense_backend/internal/store"
	"github.com/Capstone-E1/soilsense_backend/internal/views"
)

// NoDataMessage is the error text returned when the feed has nothing to serve
const NoDataMessage = "Nenhum dado carregado"

// Handlers contains all HTTP request handlers
type Handlers struct {
	store         store.DataStore
	feed          *services.Feed
	exportService *export.ExportService
	schema        services.Schema
	recentWindow  int
}

// NewHandlers creates a new handlers instance
func NewHandlers(dataStore store.DataStore, feed *services.Feed, schema services.Schema, recentWindow int) *Handlers {
	return &Handlers{
		store:         dataStore,
		feed:          feed,
		exportService: export.NewExportService(schema),
		schema:        schema,
		recentWindow:  recentWindow,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GetRecentReadings returns the last readings of the dataset in chronological
// order as a bare JSON array. An empty dataset yields [].
func (h *Handlers) GetRecentReadings(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.store.Tail(h.recentWindow))
}

// GetCurrentReading serves the reading under the shared feed cursor and
// advances it, wrapping to the start after the last reading.
func (h *Handlers) GetCurrentReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.feed.Next()
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			h.sendErrorResponse(w, NoDataMessage, http.StatusNotFound)
			return
		}
		slog.Error("feed next failed", "error", err)
		h.sendErrorResponse(w, "Failed to read current reading", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, http.StatusOK, reading)
}

// GetStatus reports the loaded dataset and cursor position
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    h.store.Snapshot(),
	})
}

// GetDepthStats returns per depth statistics over the whole dataset
func (h *Handlers) GetDepthStats(w http.ResponseWriter, r *http.Request) {
	summaries, err := services.SummarizeDepths(h.store.All(), h.schema)
	if err != nil {
		slog.Error("summarize depths", "error", err)
		h.sendErrorResponse(w, "Failed to compute statistics", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    summaries,
	})
}

// Health reports liveness only; an empty dataset is still healthy
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ExportExcel streams the whole dataset as a workbook
func (h *Handlers) ExportExcel(w http.ResponseWriter, r *http.Request) {
	readings := h.store.All()
	meta := export.ExportMetadata{
		GeneratedAt: time.Now(),
		Source:      h.store.Snapshot().Source,
	}

	excelFile, err := h.exportService.GenerateExcel(readings, meta)
	if err != nil {
		slog.Error("generate workbook", "error", err)
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer excelFile.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(meta.GeneratedAt, "xlsx")))

	if err := excelFile.Write(w); err != nil {
		slog.Warn("write workbook", "error", err)
	}
}

// ExportCSV streams the whole dataset as CSV
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(time.Now(), "csv")))

	if err := h.exportService.WriteCSV(w, h.store.All()); err != nil {
		slog.Warn("write csv", "error", err)
	}
}

func exportFilename(t time.Time, ext string) string {
	return fmt.Sprintf("soilsense_dados_%s.%s", t.Format("20060102_150405"), ext)
}

// IndexPage serves the access page
func (h *Handlers) IndexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderIndex(w); err != nil {
		h.renderFailed(w, err)
	}
}

// MapPage serves the sensor map page for both GET and POST
func (h *Handlers) MapPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderMap(w); err != nil {
		h.renderFailed(w, err)
	}
}

// DashboardPage serves the live dashboard for the device in ?device_id=
func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	data := &views.DashboardData{
		DeviceID:     r.URL.Query().Get("device_id"),
		DepthLabels:  h.schema.DepthColumns[:],
		RecentWindow: h.recentWindow,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderDashboard(w, data); err != nil {
		h.renderFailed(w, err)
	}
}

func (h *Handlers) renderFailed(w http.ResponseWriter, err error) {
	slog.Error("render page", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Handlers) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// sendErrorResponse sends an error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}
