package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/metgate/pkg/domain/interfaces"
)

// WeatherHandler serves Met Office forecast data
type WeatherHandler struct {
	forecastUC interfaces.ForecastUseCase
}

// NewWeatherHandler creates a new WeatherHandler
func NewWeatherHandler(forecastUC interfaces.ForecastUseCase) *WeatherHandler {
	return &WeatherHandler{
		forecastUC: forecastUC,
	}
}

// HandleCurrent serves the latest current conditions
func (h *WeatherHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	current, err := h.forecastUC.Current(r.Context())
	if err != nil {
		writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, current)
}

// HandleHourly serves the hourly forecast
func (h *WeatherHandler) HandleHourly(w http.ResponseWriter, r *http.Request) {
	entries, err := h.forecastUC.Hourly(r.Context())
	if err != nil {
		writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"forecast": entries})
}

// HandleDaily serves the daily forecast
func (h *WeatherHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	entries, err := h.forecastUC.Daily(r.Context())
	if err != nil {
		writeForecastError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"forecast": entries})
}

func writeForecastError(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.From(r.Context()).Error("Failed to get forecast", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, interfaces.ErrNoSnapshot) {
		status = http.StatusNotFound
	}
	writeError(w, err, status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// GateHistoryHandler serves recent release gate runs
type GateHistoryHandler struct {
	store interfaces.Store
}

// NewGateHistoryHandler creates a new GateHistoryHandler
func NewGateHistoryHandler(store interfaces.Store) *GateHistoryHandler {
	return &GateHistoryHandler{
		store: store,
	}
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Handle serves the newest gate runs, most recent first
func (h *GateHistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, errors.New("invalid limit parameter"), http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	runs, err := h.store.ListGateRuns(r.Context(), limit)
	if err != nil {
		ctxlog.From(r.Context()).Error("Failed to list gate runs", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, map[string]any{"runs": runs})
}
