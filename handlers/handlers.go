// stickybans/handlers/handlers.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stickybans/config"
	"stickybans/database"
	"stickybans/models"
	"stickybans/utils"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	DB() *database.DatabaseService
	Logger() *slog.Logger
	Audit() models.AuditSink
	Metrics() *utils.Metrics
	RateLimiter() *models.RateLimiter
	Config() *config.Config
}

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// respondError sends {"error": msg} with the given status.
func respondError(w http.ResponseWriter, status int, msg string, app App) {
	respondJSON(w, status, map[string]string{"error": msg}, app)
}

// MakeHandler adapts an App-aware handler to http.HandlerFunc.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request, app App) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": config.AppVersion}, app)
}

// HandleMetrics serves a snapshot of the in-memory counters.
func HandleMetrics(w http.ResponseWriter, r *http.Request, app App) {
	respondJSON(w, http.StatusOK, app.Metrics().Snapshot(), app)
}
