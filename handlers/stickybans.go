// stickybans/handlers/stickybans.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stickybans/config"
	"stickybans/database"
	"stickybans/models"
)

// Metric names.
const (
	MetricReadErrors    = "db_read_errors"
	MetricWhitelists    = "whitelist_applied"
	MetricNoteFailures  = "note_failures"
	MetricAuditFailures = "audit_failures"
)

// HandleAllStickybans lists every stickyban with the issuing admin's ckey attached.
func HandleAllStickybans(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleAllStickybans")
	ctx := r.Context()

	stickybans, err := app.DB().AllStickybans(ctx)
	if err != nil {
		readFailed(app, logger, err)
		respondJSON(w, http.StatusOK, []models.Stickyban{}, app)
		return
	}

	// admin id -> ckey, nil when unknown
	resolved := make(map[int64]*string)
	for i := range stickybans {
		adminID := stickybans[i].AdminID
		if adminID == nil {
			continue
		}
		ckey, seen := resolved[*adminID]
		if !seen {
			name, err := app.DB().PlayerCkey(ctx, *adminID)
			switch {
			case err == nil:
				ckey = &name
			case !errors.Is(err, database.ErrNotFound):
				logger.Warn("Failed to resolve admin ckey", "admin_id", *adminID, "error", err)
			}
			resolved[*adminID] = ckey
		}
		stickybans[i].AdminCkey = ckey
	}

	respondJSON(w, http.StatusOK, stickybans, app)
}

// HandleWhitelist excuses a ckey from every stickyban it is matched against.
func HandleWhitelist(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleWhitelist")
	ctx := r.Context()

	admin, ok := AdminFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Admin identity required.", app)
		return
	}
	adminID, err := app.DB().PlayerID(ctx, admin.Username)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			logger.Error("Failed to resolve admin", "admin", admin.Username, "error", err)
		}
		respondError(w, http.StatusUnauthorized, "Unknown admin.", app)
		return
	}

	ckey := r.URL.Query().Get("ckey")
	if ckey == "" {
		respondError(w, http.StatusBadRequest, "A ckey is required.", app)
		return
	}
	playerID, err := app.DB().PlayerID(ctx, ckey)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			logger.Error("Failed to resolve player", "ckey", ckey, "error", err)
		}
		respondError(w, http.StatusBadRequest, "Unknown player.", app)
		return
	}

	affected, err := app.DB().WhitelistCkey(ctx, ckey)
	if err != nil {
		logger.Error("Failed to whitelist ckey", "ckey", ckey, "admin", admin.Username, "error", err)
		respondError(w, http.StatusForbidden, "Whitelist update failed.", app)
		return
	}

	// Update, note and audit entry are independent writes. A failure after the update
	// leaves the whitelist in place without its paper trail.
	if affected > 0 {
		app.Metrics().Inc(MetricWhitelists)
		logger.Info("Player whitelisted", "ckey", ckey, "admin", admin.Username, "rows", affected)

		_, err := app.DB().CreateNote(ctx, models.Note{
			PlayerID:       playerID,
			AdminID:        adminID,
			Text:           config.WhitelistNoteText,
			IsConfidential: true,
			NoteCategory:   config.WhitelistNoteCategory,
		})
		if err != nil {
			app.Metrics().Inc(MetricNoteFailures)
			logger.Error("Failed to create whitelist note", "ckey", ckey, "error", err)
		}

		message := fmt.Sprintf("%s whitelisted %s against all matching stickybans.", admin.Username, ckey)
		if err := app.Audit().Log(ctx, config.WhitelistAuditTitle, message); err != nil {
			app.Metrics().Inc(MetricAuditFailures)
			logger.Error("Failed to emit audit entry", "ckey", ckey, "error", err)
		}
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleMatchedCids lists the client ids linked to a stickyban.
func HandleMatchedCids(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleMatchedCids")
	id, ok := stickybanID(w, r, app)
	if !ok {
		return
	}
	matches, err := app.DB().MatchedCids(r.Context(), id)
	if err != nil {
		readFailed(app, logger, err)
		matches = []models.StickybanMatchedCid{}
	}
	respondJSON(w, http.StatusOK, matches, app)
}

// HandleMatchedCkeys lists the non-whitelisted ckeys linked to a stickyban.
func HandleMatchedCkeys(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleMatchedCkeys")
	id, ok := stickybanID(w, r, app)
	if !ok {
		return
	}
	matches, err := app.DB().MatchedCkeys(r.Context(), id)
	if err != nil {
		readFailed(app, logger, err)
		matches = []models.StickybanMatchedCkey{}
	}
	respondJSON(w, http.StatusOK, matches, app)
}

// HandleMatchedIps lists the IP addresses linked to a stickyban.
func HandleMatchedIps(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleMatchedIps")
	id, ok := stickybanID(w, r, app)
	if !ok {
		return
	}
	matches, err := app.DB().MatchedIps(r.Context(), id)
	if err != nil {
		readFailed(app, logger, err)
		matches = []models.StickybanMatchedIp{}
	}
	respondJSON(w, http.StatusOK, matches, app)
}

// HandleStickybansByCid lists the active stickybans matching a client id.
func HandleStickybansByCid(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleStickybansByCid")
	cid, ok := requiredQuery(w, r, app, "cid")
	if !ok {
		return
	}
	matches, err := app.DB().CidMatches(r.Context(), cid)
	if err != nil {
		readFailed(app, logger, err)
		respondJSON(w, http.StatusOK, []models.Stickyban{}, app)
		return
	}
	respondJSON(w, http.StatusOK, app.DB().StickybansForMatches(r.Context(), models.AsMatches(matches)), app)
}

// HandleStickybansByCkey lists the active stickybans still enforced against a ckey.
func HandleStickybansByCkey(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleStickybansByCkey")
	ckey, ok := requiredQuery(w, r, app, "ckey")
	if !ok {
		return
	}
	matches, err := app.DB().CkeyMatches(r.Context(), ckey)
	if err != nil {
		readFailed(app, logger, err)
		respondJSON(w, http.StatusOK, []models.Stickyban{}, app)
		return
	}
	respondJSON(w, http.StatusOK, app.DB().StickybansForMatches(r.Context(), models.AsMatches(matches)), app)
}

// HandleStickybansByIp lists the active stickybans matching an IP address.
func HandleStickybansByIp(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleStickybansByIp")
	ip, ok := requiredQuery(w, r, app, "ip")
	if !ok {
		return
	}
	matches, err := app.DB().IpMatches(r.Context(), ip)
	if err != nil {
		readFailed(app, logger, err)
		respondJSON(w, http.StatusOK, []models.Stickyban{}, app)
		return
	}
	respondJSON(w, http.StatusOK, app.DB().StickybansForMatches(r.Context(), models.AsMatches(matches)), app)
}

// --- Helpers ---

// readFailed records a read-path query failure. Read routes answer with an empty list.
func readFailed(app App, logger *slog.Logger, err error) {
	app.Metrics().Inc(MetricReadErrors)
	logger.Error("Read query failed, returning empty result", "error", err)
}

func stickybanID(w http.ResponseWriter, r *http.Request, app App) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found.", app)
		return 0, false
	}
	return id, true
}

func requiredQuery(w http.ResponseWriter, r *http.Request, app App, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Query parameter '%s' is required.", name), app)
		return "", false
	}
	return v, true
}
