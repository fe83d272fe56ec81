package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"stickybans/config"
	"stickybans/models"
	"stickybans/utils"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const AdminKey ContextKey = "admin"

// AdminFromContext returns the admin identity attached by AdminIdentity, if any.
func AdminFromContext(ctx context.Context) (models.Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(models.Admin)
	return admin, ok && admin.Username != ""
}

// AdminIdentity reads the admin username forwarded by the authenticating proxy. When a
// proxy secret hash is configured, the identity is only trusted if the request also carries
// the matching secret.
func AdminIdentity(app App) func(http.Handler) http.Handler {
	cfg := app.Config()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.TrimSpace(r.Header.Get(cfg.AdminHeader))
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !utils.VerifyProxySecret(cfg.ProxySecretHash, r.Header.Get(config.ProxySecretHeader)) {
				app.Logger().Warn("Ignoring admin identity with bad proxy secret", "admin", username, "ip", utils.GetIPAddress(r))
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), AdminKey, models.Admin{Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects clients that exceed their request budget with 429.
func RateLimit(app App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !app.RateLimiter().Allow(utils.GetIPAddress(r)) {
				w.Header().Set("Retry-After", "1")
				respondError(w, http.StatusTooManyRequests, "Too many requests.", app)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewStructuredLogger logs one line per request through slog.
func NewStructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("Request handled",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
					"ip", utils.GetIPAddress(r),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
