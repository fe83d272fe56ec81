// stickybans/main.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stickybans/config"
	"stickybans/database"
	"stickybans/handlers"
	"stickybans/models"
	"stickybans/utils"
)

type Application struct {
	db          *database.DatabaseService
	logger      *slog.Logger
	audit       models.AuditSink
	metrics     *utils.Metrics
	rateLimiter *models.RateLimiter
	cfg         *config.Config
}

// Methods to satisfy the handlers.App interface
func (a *Application) DB() *database.DatabaseService    { return a.db }
func (a *Application) Logger() *slog.Logger             { return a.logger }
func (a *Application) Audit() models.AuditSink          { return a.audit }
func (a *Application) Metrics() *utils.Metrics          { return a.metrics }
func (a *Application) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *Application) Config() *config.Config           { return a.cfg }

func main() {
	// A missing .env is normal in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	dbService, err := database.InitDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	dbService.ConfigurePool(cfg.DBMaxOpen, cfg.DBMaxIdle, cfg.DBConnLifetime)
	defer func() {
		if err := dbService.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	// --- Audit Sink Init ---
	sinks := utils.MultiAuditor{&utils.SlogAuditor{Logger: logger.With("component", "audit")}}
	if cfg.AuditWebhookURL != "" {
		sinks = append(sinks, utils.NewWebhookAuditor(cfg.AuditWebhookURL))
		logger.Info("Audit webhook enabled")
	}
	if cfg.S3.Enabled {
		s3Auditor, err := utils.NewS3Auditor(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, cfg.S3.UseSSL)
		if err != nil {
			logger.Error("Failed to initialize S3 audit archive", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, s3Auditor)
		logger.Info("S3 audit archive initialized", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
	}

	rateLimiter := models.NewRateLimiter(cfg.RateLimitEvery, cfg.RateLimitBurst, cfg.RateLimitPrune, cfg.RateLimitExpire)
	defer rateLimiter.Stop()

	app := &Application{
		db:          dbService,
		logger:      logger,
		audit:       sinks,
		metrics:     utils.NewMetrics(),
		rateLimiter: rateLimiter,
		cfg:         cfg,
	}

	// --- Graceful Shutdown ---
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.SetupRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("stickyban API started",
		"version", config.AppVersion,
		"address", "http://localhost:"+cfg.Port+cfg.BasePath,
		"driver", dbService.Driver(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
