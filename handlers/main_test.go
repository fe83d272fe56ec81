package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stickybans/config"
	"stickybans/database"
	"stickybans/models"
	"stickybans/utils"
)

// MockApplication holds dependencies for handler tests.
type MockApplication struct {
	db          *database.DatabaseService
	logger      *slog.Logger
	audit       *recordingAuditor
	metrics     *utils.Metrics
	rateLimiter *models.RateLimiter
	cfg         *config.Config
}

func (a *MockApplication) DB() *database.DatabaseService    { return a.db }
func (a *MockApplication) Logger() *slog.Logger             { return a.logger }
func (a *MockApplication) Audit() models.AuditSink          { return a.audit }
func (a *MockApplication) Metrics() *utils.Metrics          { return a.metrics }
func (a *MockApplication) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *MockApplication) Config() *config.Config           { return a.cfg }

type auditRecord struct {
	Title   string
	Message string
}

// recordingAuditor keeps every entry in memory so tests can assert on side effects.
type recordingAuditor struct {
	mu      sync.Mutex
	entries []auditRecord
	err     error
}

func (r *recordingAuditor) Log(_ context.Context, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, auditRecord{Title: title, Message: message})
	return r.err
}

func (r *recordingAuditor) Entries() []auditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auditRecord(nil), r.entries...)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            config.DefaultPort,
		DatabaseURL:     "sqlite3://test.db",
		BasePath:        config.DefaultBasePath,
		LogLevel:        config.DefaultLogLevel,
		AdminHeader:     config.DefaultAdminHeader,
		DBMaxOpen:       config.DefaultDBMaxOpen,
		DBMaxIdle:       config.DefaultDBMaxIdle,
		RateLimitEvery:  time.Millisecond,
		RateLimitBurst:  1000,
		RateLimitPrune:  time.Hour,
		RateLimitExpire: 24 * time.Hour,
	}
}

// newMockApp wires a MockApplication around an existing database service.
func newMockApp(t *testing.T, db *database.DatabaseService) *MockApplication {
	cfg := testConfig()
	app := &MockApplication{
		db:          db,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		audit:       &recordingAuditor{},
		metrics:     utils.NewMetrics(),
		rateLimiter: models.NewRateLimiter(cfg.RateLimitEvery, cfg.RateLimitBurst, cfg.RateLimitPrune, cfg.RateLimitExpire),
		cfg:         cfg,
	}
	t.Cleanup(app.rateLimiter.Stop)
	return app
}

// setupTestApp creates a full application stack with a SQLite test database.
func setupTestApp(t *testing.T) *MockApplication {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	dbDir, err := os.MkdirTemp("", "stickybans_test_db_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir for test DB: %v", err)
	}
	dbService, err := database.InitDB("sqlite3://"+filepath.Join(dbDir, "test.db")+"?_foreign_keys=on", logger)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	t.Cleanup(func() {
		dbService.DB.Close()
		os.RemoveAll(dbDir)
	})

	return newMockApp(t, dbService)
}

func (a *MockApplication) exec(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	res, err := a.db.DB.Exec(query, args...)
	if err != nil {
		t.Fatalf("Exec %q failed: %v", query, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func (a *MockApplication) count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := a.db.DB.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Count %q failed: %v", query, err)
	}
	return n
}

// serve runs a request through the full router.
func serve(app App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	SetupRouter(app).ServeHTTP(rr, req)
	return rr
}

func asAdmin(req *http.Request, ckey string) *http.Request {
	req.Header.Set(config.DefaultAdminHeader, ckey)
	return req
}
