package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stickybans/config"
	"stickybans/models"
)

func TestAdminIdentity(t *testing.T) {
	app := newMockApp(t, nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("proxy-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash secret: %v", err)
	}

	var got models.Admin
	var found bool
	handler := AdminIdentity(app)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = AdminFromContext(r.Context())
	}))

	testCases := []struct {
		name       string
		secretHash string
		username   string
		secret     string
		wantFound  bool
	}{
		{"No header", "", "", "", false},
		{"Blank header", "", "   ", "", false},
		{"Trusted without configured secret", "", "headmin", "", true},
		{"Correct proxy secret", string(hash), "headmin", "proxy-secret", true},
		{"Wrong proxy secret", string(hash), "headmin", "guess", false},
		{"Missing proxy secret", string(hash), "headmin", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app.cfg.ProxySecretHash = tc.secretHash
			got, found = models.Admin{}, false

			req := httptest.NewRequest("GET", "/", nil)
			if tc.username != "" {
				req.Header.Set(config.DefaultAdminHeader, tc.username)
			}
			if tc.secret != "" {
				req.Header.Set(config.ProxySecretHeader, tc.secret)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if found != tc.wantFound {
				t.Fatalf("Expected found=%v, got %v", tc.wantFound, found)
			}
			if found && got.Username != tc.username {
				t.Errorf("Expected admin %q, got %q", tc.username, got.Username)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := newMockApp(t, nil)
	app.rateLimiter.Stop()
	app.rateLimiter = models.NewRateLimiter(time.Hour, 2, time.Hour, time.Hour)
	t.Cleanup(app.rateLimiter.Stop)

	handler := RateLimit(app)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/health", nil)
		req.RemoteAddr = ip + ":4000"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := request("192.0.2.10"); rr.Code != http.StatusNoContent {
			t.Fatalf("Request %d: expected 204, got %d", i+1, rr.Code)
		}
	}
	rr := request("192.0.2.10")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 once the burst is spent, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
	if rr := request("192.0.2.11"); rr.Code != http.StatusNoContent {
		t.Errorf("Expected a different client to be unaffected, got %d", rr.Code)
	}
}
