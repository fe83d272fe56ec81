package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeSink struct {
	calls int
	err   error
}

func (f *fakeSink) Log(context.Context, string, string) error {
	f.calls++
	return f.err
}

func TestWebhookAuditor(t *testing.T) {
	var received AuditEntry
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	auditor := NewWebhookAuditor(server.URL)
	if err := auditor.Log(context.Background(), "Player Whitelisted", "a whitelisted b"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if received.Title != "Player Whitelisted" || received.Message != "a whitelisted b" {
		t.Errorf("Unexpected entry: %+v", received)
	}
	if received.ID == "" || received.Timestamp.IsZero() {
		t.Errorf("Expected id and timestamp to be set: %+v", received)
	}
}

func TestWebhookAuditorRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewWebhookAuditor(server.URL).Log(context.Background(), "t", "m")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected a 502 error, got %v", err)
	}
}

func TestMultiAuditor(t *testing.T) {
	ok := &fakeSink{}
	failA := &fakeSink{err: errors.New("webhook down")}
	failB := &fakeSink{err: errors.New("bucket gone")}

	err := MultiAuditor{failA, ok, failB}.Log(context.Background(), "t", "m")
	if err == nil {
		t.Fatal("Expected a combined error")
	}
	if !errors.Is(err, failA.err) || !errors.Is(err, failB.err) {
		t.Errorf("Expected both failures to be reported, got %v", err)
	}
	if ok.calls != 1 || failA.calls != 1 || failB.calls != 1 {
		t.Error("Expected every sink to be called once")
	}

	if err := (MultiAuditor{ok}).Log(context.Background(), "t", "m"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestS3ObjectKey(t *testing.T) {
	entry := AuditEntry{ID: "abc", Timestamp: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)}

	if got := (&S3Auditor{Prefix: "audit"}).ObjectKey(entry); got != "audit/2024-02-29/abc.json" {
		t.Errorf("Unexpected key %q", got)
	}
	if got := (&S3Auditor{}).ObjectKey(entry); got != "2024-02-29/abc.json" {
		t.Errorf("Unexpected key without prefix %q", got)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Inc("a")
	m.Inc("a")
	m.Inc("b")

	snap := m.Snapshot()
	if snap["a"] != 2 || snap["b"] != 1 || m.Get("missing") != 0 {
		t.Errorf("Unexpected counters: %v", snap)
	}
	snap["a"] = 100
	if m.Get("a") != 2 {
		t.Error("Snapshot should be a copy")
	}
}
