package models

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 2, time.Hour, time.Hour)
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("Expected the burst to be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("Expected the third request to be limited")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("Expected a separate client to have its own budget")
	}

	if removed := rl.Prune(time.Now().Add(-time.Minute)); removed != 0 {
		t.Errorf("Expected nothing pruned, got %d", removed)
	}
	if removed := rl.Prune(time.Now().Add(time.Minute)); removed != 2 {
		t.Errorf("Expected 2 limiters pruned, got %d", removed)
	}
	if !rl.Allow("1.1.1.1") {
		t.Error("Expected a pruned client to start over")
	}

	rl.Stop()
	rl.Stop()
}

func TestAsMatches(t *testing.T) {
	ckey := "alt"
	rows := []StickybanMatchedCkey{{ID: 1, Ckey: &ckey, LinkedStickyban: 5}, {ID: 2, LinkedStickyban: 9}}

	matches := AsMatches(rows)
	if len(matches) != 2 || matches[0].ParentID() != 5 || matches[1].ParentID() != 9 {
		t.Errorf("Unexpected matches: %#v", matches)
	}
	if got := AsMatches([]StickybanMatchedIp(nil)); got == nil || len(got) != 0 {
		t.Errorf("Expected an empty, non-nil slice, got %#v", got)
	}
}
