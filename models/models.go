// stickybans/models/models.go
package models

import "time"

// --- Stickyban Records ---

// Stickyban is a persistent ban entry enforced against every identifier matched to it.
type Stickyban struct {
	ID         int64   `json:"id"`
	Identifier string  `json:"identifier"`
	Reason     string  `json:"reason"`
	Message    string  `json:"message"`
	Date       string  `json:"date"`
	Active     int     `json:"active"`
	AdminID    *int64  `json:"adminId"`
	AdminCkey  *string `json:"adminCkey"` // Resolved at read time, never stored
}

// StickybanMatch is any match row that points back at a parent stickyban.
type StickybanMatch interface {
	ParentID() int64
}

type StickybanMatchedCid struct {
	ID              int64  `json:"id"`
	Cid             string `json:"cid"`
	LinkedStickyban int64  `json:"linked_stickyban"`
}

func (m StickybanMatchedCid) ParentID() int64 { return m.LinkedStickyban }

type StickybanMatchedCkey struct {
	ID              int64   `json:"id"`
	Ckey            *string `json:"ckey"`
	LinkedStickyban int64   `json:"linked_stickyban"`
	Whitelisted     int     `json:"whitelisted"`
}

func (m StickybanMatchedCkey) ParentID() int64 { return m.LinkedStickyban }

type StickybanMatchedIp struct {
	ID              int64  `json:"id"`
	IP              string `json:"ip"`
	LinkedStickyban int64  `json:"linked_stickyban"`
}

func (m StickybanMatchedIp) ParentID() int64 { return m.LinkedStickyban }

// AsMatches widens a typed slice of match rows so it can be handed to the shared resolver.
func AsMatches[T StickybanMatch](rows []T) []StickybanMatch {
	matches := make([]StickybanMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, row)
	}
	return matches
}

// --- Players & Administration ---

// Admin is the identity handed to us by the authenticating proxy.
type Admin struct {
	Username string
}

// Note is an administrative note attached to a player's account.
type Note struct {
	ID             int64
	PlayerID       int64
	AdminID        int64
	Text           string
	Date           time.Time
	IsConfidential bool
	NoteCategory   int
}
