package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stickybans/models"
	"stickybans/utils"
)

// PlayerID looks up a player's numeric id by ckey.
func (ds *DatabaseService) PlayerID(ctx context.Context, ckey string) (int64, error) {
	var id int64
	err := ds.DB.QueryRowContext(ctx, "SELECT id FROM player WHERE ckey = ?", ckey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up player %q: %w", ckey, err)
	}
	return id, nil
}

// PlayerCkey looks up a player's ckey by numeric id.
func (ds *DatabaseService) PlayerCkey(ctx context.Context, id int64) (string, error) {
	var ckey string
	err := ds.DB.QueryRowContext(ctx, "SELECT ckey FROM player WHERE id = ?", id).Scan(&ckey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up player %d: %w", id, err)
	}
	return ckey, nil
}

// CreateNote attaches an administrative note to a player and returns its id.
func (ds *DatabaseService) CreateNote(ctx context.Context, note models.Note) (int64, error) {
	if note.Date.IsZero() {
		note.Date = utils.GetSQLTime()
	}
	res, err := ds.DB.ExecContext(ctx,
		"INSERT INTO notes (player_id, admin_id, text, date, is_ban, is_confidential, note_category) VALUES (?, ?, ?, ?, 0, ?, ?)",
		note.PlayerID, note.AdminID, note.Text, utils.FormatSQLTime(note.Date), utils.BtoI(note.IsConfidential), note.NoteCategory)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read note id: %w", err)
	}
	return id, nil
}
