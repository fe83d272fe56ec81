// stickybans/database/stickybans.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"stickybans/models"
)

const stickybanColumns = "id, identifier, reason, message, date, active, adminid"

// AllStickybans returns every stickyban, active or not.
func (ds *DatabaseService) AllStickybans(ctx context.Context) ([]models.Stickyban, error) {
	rows, err := ds.DB.QueryContext(ctx, "SELECT "+stickybanColumns+" FROM stickyban ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query stickybans: %w", err)
	}
	defer ds.closeRows(rows, "AllStickybans")
	return scanStickybans(rows)
}

// ActiveStickybansByID returns the active stickybans among ids. Duplicate ids are harmless.
func (ds *DatabaseService) ActiveStickybansByID(ctx context.Context, ids []int64) ([]models.Stickyban, error) {
	if len(ids) == 0 {
		return []models.Stickyban{}, nil
	}
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	query := "SELECT " + stickybanColumns + " FROM stickyban WHERE id IN (" + placeholders(len(ids)) + ") AND active = 1 ORDER BY id"
	rows, err := ds.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stickybans by id: %w", err)
	}
	defer ds.closeRows(rows, "ActiveStickybansByID")
	return scanStickybans(rows)
}

// StickybansForMatches resolves match rows of any kind to their distinct, active parent
// stickybans. A database failure yields an empty list.
func (ds *DatabaseService) StickybansForMatches(ctx context.Context, matches []models.StickybanMatch) []models.Stickyban {
	unique := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		unique[m.ParentID()] = struct{}{}
	}
	ids := make([]int64, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	stickybans, err := ds.ActiveStickybansByID(ctx, ids)
	if err != nil {
		ds.logger.Error("Failed to resolve parent stickybans", "parent_ids", ids, "error", err)
		return []models.Stickyban{}
	}
	return stickybans
}

// --- Match Tables ---

// MatchedCids returns the client ids linked to a stickyban.
func (ds *DatabaseService) MatchedCids(ctx context.Context, stickybanID int64) ([]models.StickybanMatchedCid, error) {
	return queryRows(ctx, ds, "MatchedCids", scanMatchedCid,
		"SELECT id, cid, linked_stickyban FROM stickyban_matched_cid WHERE linked_stickyban = ? ORDER BY id", stickybanID)
}

// CidMatches returns every match row for a client id.
func (ds *DatabaseService) CidMatches(ctx context.Context, cid string) ([]models.StickybanMatchedCid, error) {
	return queryRows(ctx, ds, "CidMatches", scanMatchedCid,
		"SELECT id, cid, linked_stickyban FROM stickyban_matched_cid WHERE cid = ? ORDER BY id", cid)
}

// MatchedCkeys returns the still-enforced ckeys linked to a stickyban.
func (ds *DatabaseService) MatchedCkeys(ctx context.Context, stickybanID int64) ([]models.StickybanMatchedCkey, error) {
	return queryRows(ctx, ds, "MatchedCkeys", scanMatchedCkey,
		"SELECT id, ckey, linked_stickyban, whitelisted FROM stickyban_matched_ckey WHERE linked_stickyban = ? AND whitelisted = 0 ORDER BY id", stickybanID)
}

// CkeyMatches returns the non-whitelisted match rows for a ckey.
func (ds *DatabaseService) CkeyMatches(ctx context.Context, ckey string) ([]models.StickybanMatchedCkey, error) {
	return queryRows(ctx, ds, "CkeyMatches", scanMatchedCkey,
		"SELECT id, ckey, linked_stickyban, whitelisted FROM stickyban_matched_ckey WHERE ckey = ? AND whitelisted = 0 ORDER BY id", ckey)
}

// MatchedIps returns the IP addresses linked to a stickyban.
func (ds *DatabaseService) MatchedIps(ctx context.Context, stickybanID int64) ([]models.StickybanMatchedIp, error) {
	return queryRows(ctx, ds, "MatchedIps", scanMatchedIp,
		"SELECT id, ip, linked_stickyban FROM stickyban_matched_ip WHERE linked_stickyban = ? ORDER BY id", stickybanID)
}

// IpMatches returns every match row for an IP address.
func (ds *DatabaseService) IpMatches(ctx context.Context, ip string) ([]models.StickybanMatchedIp, error) {
	return queryRows(ctx, ds, "IpMatches", scanMatchedIp,
		"SELECT id, ip, linked_stickyban FROM stickyban_matched_ip WHERE ip = ? ORDER BY id", ip)
}

// WhitelistCkey excuses a ckey from every stickyban it is currently matched against and
// reports how many match rows changed. Already whitelisted rows are left alone, so a repeat
// call affects nothing.
func (ds *DatabaseService) WhitelistCkey(ctx context.Context, ckey string) (int64, error) {
	res, err := ds.DB.ExecContext(ctx, "UPDATE stickyban_matched_ckey SET whitelisted = 1 WHERE ckey = ? AND whitelisted = 0", ckey)
	if err != nil {
		return 0, fmt.Errorf("failed to whitelist ckey: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// --- Internal Helpers ---

func queryRows[T any](ctx context.Context, ds *DatabaseService, where string, scan func(*sql.Rows) (T, error), query string, args ...interface{}) ([]T, error) {
	rows, err := ds.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", where, err)
	}
	defer ds.closeRows(rows, where)

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", where, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row error: %w", where, err)
	}
	return out, nil
}

func scanStickybans(rows *sql.Rows) ([]models.Stickyban, error) {
	stickybans := make([]models.Stickyban, 0)
	for rows.Next() {
		var s models.Stickyban
		if err := rows.Scan(&s.ID, &s.Identifier, &s.Reason, &s.Message, &s.Date, &s.Active, &s.AdminID); err != nil {
			return nil, fmt.Errorf("failed to scan stickyban row: %w", err)
		}
		stickybans = append(stickybans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stickybans, nil
}

func scanMatchedCid(rows *sql.Rows) (models.StickybanMatchedCid, error) {
	var m models.StickybanMatchedCid
	err := rows.Scan(&m.ID, &m.Cid, &m.LinkedStickyban)
	return m, err
}

func scanMatchedCkey(rows *sql.Rows) (models.StickybanMatchedCkey, error) {
	var m models.StickybanMatchedCkey
	err := rows.Scan(&m.ID, &m.Ckey, &m.LinkedStickyban, &m.Whitelisted)
	return m, err
}

func scanMatchedIp(rows *sql.Rows) (models.StickybanMatchedIp, error) {
	var m models.StickybanMatchedIp
	err := rows.Scan(&m.ID, &m.IP, &m.LinkedStickyban)
	return m, err
}
