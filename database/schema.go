package database

// devSchema mirrors the slice of the game database this service touches. Production runs
// against the game's own MySQL schema; this copy only backs local SQLite databases.
const devSchema = `
CREATE TABLE IF NOT EXISTS player (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ckey TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS stickyban (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier TEXT NOT NULL,
	reason TEXT NOT NULL,
	message TEXT NOT NULL,
	date TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 1,
	adminid INTEGER,
	FOREIGN KEY (adminid) REFERENCES player(id)
);
CREATE TABLE IF NOT EXISTS stickyban_matched_ckey (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ckey TEXT,
	linked_stickyban INTEGER NOT NULL,
	whitelisted INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (linked_stickyban) REFERENCES stickyban(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS stickyban_matched_cid (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cid TEXT NOT NULL,
	linked_stickyban INTEGER NOT NULL,
	FOREIGN KEY (linked_stickyban) REFERENCES stickyban(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS stickyban_matched_ip (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ip TEXT NOT NULL,
	linked_stickyban INTEGER NOT NULL,
	FOREIGN KEY (linked_stickyban) REFERENCES stickyban(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id INTEGER NOT NULL,
	admin_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	date TEXT NOT NULL,
	is_ban INTEGER NOT NULL DEFAULT 0,
	is_confidential INTEGER NOT NULL DEFAULT 0,
	note_category INTEGER,
	FOREIGN KEY (player_id) REFERENCES player(id),
	FOREIGN KEY (admin_id) REFERENCES player(id)
);

-- --- INDEXES ---
CREATE INDEX IF NOT EXISTS idx_matched_ckey_ckey ON stickyban_matched_ckey(ckey, whitelisted);
CREATE INDEX IF NOT EXISTS idx_matched_ckey_parent ON stickyban_matched_ckey(linked_stickyban);
CREATE INDEX IF NOT EXISTS idx_matched_cid_cid ON stickyban_matched_cid(cid);
CREATE INDEX IF NOT EXISTS idx_matched_cid_parent ON stickyban_matched_cid(linked_stickyban);
CREATE INDEX IF NOT EXISTS idx_matched_ip_ip ON stickyban_matched_ip(ip);
CREATE INDEX IF NOT EXISTS idx_matched_ip_parent ON stickyban_matched_ip(linked_stickyban);
CREATE INDEX IF NOT EXISTS idx_notes_player ON notes(player_id);
`
