package sqlite

// ─── Ledger Schema ──────────────────────────────────────────────────────────

// LedgerMigrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func LedgerMigrations() []string {
	return []string{
		// One profile per identity; balance can never go negative.
		`CREATE TABLE IF NOT EXISTS profiles (
			identity      TEXT PRIMARY KEY,
			username      TEXT NOT NULL CHECK (length(trim(username)) > 0),
			email         TEXT NOT NULL DEFAULT '',
			balance       INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
			registered_at TEXT NOT NULL
		)`,

		// Explicit role assignments. Absence means derived role.
		`CREATE TABLE IF NOT EXISTS roles (
			identity    TEXT PRIMARY KEY,
			role        TEXT NOT NULL CHECK (role IN ('admin', 'user', 'guest')),
			assigned_by TEXT NOT NULL DEFAULT '',
			updated_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_roles_role ON roles(role)`,

		// Ad catalog, seeded by the administration surface.
		`CREATE TABLE IF NOT EXISTS ads (
			id               INTEGER PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL CHECK (duration_seconds > 0),
			reward_amount    INTEGER NOT NULL CHECK (reward_amount > 0),
			updated_at       TEXT NOT NULL
		)`,

		// Watch events. UNIQUE(identity, ad_id, day) rejects a second claim.
		`CREATE TABLE IF NOT EXISTS watch_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			identity   TEXT NOT NULL REFERENCES profiles(identity),
			ad_id      INTEGER NOT NULL,
			day        TEXT NOT NULL,
			watched_at TEXT NOT NULL,
			reward     INTEGER NOT NULL,
			UNIQUE(identity, ad_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_identity_day ON watch_events(identity, day)`,

		// Withdrawal requests.
		`CREATE TABLE IF NOT EXISTS withdrawal_requests (
			id           TEXT PRIMARY KEY,
			identity     TEXT NOT NULL REFERENCES profiles(identity),
			amount       INTEGER NOT NULL CHECK (amount > 0),
			status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
			requested_at TEXT NOT NULL,
			decided_at   TEXT,
			decided_by   TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawal_identity ON withdrawal_requests(identity, status)`,
		`CREATE INDEX IF NOT EXISTS idx_withdrawal_status ON withdrawal_requests(status)`,

		// Credit journal: one row per balance mutation.
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ts          TEXT NOT NULL,
			tx_type     TEXT NOT NULL,
			entry_type  TEXT NOT NULL CHECK (entry_type IN ('CREDIT', 'DEBIT')),
			identity    TEXT NOT NULL,
			amount      INTEGER NOT NULL CHECK (amount > 0),
			reference   TEXT NOT NULL DEFAULT '',
			balance     INTEGER NOT NULL CHECK (balance >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_identity ON ledger_entries(identity)`,
	}
}
