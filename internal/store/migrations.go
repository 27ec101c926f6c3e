package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Saved signatures: both artifacts plus the recorded stroke
		`CREATE TABLE IF NOT EXISTS signatures (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT 'capture' CHECK(purpose IN ('capture', 'register', 'validate')),
			png BLOB NOT NULL,
			svg TEXT NOT NULL,
			coordinates TEXT NOT NULL DEFAULT '',
			thumbnail BLOB,
			stroke TEXT NOT NULL DEFAULT '[]',
			segments INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Deliveries: each hand-off of a signature to an upload hook
		`CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			signature_id TEXT NOT NULL REFERENCES signatures(id) ON DELETE CASCADE,
			hook TEXT NOT NULL,
			action TEXT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			message TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_signatures_created_at ON signatures(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_signature_id ON deliveries(signature_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
