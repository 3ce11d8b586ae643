package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Memes table - stores meme entry definitions. The trigger_rule
		// column holds the rule document as JSON text.
		`CREATE TABLE IF NOT EXISTS memes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			trigger_rule TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL,
			sound TEXT NOT NULL DEFAULT '',
			sound_loop INTEGER NOT NULL DEFAULT 0,
			allow_retrigger INTEGER NOT NULL DEFAULT 0,
			position TEXT NOT NULL DEFAULT 'center',
			scale REAL NOT NULL DEFAULT 0.5,
			opacity REAL NOT NULL DEFAULT 0.9,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_memes_name ON memes(name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
