package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_wellness_kv",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}

// MIGRATION 001: key-value slots. Each mood history is one row holding the
// full JSON array; every append replaces the whole value.
const migration001Up = `
CREATE TABLE IF NOT EXISTS wellness_kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_wellness_kv_updated_at ON wellness_kv (updated_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS wellness_kv;
`
