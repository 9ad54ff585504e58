package db

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create session table",
		sql: `
			CREATE TABLE IF NOT EXISTS session (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				token TEXT NOT NULL,
				user_id INTEGER NOT NULL DEFAULT 0,
				username TEXT NOT NULL DEFAULT '',
				saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		name: "track session api origin",
		sql: `
			ALTER TABLE session ADD COLUMN origin TEXT NOT NULL DEFAULT ''
		`,
	},
}
