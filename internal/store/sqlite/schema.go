package sqlite

import (
	"database/sql"
)

// EnsureSchema creates the tables and indexes if they do not exist.
// Uniqueness of names is enforced here, not just in the forms layer, so a
// lost create/create race surfaces as a constraint error instead of a
// duplicate row.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            created TIMESTAMP NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx ON users(lower(username));`,
		`CREATE TABLE IF NOT EXISTS collections (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            slug TEXT NOT NULL,
            created TIMESTAMP NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS collections_owner_name_idx ON collections(owner_id, lower(name));`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            created TIMESTAMP NOT NULL
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS items_collection_name_idx ON items(collection_id, lower(name));`,
		`CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            comment TEXT NOT NULL DEFAULT '',
            created TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS events_item_idx ON events(item_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
