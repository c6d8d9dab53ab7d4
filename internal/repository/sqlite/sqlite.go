// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code, so it works everywhere Go works.
//
// The schema is the four-table system of record:
//
//	users(user_id, pwd, email, display_name)
//	shorts(short_id, user_id, blob_url, created_at)
//	following(follower, followee)
//	likes(user_id, short_id, owner_id)
//
// Referential integrity across the tables is deliberately NOT enforced with
// foreign keys: deletions cascade through an explicit, ordered sequence in
// the service layer, because each relational step has a matching cache
// invalidation (and eventually a blob deletion) that the database cannot
// perform anyway.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. sql.DB is itself a pool, safe for
// concurrent use by every in-flight request; this wrapper exists so we can
// hang the typed sub-repositories off it and control the lifecycle.
type DB struct {
	conn *sql.DB
}

// New opens the database, verifies the connection and runs migrations.
//
// dbPath examples:
//   - "data/tukano.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must be
	// pinned to a single one or each request would see a different (empty)
	// database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// issue surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress,
	// required for a server handling many requests at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Typed accessors for the per-table repositories. Each shares the same
// underlying pool.

func (db *DB) Users() *UserDB     { return &UserDB{conn: db.conn} }
func (db *DB) Shorts() *ShortDB   { return &ShortDB{conn: db.conn} }
func (db *DB) Follows() *FollowDB { return &FollowDB{conn: db.conn} }
func (db *DB) Likes() *LikeDB     { return &LikeDB{conn: db.conn} }

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id      TEXT PRIMARY KEY,
			pwd          TEXT NOT NULL,
			email        TEXT NOT NULL,
			display_name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS shorts (
			short_id   TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			blob_url   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_shorts_user_id ON shorts(user_id);
		CREATE INDEX IF NOT EXISTS idx_shorts_created_at ON shorts(created_at);

		CREATE TABLE IF NOT EXISTS following (
			follower TEXT NOT NULL,
			followee TEXT NOT NULL,
			PRIMARY KEY (follower, followee)
		);
		CREATE INDEX IF NOT EXISTS idx_following_followee ON following(followee);

		CREATE TABLE IF NOT EXISTS likes (
			user_id  TEXT NOT NULL,
			short_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			PRIMARY KEY (user_id, short_id)
		);
		CREATE INDEX IF NOT EXISTS idx_likes_short_id ON likes(short_id);
		CREATE INDEX IF NOT EXISTS idx_likes_owner_id ON likes(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
