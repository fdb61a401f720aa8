package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Store wraps a *sql.DB providing the per-entity data-access methods for
// the application's persistent state. It is safe for concurrent use because
// the underlying *sql.DB is concurrency-safe.
type Store struct {
	conn         *sql.DB
	logger       *logrus.Logger
	queryTimeout time.Duration
}

// Open opens (or creates) a SQLite database at the provided path and
// ensures the schema exists. It also applies lightweight performance
// pragmas (WAL, cache sizing) and enables foreign key enforcement, which
// the genre/album reference rules depend on. Caller should Close() it when
// finished.
func Open(dbPath string, queryTimeout time.Duration, logger *logrus.Logger) (*Store, error) {
	// foreign_keys travels in the DSN so every pooled connection enforces
	// the reference rules, not just the one the pragma ran on
	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works better with fewer connections
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=2000;",
		"PRAGMA temp_store=memory;",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	s := &Store{
		conn:         conn,
		logger:       logger,
		queryTimeout: queryTimeout,
	}

	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Store initialized successfully")
	return s, nil
}

// createTables creates tables and indices if they do not already exist.
// This is idempotent and safe to call multiple times; the server must not
// accept connections before it has completed.
func (s *Store) createTables() error {
	newsTable := `
	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		brief TEXT,
		body TEXT,
		news_date DATETIME NOT NULL,
		feature_image TEXT
	);`

	genresTable := `
	CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);`

	albumsTable := `
	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		artist TEXT,
		release_year INTEGER,
		genre_id INTEGER REFERENCES genres(id),
		album_cover TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	songsTable := `
	CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		album_id INTEGER NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
		title TEXT,
		song_file TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT,
		login_history TEXT NOT NULL DEFAULT '[]'
	);`

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_news_date ON news(news_date);",
		"CREATE INDEX IF NOT EXISTS idx_albums_genre ON albums(genre_id);",
		"CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album_id);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username);",
	}

	tables := []string{newsTable, genresTable, albumsTable, songsTable, usersTable}
	for _, table := range tables {
		if _, err := s.conn.Exec(table); err != nil {
			return err
		}
	}

	for _, index := range indices {
		if _, err := s.conn.Exec(index); err != nil {
			return err
		}
	}

	return nil
}

// opCtx derives the bounded context every gateway query runs under. A hung
// database call times out instead of hanging the request.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// nullIfEmpty normalizes empty-string form fields to NULL at the store
// boundary.
func nullIfEmpty(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
