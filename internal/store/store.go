// Package store owns the relational schema and every read and write
// against it. All multi-row writes (inserts plus the counter and
// last-post pointer updates that keep the denormalized aggregates
// consistent) run inside a single transaction.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	// ErrInvalidInput marks empty or malformed arguments rejected
	// before any write.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConstraint marks uniqueness, length, or foreign-key failures
	// surfaced from the database. The transaction is rolled back.
	ErrConstraint = errors.New("constraint violation")
)

// Store is the persistence engine. It is built for a single-process,
// single-writer workload; the connection pool is capped at one so
// incidental concurrent access serializes at the driver.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the SQLite database at path, runs migrations,
// and seeds the default categories when the store is empty.
func Open(path string, logger *zap.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("open store: %w: path is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	dsn := "file:" + filepath.ToSlash(path) + "?cache=shared" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, log: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.seedCategories(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL CHECK(length(username) >= 3 AND length(username) <= 20),
			email TEXT UNIQUE,
			password_hash TEXT,
			bio TEXT CHECK(length(bio) <= 500),
			avatar TEXT NOT NULL DEFAULT '👤',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			posts_count INTEGER NOT NULL DEFAULT 0,
			threads_count INTEGER NOT NULL DEFAULT 0,
			reputation INTEGER NOT NULL DEFAULT 0,
			is_admin INTEGER NOT NULL DEFAULT 0,
			is_banned INTEGER NOT NULL DEFAULT 0,
			last_seen TEXT NOT NULL,
			failed_login_attempts INTEGER NOT NULL DEFAULT 0,
			account_locked_until TEXT
		);`,

		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			description TEXT,
			icon TEXT NOT NULL DEFAULT '📁',
			color TEXT NOT NULL DEFAULT '#3B82F6',
			position INTEGER NOT NULL DEFAULT 0,
			threads_count INTEGER NOT NULL DEFAULT 0,
			posts_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS threads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL CHECK(length(title) >= 3 AND length(title) <= 200),
			slug TEXT UNIQUE NOT NULL,
			category_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			view_count INTEGER NOT NULL DEFAULT 0,
			posts_count INTEGER NOT NULL DEFAULT 1,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			is_pinned INTEGER NOT NULL DEFAULT 0,
			is_locked INTEGER NOT NULL DEFAULT 0,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			last_post_user_id INTEGER,
			last_post_at TEXT NOT NULL,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (last_post_user_id) REFERENCES users(id) ON DELETE SET NULL
		);`,

		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			parent_post_id INTEGER,
			content TEXT NOT NULL CHECK(length(content) <= 10000),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			is_edited INTEGER NOT NULL DEFAULT 0,
			edit_reason TEXT,
			FOREIGN KEY (thread_id) REFERENCES threads(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (parent_post_id) REFERENCES posts(id) ON DELETE CASCADE
		);`,

		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		`CREATE INDEX IF NOT EXISTS idx_threads_category ON threads(category_id, is_deleted, is_pinned DESC, updated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread_id, is_deleted, created_at ASC);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedCategories inserts the default category set. Skipped entirely when
// any category already exists, so re-opening an initialized store is a
// no-op.
func (s *Store) seedCategories() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories;`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		name, slug, description, icon, color string
	}{
		{"General", "general", "General discussions", "💬", "#3B82F6"},
		{"Announcements", "announcements", "Important announcements", "📢", "#EF4444"},
		{"Support", "support", "Get help and support", "🆘", "#10B981"},
		{"Off-Topic", "off-topic", "Anything goes", "🎲", "#8B5CF6"},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := nowRFC3339()
	for i, c := range defaults {
		if _, err := tx.Exec(
			`INSERT INTO categories(name, slug, description, icon, color, position, created_at)
			 VALUES(?, ?, ?, ?, ?, ?, ?);`,
			c.name, c.slug, c.description, c.icon, c.color, i, now,
		); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("seeded default categories", zap.Int("count", len(defaults)))
	return nil
}

func isConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") || strings.Contains(msg, "unique")
}

// constraintOr maps database constraint failures onto ErrConstraint and
// leaves everything else as-is.
func constraintOr(err error, op string) error {
	if isConstraintError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullStringOrValue(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
