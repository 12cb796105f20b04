package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"termforum/internal/models"
)

// UserOptions are the recognized optional fields for CreateUser. Zero
// values fall back to the documented defaults: no email, no bio, the 👤
// avatar, regular (non-admin) account.
type UserOptions struct {
	Email   string
	Bio     string
	Avatar  string
	IsAdmin bool
}

const userColumns = `id, username, email, password_hash, bio, avatar,
	created_at, updated_at, posts_count, threads_count, reputation,
	is_admin, is_banned, last_seen, failed_login_attempts, account_locked_until`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u           models.User
		email       sql.NullString
		hash        sql.NullString
		bio         sql.NullString
		createdAt   string
		updatedAt   string
		lastSeen    string
		lockedUntil sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Username, &email, &hash, &bio, &u.Avatar,
		&createdAt, &updatedAt, &u.PostsCount, &u.ThreadsCount, &u.Reputation,
		&u.IsAdmin, &u.IsBanned, &lastSeen, &u.FailedLogins, &lockedUntil,
	)
	if err != nil {
		return models.User{}, err
	}
	u.Email = email.String
	u.CredentialHash = hash.String
	u.Bio = bio.String
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	u.LastSeen = parseTime(lastSeen)
	if lockedUntil.Valid {
		t := parseTime(lockedUntil.String)
		u.LockedUntil = &t
	}
	return u, nil
}

// CreateUser inserts a new user and returns the fully materialized row.
// Uniqueness and length violations surface as ErrConstraint.
func (s *Store) CreateUser(username string, opts UserOptions) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("create user: %w: username is empty", ErrInvalidInput)
	}

	avatar := opts.Avatar
	if avatar == "" {
		avatar = "👤"
	}

	now := nowRFC3339()
	res, err := s.db.Exec(
		`INSERT INTO users(username, email, bio, avatar, is_admin, created_at, updated_at, last_seen)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		username,
		nullStringOrValue(opts.Email),
		nullStringOrValue(opts.Bio),
		avatar,
		opts.IsAdmin,
		now, now, now,
	)
	if err != nil {
		return models.User{}, constraintOr(err, "create user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}

	user, ok := s.GetUser(id)
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	s.log.Info("user created", zap.Int64("id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// GetUser returns the user by id, or absent when no such row exists.
func (s *Store) GetUser(id int64) (models.User, bool) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?;`, id)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// GetUserByUsername returns the user by username, or absent.
func (s *Store) GetUserByUsername(username string) (models.User, bool) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?;`, username)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}

// SetUserCredential stores the hashed secret on the user row. An empty
// stored form clears the credential (back to a legacy account).
func (s *Store) SetUserCredential(id int64, storedHash string) error {
	res, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?;`,
		nullStringOrValue(storedHash), nowRFC3339(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// RecordLoginFailure increments the failed-login counter and, once the
// threshold is reached, sets the lockout timestamp lockFor from now.
// Both changes land in one transaction.
func (s *Store) RecordLoginFailure(id int64, lockThreshold int, lockFor time.Duration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var failures int
	err = tx.QueryRow(`SELECT failed_login_attempts FROM users WHERE id = ?;`, id).Scan(&failures)
	if err != nil {
		return err
	}

	failures++
	var lockedUntil any
	if lockThreshold > 0 && failures >= lockThreshold {
		lockedUntil = time.Now().UTC().Add(lockFor).Format(time.RFC3339)
	}

	if _, err := tx.Exec(
		`UPDATE users SET failed_login_attempts = ?, account_locked_until = COALESCE(?, account_locked_until), updated_at = ? WHERE id = ?;`,
		failures, lockedUntil, nowRFC3339(), id,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ResetLoginFailures clears the failed-login counter and any lockout,
// typically after a successful authentication.
func (s *Store) ResetLoginFailures(id int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET failed_login_attempts = 0, account_locked_until = NULL WHERE id = ?;`,
		id,
	)
	return err
}

// TouchLastSeen updates the last-seen timestamp.
func (s *Store) TouchLastSeen(id int64) error {
	_, err := s.db.Exec(`UPDATE users SET last_seen = ? WHERE id = ?;`, nowRFC3339(), id)
	return err
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
