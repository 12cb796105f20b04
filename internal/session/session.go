// Package session persists the local login session as a small JSON file.
//
// This is a single-profile model: exactly one session exists at a time
// and creating a new one overwrites the previous. Concurrent writers are
// not synchronized; last write wins.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const tokenBytes = 32

// Session is the persisted login state for the local principal.
type Session struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Manager reads and writes the session file. Construct one per
// application and pass it where needed.
type Manager struct {
	path string
}

// NewManager stores sessions at the given file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Create issues a new session and persists it, replacing any prior one.
// rememberMe extends the expiry to 30 days regardless of durationHours;
// otherwise the session lasts exactly durationHours, so zero yields a
// session that is already expired on the next read.
func (m *Manager) Create(userID int64, username string, rememberMe bool, durationHours int) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, err
	}

	now := time.Now()
	duration := time.Duration(durationHours) * time.Hour
	if rememberMe {
		duration = 30 * 24 * time.Hour
	}

	sess := Session{
		UserID:     userID,
		Username:   username,
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  now.Add(duration),
		RememberMe: rememberMe,
	}

	if err := m.save(sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Current returns the persisted session when one exists and is still
// valid. A missing file, an unparsable file, or an expired session all
// resolve to absent; the expired case also removes the file.
func (m *Manager) Current() (Session, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false
	}

	if sess.Expired(time.Now()) {
		_ = m.Clear()
		return Session{}, false
	}
	return sess, true
}

// Clear removes the persisted session. Removing a session that does not
// exist is not an error.
func (m *Manager) Clear() error {
	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (m *Manager) save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o600)
}

func newToken() (string, error) {
	var b [tokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
