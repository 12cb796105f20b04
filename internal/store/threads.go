package store

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"termforum/internal/models"
	"termforum/internal/slug"
)

// ThreadOptions are the recognized optional fields for CreateThread. An
// empty Slug is derived from the title.
type ThreadOptions struct {
	Slug   string
	Pinned bool
}

// ThreadFilter narrows ListThreads. Zero CategoryID/UserID means no
// filter on that dimension; both set means both must match.
type ThreadFilter struct {
	CategoryID int64
	UserID     int64
	Limit      int
	Offset     int
}

const threadColumns = `t.id, t.title, t.slug, t.category_id, t.user_id, t.content,
	t.created_at, t.updated_at, t.view_count, t.posts_count, t.upvotes, t.downvotes,
	t.is_pinned, t.is_locked, t.is_deleted, t.last_post_user_id, t.last_post_at,
	c.name, c.icon, u.username, u.avatar`

const threadJoins = ` FROM threads t
	JOIN categories c ON t.category_id = c.id
	JOIN users u ON t.user_id = u.id`

func scanThread(row rowScanner) (models.Thread, error) {
	var (
		t              models.Thread
		createdAt      string
		updatedAt      string
		lastPostUserID sql.NullInt64
		lastPostAt     string
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.CategoryID, &t.UserID, &t.Content,
		&createdAt, &updatedAt, &t.ViewCount, &t.PostsCount, &t.Upvotes, &t.Downvotes,
		&t.IsPinned, &t.IsLocked, &t.IsDeleted, &lastPostUserID, &lastPostAt,
		&t.CategoryName, &t.CategoryIcon, &t.UserName, &t.UserAvatar,
	)
	if err != nil {
		return models.Thread{}, err
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	t.LastPostAt = parseTime(lastPostAt)
	if lastPostUserID.Valid {
		id := lastPostUserID.Int64
		t.LastPostUserID = &id
	}
	return t, nil
}

// CreateThread inserts a thread and bumps the author's and the owning
// category's thread counters in the same transaction. The thread row
// carries the opening content and starts with posts_count = 1.
func (s *Store) CreateThread(title, content string, userID, categoryID int64, opts ThreadOptions) (models.Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return models.Thread{}, fmt.Errorf("create thread: %w: title and content are required", ErrInvalidInput)
	}

	threadSlug := opts.Slug
	if threadSlug == "" {
		threadSlug = slug.Make(title)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Thread{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := nowRFC3339()
	res, err := tx.Exec(
		`INSERT INTO threads(title, slug, category_id, user_id, content, is_pinned,
			created_at, updated_at, last_post_user_id, last_post_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		title, threadSlug, categoryID, userID, content, opts.Pinned,
		now, now, userID, now,
	)
	if err != nil {
		return models.Thread{}, constraintOr(err, "create thread")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Thread{}, err
	}

	if _, err := tx.Exec(`UPDATE users SET threads_count = threads_count + 1 WHERE id = ?;`, userID); err != nil {
		return models.Thread{}, err
	}
	if _, err := tx.Exec(`UPDATE categories SET threads_count = threads_count + 1 WHERE id = ?;`, categoryID); err != nil {
		return models.Thread{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Thread{}, err
	}

	thread, ok := s.GetThread(id, false)
	if !ok {
		return models.Thread{}, sql.ErrNoRows
	}
	s.log.Info("thread created",
		zap.Int64("id", thread.ID),
		zap.Int64("category_id", categoryID),
		zap.Int64("user_id", userID),
	)
	return thread, nil
}

// GetThread returns the thread joined with its category name/icon and
// author username/avatar, or absent. When incrementViews is set the view
// counter is bumped atomically with the read; internal bookkeeping reads
// pass false.
func (s *Store) GetThread(id int64, incrementViews bool) (models.Thread, bool) {
	if !incrementViews {
		row := s.db.QueryRow(`SELECT `+threadColumns+threadJoins+` WHERE t.id = ?;`, id)
		thread, err := scanThread(row)
		if err != nil {
			return models.Thread{}, false
		}
		return thread, true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Thread{}, false
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE threads SET view_count = view_count + 1 WHERE id = ?;`, id); err != nil {
		return models.Thread{}, false
	}
	row := tx.QueryRow(`SELECT `+threadColumns+threadJoins+` WHERE t.id = ?;`, id)
	thread, err := scanThread(row)
	if err != nil {
		return models.Thread{}, false
	}
	if err := tx.Commit(); err != nil {
		return models.Thread{}, false
	}
	return thread, true
}

// ListThreads returns non-deleted threads, pinned first, then by most
// recent activity. Filters are conjunctive when both are supplied.
func (s *Store) ListThreads(filter ThreadFilter) ([]models.Thread, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + threadColumns + threadJoins + ` WHERE t.is_deleted = 0`
	args := []any{}
	if filter.CategoryID != 0 {
		query += ` AND t.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.UserID != 0 {
		query += ` AND t.user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY t.is_pinned DESC, t.updated_at DESC, t.id DESC LIMIT ? OFFSET ?;`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Thread, 0, limit)
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, thread)
	}
	return out, rows.Err()
}

// DeleteThread soft-deletes a thread and decrements the author's and the
// owning category's thread counters in the same transaction. A thread
// that is absent or already deleted yields sql.ErrNoRows.
func (s *Store) DeleteThread(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var categoryID, userID int64
	err = tx.QueryRow(
		`SELECT category_id, user_id FROM threads WHERE id = ? AND is_deleted = 0;`, id,
	).Scan(&categoryID, &userID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE threads SET is_deleted = 1, updated_at = ? WHERE id = ?;`, nowRFC3339(), id,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET threads_count = threads_count - 1 WHERE id = ?;`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE categories SET threads_count = threads_count - 1 WHERE id = ?;`, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("thread deleted", zap.Int64("id", id))
	return nil
}
