package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"termforum/internal/models"
)

// PostOptions are the recognized optional fields for CreatePost. A nil
// ParentPostID makes the post a top-level reply.
type PostOptions struct {
	ParentPostID *int64
}

const postColumns = `p.id, p.thread_id, p.user_id, p.parent_post_id, p.content,
	p.created_at, p.updated_at, p.upvotes, p.downvotes,
	p.is_deleted, p.is_edited, p.edit_reason,
	u.username, u.avatar, u.reputation`

const postJoins = ` FROM posts p
	JOIN users u ON p.user_id = u.id`

func scanPost(row rowScanner) (models.Post, error) {
	var (
		p          models.Post
		parentID   sql.NullInt64
		createdAt  string
		updatedAt  string
		editReason sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.ThreadID, &p.UserID, &parentID, &p.Content,
		&createdAt, &updatedAt, &p.Upvotes, &p.Downvotes,
		&p.IsDeleted, &p.IsEdited, &editReason,
		&p.UserName, &p.UserAvatar, &p.UserReputation,
	)
	if err != nil {
		return models.Post{}, err
	}
	if parentID.Valid {
		id := parentID.Int64
		p.ParentPostID = &id
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	p.EditReason = editReason.String
	return p, nil
}

// CreatePost inserts a reply and, in the same transaction, bumps the
// thread's post counter and last-post pointer, the author's post counter,
// and the owning category's post counter. A parent reference must name a
// post of the same thread; anything else is an ErrConstraint. Locked and
// deleted threads reject new posts.
func (s *Store) CreatePost(threadID, userID int64, content string, opts PostOptions) (models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, fmt.Errorf("create post: %w: content is empty", ErrInvalidInput)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Post{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var categoryID int64
	var isLocked, isDeleted bool
	err = tx.QueryRow(
		`SELECT category_id, is_locked, is_deleted FROM threads WHERE id = ?;`, threadID,
	).Scan(&categoryID, &isLocked, &isDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, fmt.Errorf("create post: %w: thread %d does not exist", ErrConstraint, threadID)
	}
	if err != nil {
		return models.Post{}, err
	}
	if isLocked || isDeleted {
		return models.Post{}, fmt.Errorf("create post: %w: thread %d does not accept replies", ErrConstraint, threadID)
	}

	var parent any
	if opts.ParentPostID != nil {
		var parentThreadID int64
		err = tx.QueryRow(`SELECT thread_id FROM posts WHERE id = ?;`, *opts.ParentPostID).Scan(&parentThreadID)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("create post: %w: parent post %d does not exist", ErrConstraint, *opts.ParentPostID)
		}
		if err != nil {
			return models.Post{}, err
		}
		if parentThreadID != threadID {
			return models.Post{}, fmt.Errorf("create post: %w: parent post %d belongs to another thread", ErrConstraint, *opts.ParentPostID)
		}
		parent = *opts.ParentPostID
	}

	now := nowRFC3339()
	res, err := tx.Exec(
		`INSERT INTO posts(thread_id, user_id, parent_post_id, content, created_at, updated_at)
		 VALUES(?, ?, ?, ?, ?, ?);`,
		threadID, userID, parent, content, now, now,
	)
	if err != nil {
		return models.Post{}, constraintOr(err, "create post")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Post{}, err
	}

	if _, err := tx.Exec(
		`UPDATE threads
		 SET posts_count = posts_count + 1,
		     last_post_user_id = ?,
		     last_post_at = ?,
		     updated_at = ?
		 WHERE id = ?;`,
		userID, now, now, threadID,
	); err != nil {
		return models.Post{}, err
	}
	if _, err := tx.Exec(`UPDATE users SET posts_count = posts_count + 1 WHERE id = ?;`, userID); err != nil {
		return models.Post{}, err
	}
	if _, err := tx.Exec(`UPDATE categories SET posts_count = posts_count + 1 WHERE id = ?;`, categoryID); err != nil {
		return models.Post{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}

	post, ok := s.GetPost(id)
	if !ok {
		return models.Post{}, sql.ErrNoRows
	}
	s.log.Info("post created",
		zap.Int64("id", post.ID),
		zap.Int64("thread_id", threadID),
		zap.Int64("user_id", userID),
	)
	return post, nil
}

// GetPost returns the post joined with the author's username, avatar and
// reputation, or absent.
func (s *Store) GetPost(id int64) (models.Post, bool) {
	row := s.db.QueryRow(`SELECT `+postColumns+postJoins+` WHERE p.id = ?;`, id)
	post, err := scanPost(row)
	if err != nil {
		return models.Post{}, false
	}
	return post, true
}

// ListPosts returns the thread's non-deleted posts oldest first. The id
// tiebreak keeps the order stable so the reply-tree reconstruction sees
// children no earlier than their parents.
func (s *Store) ListPosts(threadID int64, limit, offset int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(
		`SELECT `+postColumns+postJoins+`
		 WHERE p.thread_id = ? AND p.is_deleted = 0
		 ORDER BY p.created_at ASC, p.id ASC
		 LIMIT ? OFFSET ?;`,
		threadID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, post)
	}
	return out, rows.Err()
}

// EditPost replaces the post content, marking it edited with an optional
// reason.
func (s *Store) EditPost(id int64, content, reason string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("edit post: %w: content is empty", ErrInvalidInput)
	}

	res, err := s.db.Exec(
		`UPDATE posts
		 SET content = ?, is_edited = 1, edit_reason = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = 0;`,
		content, nullStringOrValue(reason), nowRFC3339(), id,
	)
	if err != nil {
		return constraintOr(err, "edit post")
	}
	return requireAffected(res)
}

// DeletePost soft-deletes a post; the row stays for the referential
// integrity of child replies. The thread, author, and category post
// counters are decremented and the thread's last-post pointer is
// recomputed from the surviving posts, all in one transaction.
func (s *Store) DeletePost(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var threadID, userID, categoryID int64
	err = tx.QueryRow(
		`SELECT p.thread_id, p.user_id, t.category_id
		 FROM posts p JOIN threads t ON p.thread_id = t.id
		 WHERE p.id = ? AND p.is_deleted = 0;`, id,
	).Scan(&threadID, &userID, &categoryID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(
		`UPDATE posts SET is_deleted = 1, updated_at = ? WHERE id = ?;`, nowRFC3339(), id,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET posts_count = posts_count - 1 WHERE id = ?;`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE categories SET posts_count = posts_count - 1 WHERE id = ?;`, categoryID); err != nil {
		return err
	}

	// Re-point the thread at its most recent surviving post, falling
	// back to the thread author and creation time when none remain.
	if _, err := tx.Exec(
		`UPDATE threads
		 SET posts_count = posts_count - 1,
		     last_post_user_id = COALESCE(
		         (SELECT user_id FROM posts
		          WHERE thread_id = ? AND is_deleted = 0
		          ORDER BY created_at DESC, id DESC LIMIT 1),
		         user_id),
		     last_post_at = COALESCE(
		         (SELECT created_at FROM posts
		          WHERE thread_id = ? AND is_deleted = 0
		          ORDER BY created_at DESC, id DESC LIMIT 1),
		         created_at)
		 WHERE id = ?;`,
		threadID, threadID, threadID,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("post deleted", zap.Int64("id", id), zap.Int64("thread_id", threadID))
	return nil
}
