package store

import (
	"fmt"

	"termforum/internal/models"
)

// ForumStats computes live aggregates straight from the tables. This is
// deliberately independent of the denormalized per-row counters so the
// two paths can be cross-checked against each other.
func (s *Store) ForumStats() (models.ForumStats, error) {
	var stats models.ForumStats

	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users;`, &stats.Users},
		{`SELECT COUNT(*) FROM threads WHERE is_deleted = 0;`, &stats.Threads},
		{`SELECT COUNT(*) FROM posts WHERE is_deleted = 0;`, &stats.Posts},
		{`SELECT COUNT(*) FROM categories;`, &stats.Categories},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query).Scan(q.dest); err != nil {
			return models.ForumStats{}, err
		}
	}

	stats.TotalContent = stats.Threads + stats.Posts
	return stats, nil
}

// CounterMismatch reports one denormalized counter that disagrees with
// the live count it caches.
type CounterMismatch struct {
	Table   string
	RowID   int64
	Column  string
	Stored  int
	Actual  int
}

func (m CounterMismatch) String() string {
	return fmt.Sprintf("%s[%d].%s: stored %d, actual %d", m.Table, m.RowID, m.Column, m.Stored, m.Actual)
}

// CheckCounters compares every denormalized aggregate against the true
// count of non-deleted children. It flags mismatches and never repairs
// them; drift here means a write path skipped its counter update.
func (s *Store) CheckCounters() ([]CounterMismatch, error) {
	checks := []struct {
		table, column, query string
	}{
		{"users", "threads_count",
			`SELECT u.id, u.threads_count,
				(SELECT COUNT(*) FROM threads t WHERE t.user_id = u.id AND t.is_deleted = 0)
			 FROM users u;`},
		{"users", "posts_count",
			`SELECT u.id, u.posts_count,
				(SELECT COUNT(*) FROM posts p WHERE p.user_id = u.id AND p.is_deleted = 0)
			 FROM users u;`},
		{"categories", "threads_count",
			`SELECT c.id, c.threads_count,
				(SELECT COUNT(*) FROM threads t WHERE t.category_id = c.id AND t.is_deleted = 0)
			 FROM categories c;`},
		{"categories", "posts_count",
			`SELECT c.id, c.posts_count,
				(SELECT COUNT(*) FROM posts p
				 JOIN threads t ON p.thread_id = t.id
				 WHERE t.category_id = c.id AND p.is_deleted = 0)
			 FROM categories c;`},
		{"threads", "posts_count",
			`SELECT t.id, t.posts_count,
				1 + (SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id AND p.is_deleted = 0)
			 FROM threads t WHERE t.is_deleted = 0;`},
	}

	var mismatches []CounterMismatch
	for _, check := range checks {
		rows, err := s.db.Query(check.query)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id int64
			var stored, actual int
			if err := rows.Scan(&id, &stored, &actual); err != nil {
				rows.Close()
				return nil, err
			}
			if stored != actual {
				mismatches = append(mismatches, CounterMismatch{
					Table:  check.table,
					RowID:  id,
					Column: check.column,
					Stored: stored,
					Actual: actual,
				})
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return mismatches, nil
}
