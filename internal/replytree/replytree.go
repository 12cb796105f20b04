// Package replytree reconstructs the reply hierarchy of a thread from
// its flat post list.
package replytree

import (
	"errors"

	"termforum/internal/models"
)

// ErrCorruptReplyGraph is returned when parent references form a cycle.
var ErrCorruptReplyGraph = errors.New("replytree: cyclic parent references")

// Entry is a post annotated with its nesting depth. Top-level posts are
// at depth 0 and a reply sits at its parent's depth + 1.
type Entry struct {
	Post  models.Post
	Depth int
}

// Flatten orders posts by pre-order depth-first traversal: each post is
// followed by its replies before its next sibling. Input must be the
// thread's posts in ascending creation order, which guarantees children
// are bucketed after their parents.
//
// Posts whose parent is not present in the input (for example a reply
// under a physically removed ancestor) are skipped. Cyclic parent
// references in corrupted data fail with ErrCorruptReplyGraph instead of
// looping.
func Flatten(posts []models.Post) ([]Entry, error) {
	// Bucket by parent id; key 0 holds top-level posts since row ids
	// start at 1.
	buckets := make(map[int64][]models.Post, len(posts))
	for _, p := range posts {
		var parent int64
		if p.ParentPostID != nil {
			parent = *p.ParentPostID
		}
		buckets[parent] = append(buckets[parent], p)
	}

	out := make([]Entry, 0, len(posts))
	visited := make(map[int64]bool, len(posts))

	var walk func(parent int64, depth int) error
	walk = func(parent int64, depth int) error {
		for _, p := range buckets[parent] {
			if visited[p.ID] {
				return ErrCorruptReplyGraph
			}
			visited[p.ID] = true
			out = append(out, Entry{Post: p, Depth: depth})
			if err := walk(p.ID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(0, 0); err != nil {
		return nil, err
	}
	return out, nil
}
