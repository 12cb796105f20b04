package models

import (
	"fmt"
	"time"
)

// User is a forum account. CredentialHash may be empty for legacy or
// anonymous accounts that never set a password.
type User struct {
	ID             int64
	Username       string
	Email          string
	CredentialHash string
	Bio            string
	Avatar         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PostsCount     int
	ThreadsCount   int
	Reputation     int
	IsAdmin        bool
	IsBanned       bool
	LastSeen       time.Time
	FailedLogins   int
	LockedUntil    *time.Time
}

// DisplayName is the avatar glyph followed by the username.
func (u User) DisplayName() string {
	return fmt.Sprintf("%s %s", u.Avatar, u.Username)
}

// TotalActivity is the sum of authored posts and threads.
func (u User) TotalActivity() int {
	return u.PostsCount + u.ThreadsCount
}

// IsLocked reports whether the account is locked out at the given instant.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// TransportMap flattens the user for the presentation layer. All timestamps
// are RFC3339 strings and no value is a nested structure.
func (u User) TransportMap() map[string]any {
	return map[string]any{
		"id":             u.ID,
		"username":       u.Username,
		"email":          u.Email,
		"bio":            u.Bio,
		"avatar":         u.Avatar,
		"created_at":     formatTime(u.CreatedAt),
		"updated_at":     formatTime(u.UpdatedAt),
		"posts_count":    u.PostsCount,
		"threads_count":  u.ThreadsCount,
		"reputation":     u.Reputation,
		"is_admin":       u.IsAdmin,
		"is_banned":      u.IsBanned,
		"last_seen":      formatTime(u.LastSeen),
		"failed_logins":  u.FailedLogins,
		"locked_until":   formatTimePtr(u.LockedUntil),
	}
}

// Category groups threads. ThreadsCount and PostsCount are denormalized
// aggregates maintained by the store.
type Category struct {
	ID           int64
	Name         string
	Slug         string
	Description  string
	Icon         string
	Color        string
	Position     int
	ThreadsCount int
	PostsCount   int
	CreatedAt    time.Time
}

func (c Category) DisplayName() string {
	return fmt.Sprintf("%s %s", c.Icon, c.Name)
}

// TotalActivity is the sum of threads and posts in the category.
func (c Category) TotalActivity() int {
	return c.ThreadsCount + c.PostsCount
}

func (c Category) TransportMap() map[string]any {
	return map[string]any{
		"id":            c.ID,
		"name":          c.Name,
		"slug":          c.Slug,
		"description":   c.Description,
		"icon":          c.Icon,
		"color":         c.Color,
		"position":      c.Position,
		"threads_count": c.ThreadsCount,
		"posts_count":   c.PostsCount,
		"created_at":    formatTime(c.CreatedAt),
	}
}

// Thread is a topic. The opening content lives on the thread row itself and
// counts as the first post, so PostsCount starts at 1.
type Thread struct {
	ID             int64
	Title          string
	Slug           string
	CategoryID     int64
	UserID         int64
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ViewCount      int
	PostsCount     int
	Upvotes        int
	Downvotes      int
	IsPinned       bool
	IsLocked       bool
	IsDeleted      bool
	LastPostUserID *int64
	LastPostAt     time.Time

	// Populated by joins, empty on bare rows.
	CategoryName string
	CategoryIcon string
	UserName     string
	UserAvatar   string
}

// Score is the net vote tally; it may be negative.
func (t Thread) Score() int {
	return t.Upvotes - t.Downvotes
}

// ReplyCount excludes the opening post.
func (t Thread) ReplyCount() int {
	if t.PostsCount <= 1 {
		return 0
	}
	return t.PostsCount - 1
}

// IsActive reports whether the thread accepts replies.
func (t Thread) IsActive() bool {
	return !t.IsLocked && !t.IsDeleted
}

func (t Thread) TransportMap() map[string]any {
	return map[string]any{
		"id":                t.ID,
		"title":             t.Title,
		"slug":              t.Slug,
		"category_id":       t.CategoryID,
		"user_id":           t.UserID,
		"content":           t.Content,
		"created_at":        formatTime(t.CreatedAt),
		"updated_at":        formatTime(t.UpdatedAt),
		"view_count":        t.ViewCount,
		"posts_count":       t.PostsCount,
		"upvotes":           t.Upvotes,
		"downvotes":         t.Downvotes,
		"is_pinned":         t.IsPinned,
		"is_locked":         t.IsLocked,
		"is_deleted":        t.IsDeleted,
		"last_post_user_id": int64PtrOrNil(t.LastPostUserID),
		"last_post_at":      formatTime(t.LastPostAt),
		"category_name":     t.CategoryName,
		"category_icon":     t.CategoryIcon,
		"user_name":         t.UserName,
		"user_avatar":       t.UserAvatar,
	}
}

// Post is a reply within a thread. ParentPostID, when set, references
// another post of the same thread and forms the reply tree.
type Post struct {
	ID           int64
	ThreadID     int64
	UserID       int64
	ParentPostID *int64
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Upvotes      int
	Downvotes    int
	IsDeleted    bool
	IsEdited     bool
	EditReason   string

	// Populated by joins.
	UserName       string
	UserAvatar     string
	UserReputation int
}

func (p Post) Score() int {
	return p.Upvotes - p.Downvotes
}

// IsReply reports whether the post answers another post rather than the
// thread itself.
func (p Post) IsReply() bool {
	return p.ParentPostID != nil
}

func (p Post) TransportMap() map[string]any {
	return map[string]any{
		"id":             p.ID,
		"thread_id":      p.ThreadID,
		"user_id":        p.UserID,
		"parent_post_id": int64PtrOrNil(p.ParentPostID),
		"content":        p.Content,
		"created_at":     formatTime(p.CreatedAt),
		"updated_at":     formatTime(p.UpdatedAt),
		"upvotes":        p.Upvotes,
		"downvotes":      p.Downvotes,
		"is_deleted":     p.IsDeleted,
		"is_edited":      p.IsEdited,
		"edit_reason":    p.EditReason,
		"user_name":      p.UserName,
		"user_avatar":    p.UserAvatar,
	}
}

// ForumStats are live aggregates computed from the tables, not the
// denormalized per-row counters.
type ForumStats struct {
	Users        int
	Threads      int
	Posts        int
	Categories   int
	TotalContent int
}

func (s ForumStats) TransportMap() map[string]any {
	return map[string]any{
		"users":         s.Users,
		"threads":       s.Threads,
		"posts":         s.Posts,
		"categories":    s.Categories,
		"total_content": s.TotalContent,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func int64PtrOrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
