package store

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"termforum/internal/models"
	"termforum/internal/slug"
)

// CategoryOptions are the recognized optional fields for CreateCategory.
// An empty Slug is derived from the name.
type CategoryOptions struct {
	Slug        string
	Description string
	Icon        string
	Color       string
	Position    int
}

const categoryColumns = `id, name, slug, description, icon, color,
	position, threads_count, posts_count, created_at`

func scanCategory(row rowScanner) (models.Category, error) {
	var (
		c           models.Category
		description sql.NullString
		createdAt   string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &description, &c.Icon, &c.Color,
		&c.Position, &c.ThreadsCount, &c.PostsCount, &createdAt,
	)
	if err != nil {
		return models.Category{}, err
	}
	c.Description = description.String
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// CreateCategory inserts a new category. Name and slug uniqueness
// violations surface as ErrConstraint.
func (s *Store) CreateCategory(name string, opts CategoryOptions) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("create category: %w: name is empty", ErrInvalidInput)
	}

	catSlug := opts.Slug
	if catSlug == "" {
		catSlug = slug.Make(name)
	}
	icon := opts.Icon
	if icon == "" {
		icon = "📁"
	}
	color := opts.Color
	if color == "" {
		color = "#3B82F6"
	}

	res, err := s.db.Exec(
		`INSERT INTO categories(name, slug, description, icon, color, position, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?);`,
		name, catSlug, nullStringOrValue(opts.Description), icon, color, opts.Position, nowRFC3339(),
	)
	if err != nil {
		return models.Category{}, constraintOr(err, "create category")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, err
	}

	category, ok := s.GetCategory(id)
	if !ok {
		return models.Category{}, sql.ErrNoRows
	}
	s.log.Info("category created", zap.Int64("id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

// GetCategory returns the category by id, or absent.
func (s *Store) GetCategory(id int64) (models.Category, bool) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?;`, id)
	category, err := scanCategory(row)
	if err != nil {
		return models.Category{}, false
	}
	return category, true
}

// ListCategories returns all categories ordered by position.
func (s *Store) ListCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY position ASC, id ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, rows.Err()
}
