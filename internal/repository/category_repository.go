package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrCategoryNotFound is returned when a category cannot be found.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepo encapsulates queries against the `categories` table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// ListActive returns all active categories ordered by id. Deactivated
// categories stay in the table but disappear from public listings.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, is_active FROM categories WHERE is_active=1 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches a category regardless of its active flag.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, is_active FROM categories WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrCategoryNotFound
		}
		return model.Category{}, err
	}
	return c, nil
}

// Create inserts an active category and returns its id.
func (r *CategoryRepo) Create(ctx context.Context, name string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, is_active) VALUES (?,1)", name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateName renames a category.
func (r *CategoryRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=? WHERE id=?", name, id)
	return err
}

// Deactivate soft-deletes a category; games keep their foreign key.
func (r *CategoryRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET is_active=0 WHERE id=?", id)
	return err
}
