package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrGameNotFound is returned when a game cannot be found.
var ErrGameNotFound = errors.New("game not found")

// GameWithCategory is a listing projection joining a game to its category
// name so public responses do not need a second query.
type GameWithCategory struct {
	model.Game
	CategoryName string
}

// GameRepo encapsulates queries against the `games` table.
type GameRepo struct{ DB *sql.DB }

func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{DB: db} }

// ListActive returns active games joined with their category names,
// ordered by id.
func (r *GameRepo) ListActive(ctx context.Context) ([]GameWithCategory, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT g.id, g.name, COALESCE(g.description,''), g.category_id, g.is_active, c.name
		 FROM games g JOIN categories c ON c.id = g.category_id
		 WHERE g.is_active=1 ORDER BY g.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameWithCategory
	for rows.Next() {
		var g GameWithCategory
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CategoryID, &g.IsActive, &g.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetByID fetches a game regardless of its active flag.
func (r *GameRepo) GetByID(ctx context.Context, id uint64) (model.Game, error) {
	var g model.Game
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, COALESCE(description,''), category_id, is_active FROM games WHERE id=? LIMIT 1", id).
		Scan(&g.ID, &g.Name, &g.Description, &g.CategoryID, &g.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Game{}, ErrGameNotFound
		}
		return model.Game{}, err
	}
	return g, nil
}

// Create inserts an active game under an existing category. Category
// existence is validated by the handler before calling this.
func (r *GameRepo) Create(ctx context.Context, name, description string, categoryID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO games (name, description, category_id, is_active) VALUES (?,?,?,1)",
		name, description, categoryID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites name, description and category of an existing game.
func (r *GameRepo) Update(ctx context.Context, id uint64, name, description string, categoryID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE games SET name=?, description=?, category_id=? WHERE id=?",
		name, description, categoryID, id)
	return err
}

// Deactivate soft-deletes a game.
func (r *GameRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE games SET is_active=0 WHERE id=?", id)
	return err
}
