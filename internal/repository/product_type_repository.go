package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrProductTypeNotFound is returned when a product type cannot be found.
var ErrProductTypeNotFound = errors.New("product type not found")

// ProductTypeRepo encapsulates queries against the `game_product_types`
// table. A product type is a sellable variant of a game (denomination,
// edition, region).
type ProductTypeRepo struct{ DB *sql.DB }

func NewProductTypeRepo(db *sql.DB) *ProductTypeRepo { return &ProductTypeRepo{DB: db} }

// ListActiveByGame returns the active product types of one game.
func (r *ProductTypeRepo) ListActiveByGame(ctx context.Context, gameID uint64) ([]model.GameProductType, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, game_id, is_active FROM game_product_types
		 WHERE game_id=? AND is_active=1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameProductType
	for rows.Next() {
		var pt model.GameProductType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.GameID, &pt.IsActive); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// GetByID fetches a product type regardless of its active flag.
func (r *ProductTypeRepo) GetByID(ctx context.Context, id uint64) (model.GameProductType, error) {
	var pt model.GameProductType
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, game_id, is_active FROM game_product_types WHERE id=? LIMIT 1", id).
		Scan(&pt.ID, &pt.Name, &pt.GameID, &pt.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GameProductType{}, ErrProductTypeNotFound
		}
		return model.GameProductType{}, err
	}
	return pt, nil
}

// Create inserts an active product type under an existing game.
func (r *ProductTypeRepo) Create(ctx context.Context, name string, gameID uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO game_product_types (name, game_id, is_active) VALUES (?,?,1)",
		name, gameID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites name and owning game of a product type.
func (r *ProductTypeRepo) Update(ctx context.Context, id uint64, name string, gameID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE game_product_types SET name=?, game_id=? WHERE id=?", name, gameID, id)
	return err
}

// Deactivate soft-deletes a product type.
func (r *ProductTypeRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE game_product_types SET is_active=0 WHERE id=?", id)
	return err
}
