package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrEpinNotFound is returned when an e-pin cannot be found.
var ErrEpinNotFound = errors.New("epin not found")

// EpinFilter narrows the filtered listing. Nil pointers mean "no bound".
// Only active pins are considered regardless of the filter.
type EpinFilter struct {
	MinPrice *float64
	MaxPrice *float64
	IsSold   *bool
}

// EpinRepo encapsulates queries against the `epins` table.
type EpinRepo struct{ DB *sql.DB }

func NewEpinRepo(db *sql.DB) *EpinRepo { return &EpinRepo{DB: db} }

const epinColumns = "id, name, price, code, is_sold, is_active, created_at"

func scanEpin(row interface{ Scan(...any) error }) (model.Epin, error) {
	var e model.Epin
	err := row.Scan(&e.ID, &e.Name, &e.Price, &e.Code, &e.IsSold, &e.IsActive, &e.CreatedAt)
	return e, err
}

// Create inserts a new unsold, active e-pin and returns its id.
func (r *EpinRepo) Create(ctx context.Context, name, code string, price float64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO epins (name, price, code, is_sold, is_active) VALUES (?,?,?,0,1)",
		name, price, code)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListUnsold returns every pin still available for purchase.
func (r *EpinRepo) ListUnsold(ctx context.Context) ([]model.Epin, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+epinColumns+" FROM epins WHERE is_sold=0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Epin
	for rows.Next() {
		e, err := scanEpin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID fetches a pin by id.
func (r *EpinRepo) GetByID(ctx context.Context, id uint64) (model.Epin, error) {
	e, err := scanEpin(r.DB.QueryRowContext(ctx,
		"SELECT "+epinColumns+" FROM epins WHERE id=? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Epin{}, ErrEpinNotFound
		}
		return model.Epin{}, err
	}
	return e, nil
}

// Update rewrites name, price and code. Handlers merge partial input with
// the current row before calling this, so the write is unconditional.
func (r *EpinRepo) Update(ctx context.Context, id uint64, name, code string, price float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE epins SET name=?, price=?, code=? WHERE id=?", name, price, code, id)
	return err
}

// SetActive toggles a pin's visibility in public listings.
func (r *EpinRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE epins SET is_active=? WHERE id=?", active, id)
	return err
}

// Filter lists active pins constrained by price bounds and sold state.
func (r *EpinRepo) Filter(ctx context.Context, f EpinFilter) ([]model.Epin, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + epinColumns + " FROM epins WHERE is_active=1")
	args := []any{}
	if f.MinPrice != nil {
		sb.WriteString(" AND price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		sb.WriteString(" AND price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.IsSold != nil {
		sb.WriteString(" AND is_sold = ?")
		args = append(args, *f.IsSold)
	}
	sb.WriteString(" ORDER BY id")

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Epin
	for rows.Next() {
		e, err := scanEpin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
