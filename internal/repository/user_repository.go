package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/utils"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registration hits the unique email index.
var ErrEmailExists = errors.New("email already exists")

// UserRepo encapsulates all database queries against the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, password_hash, balance, role, is_active, created_at"

// Create hashes the password and inserts a new user with role User, zero
// balance and active status. The email is normalized to lowercase here;
// login lookups use the value as provided by the caller.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, model.RoleUser.String())
	if err != nil {
		// 1062 = duplicate entry on the unique email index
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by the email exactly as given. Registration
// stores emails lowercased, so a mixed-case lookup simply finds nothing.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.Role, _ = model.ParseRole(role)
	return u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	u.Role, _ = model.ParseRole(role)
	return u, nil
}

// ListAll returns every user ordered by id. Password hashes are included in
// the structs; handlers must project them away before responding.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Balance, &role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role, _ = model.ParseRole(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole sets a user's role. Existence and the Admin-demotion rule are
// checked by the handler, which loads the user first.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", role.String(), id)
	return err
}

// UpdateStatus flips the is_active flag.
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}
