package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrRefreshNotFound is returned when no refresh record matches the lookup.
var ErrRefreshNotFound = errors.New("refresh token not found")

// RefreshTokenRepo persists per-(user, device) refresh sessions. The table
// carries a UNIQUE KEY on (user_id, device_info) so the at-most-one-record
// invariant is enforced by the database itself: Upsert replaces the secret
// and expiry in place instead of accumulating rows.
type RefreshTokenRepo struct{ DB *sql.DB }

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Upsert stores a refresh secret digest for (userID, device). A repeat
// login or rotation from the same device overwrites the previous secret,
// which invalidates it immediately. Concurrent writers race last-wins,
// which is acceptable for a device-scoped key.
func (r *RefreshTokenRepo) Upsert(ctx context.Context, userID uint64, device, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, device_info, token_hash, expires_at)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at)`,
		userID, device, tokenHash, exp)
	return err
}

// FindByTokenAndDevice returns the record whose secret digest and device
// both match. Expiry is NOT checked here; the refresh flow needs the
// expired record so it can delete it and tell the caller to log in again.
func (r *RefreshTokenRepo) FindByTokenAndDevice(ctx context.Context, tokenHash, device string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, device_info, expires_at
		 FROM refresh_tokens WHERE token_hash=? AND device_info=? LIMIT 1`,
		tokenHash, device).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.DeviceInfo, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RefreshToken{}, ErrRefreshNotFound
		}
		return model.RefreshToken{}, err
	}
	return t, nil
}

// DeleteByID removes a single refresh record.
func (r *RefreshTokenRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE id=?", id)
	return err
}

// DeleteByUserAndDevice removes the caller's session for one device. It
// returns ErrRefreshNotFound when there was nothing to delete, so logout
// can report "already logged out".
func (r *RefreshTokenRepo) DeleteByUserAndDevice(ctx context.Context, userID uint64, device string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=? AND device_info=?", userID, device)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRefreshNotFound
	}
	return nil
}
