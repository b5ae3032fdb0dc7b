package repository

import (
	"context"
	"database/sql"

	"github.com/epinapi/epin-store/internal/model"
)

// AdminLogRepo appends and reads the append-only audit trail. Rows are
// never updated or deleted here.
type AdminLogRepo struct{ DB *sql.DB }

func NewAdminLogRepo(db *sql.DB) *AdminLogRepo { return &AdminLogRepo{DB: db} }

// Insert appends one audit entry. actorID 0 marks an unauthenticated actor
// (failed admin login attempts).
func (r *AdminLogRepo) Insert(ctx context.Context, actorID uint64, action, endpoint string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_logs (actor_id, action, endpoint) VALUES (?,?,?)",
		actorID, action, endpoint)
	return err
}

const adminLogColumns = "id, actor_id, action, endpoint, created_at"

func (r *AdminLogRepo) queryLogs(ctx context.Context, q string, args ...any) ([]model.AdminLog, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AdminLog
	for rows.Next() {
		var l model.AdminLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.Endpoint, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListAll returns every audit entry, newest first.
func (r *AdminLogRepo) ListAll(ctx context.Context) ([]model.AdminLog, error) {
	return r.queryLogs(ctx,
		"SELECT "+adminLogColumns+" FROM admin_logs ORDER BY created_at DESC, id DESC")
}

// ListFailedLogins returns the entries written by failed or unauthorized
// admin login attempts, newest first.
func (r *AdminLogRepo) ListFailedLogins(ctx context.Context) ([]model.AdminLog, error) {
	return r.queryLogs(ctx,
		`SELECT `+adminLogColumns+` FROM admin_logs
		 WHERE action LIKE 'failed admin login%' OR action LIKE 'unauthorized admin%'
		 ORDER BY created_at DESC, id DESC`)
}
