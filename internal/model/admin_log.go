package model

import "time"

// AdminLog is an append-only audit record of administrative actions and of
// failed or unauthorized admin login attempts. ActorID is 0 when the actor
// could not be authenticated (failed admin logins). Rows are never updated
// or deleted by the application; retention is an operational concern.
type AdminLog struct {
	ID        uint64    // admin_logs.id
	ActorID   uint64    // admin_logs.actor_id (0 = unauthenticated)
	Action    string    // admin_logs.action
	Endpoint  string    // admin_logs.endpoint
	CreatedAt time.Time // admin_logs.created_at
}
