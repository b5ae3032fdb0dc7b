package service

import (
	"context"
	"log"

	"github.com/epinapi/epin-store/internal/repository"
)

// AdminLogService appends entries to the admin audit trail. Writes are
// fire-and-forget: a failed append is logged locally but never surfaces to
// the request that triggered it, since audit entries on error paths are a
// side effect of the response, not a precondition for it.
type AdminLogService struct {
	Logs *repository.AdminLogRepo
}

func NewAdminLogService(logs *repository.AdminLogRepo) *AdminLogService {
	return &AdminLogService{Logs: logs}
}

// Log appends one audit entry. actorID 0 denotes an unauthenticated actor.
func (s *AdminLogService) Log(ctx context.Context, actorID uint64, action, endpoint string) {
	if err := s.Logs.Insert(ctx, actorID, action, endpoint); err != nil {
		log.Printf("admin-log: append failed (actor=%d action=%q): %v", actorID, action, err)
	}
}
