package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/repository"
)

// LogHandler reads the append-only audit trail. Admin only.
type LogHandler struct {
	Logs *repository.AdminLogRepo
}

func NewLogHandler(l *repository.AdminLogRepo) *LogHandler {
	return &LogHandler{Logs: l}
}

type adminLogResp struct {
	ID        uint64    `json:"id"`
	ActorID   uint64    `json:"actorId"`
	Action    string    `json:"action"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"createdAt"`
}

func toLogResps(logs []model.AdminLog) []adminLogResp {
	out := make([]adminLogResp, 0, len(logs))
	for _, l := range logs {
		out = append(out, adminLogResp{
			ID: l.ID, ActorID: l.ActorID, Action: l.Action,
			Endpoint: l.Endpoint, CreatedAt: l.CreatedAt,
		})
	}
	return out
}

// AdminActions returns every audit entry, newest first.
func (h *LogHandler) AdminActions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	logs, err := h.Logs.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toLogResps(logs))
}

// FailedLogins returns the entries recorded by failed or unauthorized
// admin login attempts, newest first. ActorID 0 marks attempts where the
// credentials never matched an account.
func (h *LogHandler) FailedLogins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	logs, err := h.Logs.ListFailedLogins(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toLogResps(logs))
}
