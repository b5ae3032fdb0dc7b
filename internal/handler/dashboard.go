package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/repository"
)

// DashboardHandler serves the admin dashboard aggregates. All endpoints
// are admin only.
type DashboardHandler struct {
	Dash *repository.DashboardRepo
}

func NewDashboardHandler(d *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Dash: d}
}

const topEpinLimit = 10

// Summary returns the headline totals.
func (h *DashboardHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Dash.Summary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totalSales":  s.TotalSales,
		"totalOrders": s.TotalOrders,
		"totalUsers":  s.TotalUsers,
		"activeUsers": s.ActiveUsers,
	})
}

// Sales returns per-day completed revenue over a named range: 7d, 30d or
// 1y, defaulting to 30d.
func (h *DashboardHandler) Sales(c echo.Context) error {
	rng := c.QueryParam("range")
	if rng == "" {
		rng = "30d"
	}
	var span time.Duration
	switch rng {
	case "7d":
		span = 7 * 24 * time.Hour
	case "30d":
		span = 30 * 24 * time.Hour
	case "1y":
		span = 365 * 24 * time.Hour
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid range, expected 7d, 30d or 1y"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	days, err := h.Dash.SalesSince(ctx, time.Now().UTC().Add(-span))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]echo.Map, 0, len(days))
	for _, d := range days {
		out = append(out, echo.Map{
			"date":       d.Date.Format("2006-01-02"),
			"totalSales": d.TotalSales,
			"orderCount": d.OrderCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"range": rng, "sales": out})
}

// TopEpins returns the best-selling pins by completed order count.
func (h *DashboardHandler) TopEpins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	top, err := h.Dash.TopEpins(ctx, topEpinLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]echo.Map, 0, len(top))
	for _, t := range top {
		out = append(out, echo.Map{"name": t.Name, "soldCount": t.SoldCount})
	}
	return c.JSON(http.StatusOK, out)
}
