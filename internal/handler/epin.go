package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/repository"
)

// EpinHandler manages the digital code inventory. Codes are visible to
// anyone browsing the store until sold; admins manage stock and pricing.
type EpinHandler struct {
	Epins *repository.EpinRepo
	Audit AuditLog
}

func NewEpinHandler(e *repository.EpinRepo, a AuditLog) *EpinHandler {
	return &EpinHandler{Epins: e, Audit: a}
}

type createEpinReq struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Code  string  `json:"code"`
}

type updateEpinReq struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
	Code  *string  `json:"code"`
}

type epinResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Code      string    `json:"code"`
	IsSold    bool      `json:"isSold"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEpinResp(e model.Epin) epinResp {
	return epinResp{
		ID: e.ID, Name: e.Name, Price: e.Price, Code: e.Code,
		IsSold: e.IsSold, IsActive: e.IsActive, CreatedAt: e.CreatedAt,
	}
}

// Create adds a new pin to inventory. Admin only.
func (h *EpinHandler) Create(c echo.Context) error {
	var req createEpinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if req.Name == "" || req.Code == "" || req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid e-pin data"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Epins.Create(ctx, req.Name, req.Code, req.Price)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "e-pin created",
		"epin":    echo.Map{"id": id, "name": req.Name, "price": req.Price},
	})
}

// List returns all unsold pins. Public.
func (h *EpinHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	epins, err := h.Epins.ListUnsold(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]epinResp, 0, len(epins))
	for _, e := range epins {
		out = append(out, toEpinResp(e))
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one pin. Public.
func (h *EpinHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid e-pin id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Epins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEpinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "e-pin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toEpinResp(e))
}

// Update merges the provided fields into an existing pin. Admin only.
func (h *EpinHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid e-pin id"})
	}
	var req updateEpinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Epins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEpinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "e-pin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil && *req.Price > 0 {
		e.Price = *req.Price
	}
	if req.Code != nil && strings.TrimSpace(*req.Code) != "" {
		e.Code = strings.TrimSpace(*req.Code)
	}

	if err := h.Epins.Update(ctx, id, e.Name, e.Code, e.Price); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "e-pin updated", "epin": toEpinResp(e)})
}

// UpdateStatus toggles a pin's active flag and records the action in the
// audit trail. Admin only.
func (h *EpinHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid e-pin id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "isActive is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Epins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEpinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "e-pin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if err := h.Epins.SetActive(ctx, id, *req.IsActive); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	e.IsActive = *req.IsActive

	action := "e-pin deactivated"
	msg := "e-pin deactivated"
	if e.IsActive {
		action = "e-pin activated"
		msg = "e-pin activated"
	}
	h.Audit.Log(ctx, middleware.CurrentUserID(c), action, c.Path())

	return c.JSON(http.StatusOK, echo.Map{"message": msg, "epin": toEpinResp(e)})
}

// Filter lists active pins constrained by optional minPrice, maxPrice and
// isSold query parameters. Public.
func (h *EpinHandler) Filter(c echo.Context) error {
	var f repository.EpinFilter
	if v := c.QueryParam("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid minPrice"})
		}
		f.MinPrice = &p
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid maxPrice"})
		}
		f.MaxPrice = &p
	}
	if v := c.QueryParam("isSold"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid isSold"})
		}
		f.IsSold = &b
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	epins, err := h.Epins.Filter(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]epinResp, 0, len(epins))
	for _, e := range epins {
		out = append(out, toEpinResp(e))
	}
	return c.JSON(http.StatusOK, out)
}
