package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/repository"
)

// CategoryHandler manages the top level of the catalog hierarchy.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type categoryReq struct {
	Name string `json:"name"`
}

type categoryResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// List returns all active categories. Public.
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Categories.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{ID: cat.ID, Name: cat.Name, IsActive: cat.IsActive})
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a new category. Admin only.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Categories.Create(ctx, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "category created",
		"category": categoryResp{ID: id, Name: req.Name, IsActive: true},
	})
}

// Update renames a category. Admin only.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	name := strings.TrimSpace(req.Name)
	if err := h.Categories.UpdateName(ctx, id, name); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "category updated",
		"category": categoryResp{ID: id, Name: name, IsActive: cat.IsActive},
	})
}

// Delete soft-deletes a category by deactivating it. Admin only.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if err := h.Categories.Deactivate(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deactivated"})
}
