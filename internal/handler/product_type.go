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

// ProductTypeHandler manages the sellable variants of a game.
type ProductTypeHandler struct {
	ProductTypes *repository.ProductTypeRepo
	Games        *repository.GameRepo
}

func NewProductTypeHandler(pt *repository.ProductTypeRepo, g *repository.GameRepo) *ProductTypeHandler {
	return &ProductTypeHandler{ProductTypes: pt, Games: g}
}

type productTypeReq struct {
	Name   string `json:"name"`
	GameID uint64 `json:"gameId"`
}

type productTypeResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	GameID   uint64 `json:"gameId"`
	IsActive bool   `json:"isActive"`
}

// ListByGame returns the active product types of one game. Public.
func (h *ProductTypeHandler) ListByGame(c echo.Context) error {
	gameID, err := strconv.ParseUint(c.Param("gameId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pts, err := h.ProductTypes.ListActiveByGame(ctx, gameID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if len(pts) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "no active product types for this game"})
	}
	out := make([]productTypeResp, 0, len(pts))
	for _, pt := range pts {
		out = append(out, productTypeResp{ID: pt.ID, Name: pt.Name, GameID: pt.GameID, IsActive: pt.IsActive})
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a product type under an existing game. Admin only.
func (h *ProductTypeHandler) Create(c echo.Context) error {
	var req productTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.GameID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "product type name and game are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Games.GetByID(ctx, req.GameID); err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	id, err := h.ProductTypes.Create(ctx, req.Name, req.GameID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "product type created",
		"productType": productTypeResp{ID: id, Name: req.Name, GameID: req.GameID, IsActive: true},
	})
}

// Update rewrites a product type's fields. Admin only.
func (h *ProductTypeHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product type id"})
	}
	var req productTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.GameID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "product type name and game are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pt, err := h.ProductTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if _, err := h.Games.GetByID(ctx, req.GameID); err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if err := h.ProductTypes.Update(ctx, id, req.Name, req.GameID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "product type updated",
		"productType": productTypeResp{ID: id, Name: req.Name, GameID: req.GameID, IsActive: pt.IsActive},
	})
}

// Delete soft-deletes a product type. Admin only.
func (h *ProductTypeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid product type id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.ProductTypes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductTypeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if err := h.ProductTypes.Deactivate(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product type deactivated"})
}
