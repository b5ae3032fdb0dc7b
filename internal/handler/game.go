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

// GameHandler manages games and their public product-type listing.
type GameHandler struct {
	Games        *repository.GameRepo
	Categories   *repository.CategoryRepo
	ProductTypes *repository.ProductTypeRepo
}

func NewGameHandler(g *repository.GameRepo, c *repository.CategoryRepo, pt *repository.ProductTypeRepo) *GameHandler {
	return &GameHandler{Games: g, Categories: c, ProductTypes: pt}
}

type gameReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  uint64 `json:"categoryId"`
}

type gameResp struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CategoryID   uint64 `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// List returns all active games with their category names. Public.
func (h *GameHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	games, err := h.Games.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]gameResp, 0, len(games))
	for _, g := range games {
		out = append(out, gameResp{
			ID: g.ID, Name: g.Name, Description: g.Description,
			CategoryID: g.CategoryID, CategoryName: g.CategoryName, IsActive: g.IsActive,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a game under an existing category. Admin only.
func (h *GameHandler) Create(c echo.Context) error {
	var req gameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "game name and category are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Categories.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	id, err := h.Games.Create(ctx, req.Name, req.Description, req.CategoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "game created",
		"game": gameResp{
			ID: id, Name: req.Name, Description: req.Description,
			CategoryID: req.CategoryID, IsActive: true,
		},
	})
}

// Update rewrites a game's fields. Admin only.
func (h *GameHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
	}
	var req gameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "game name and category are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Games.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if _, err := h.Categories.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid category id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if err := h.Games.Update(ctx, id, req.Name, req.Description, req.CategoryID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "game updated",
		"game": gameResp{
			ID: id, Name: req.Name, Description: req.Description,
			CategoryID: req.CategoryID, IsActive: g.IsActive,
		},
	})
}

// Delete soft-deletes a game. Admin only.
func (h *GameHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Games.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if err := h.Games.Deactivate(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "game deactivated"})
}

// ListProductTypes returns a game's active product types. Public.
func (h *GameHandler) ListProductTypes(c echo.Context) error {
	gameID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid game id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "game not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	pts, err := h.ProductTypes.ListActiveByGame(ctx, gameID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]echo.Map, 0, len(pts))
	for _, pt := range pts {
		out = append(out, echo.Map{"id": pt.ID, "name": pt.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"gameId":       g.ID,
		"gameName":     g.Name,
		"productTypes": out,
	})
}
