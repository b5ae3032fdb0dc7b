package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/repository"
)

// UserHandler exposes the administrative user surface: listing accounts,
// reading a single account, and flipping role or active status.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

type updateRoleReq struct {
	Role string `json:"role"`
}
type updateStatusReq struct {
	IsActive *bool `json:"isActive"`
}

// List returns all accounts without password hashes. Admin only.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()})
	}
	return c.JSON(http.StatusOK, out)
}

// GetByID returns one account. Regular users may only read themselves;
// admins may read anyone.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}

	callerID := middleware.CurrentUserID(c)
	role, _ := middleware.CurrentRole(c)
	if role != model.RoleAdmin && callerID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "you may only view your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()})
}

// UpdateRole reassigns a user's role. An Admin can only be reassigned
// Admin; demotion is rejected outright. Admin only.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	newRole, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if u.Role == model.RoleAdmin && newRole != model.RoleAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "admin role cannot be changed"})
	}

	if err := h.Users.UpdateRole(ctx, id, newRole); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user role updated",
		"user":    userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: newRole.String()},
	})
}

// UpdateStatus activates or deactivates an account. Admin only.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "isActive is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	if err := h.Users.UpdateStatus(ctx, id, *req.IsActive); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	msg := "user deactivated"
	if *req.IsActive {
		msg = "user activated"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msg,
		"user":    userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()},
	})
}
