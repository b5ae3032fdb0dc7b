// Package handler implements the HTTP endpoints of the storefront API.
// Handlers bind and validate input, call repositories with bounded
// contexts, and map sentinel errors onto structured JSON responses.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/config"
	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/repository"
	"github.com/epinapi/epin-store/internal/utils"
)

// dbTimeout bounds every store round trip issued from a handler.
const dbTimeout = 5 * time.Second

// UserStore is the subset of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RefreshStore persists per-(user, device) refresh sessions.
type RefreshStore interface {
	Upsert(ctx context.Context, userID uint64, device, tokenHash string, exp time.Time) error
	FindByTokenAndDevice(ctx context.Context, tokenHash, device string) (model.RefreshToken, error)
	DeleteByID(ctx context.Context, id uint64) error
	DeleteByUserAndDevice(ctx context.Context, userID uint64, device string) error
}

// AuditLog appends fire-and-forget audit entries.
type AuditLog interface {
	Log(ctx context.Context, actorID uint64, action, endpoint string)
}

// AuthHandler bundles dependencies for registration, login, token refresh
// and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens RefreshStore
	Audit  AuditLog
}

func NewAuthHandler(cfg config.Config, u UserStore, t RefreshStore, a AuditLog) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Audit: a}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// deviceInfo derives the coarse device key scoping refresh sessions. The
// raw User-Agent is weak (identical browser/OS pairs collide) but matches
// the one-session-per-device model; a client-generated device id could
// replace it without touching the flow.
func deviceInfo(c echo.Context) string {
	return c.Request().UserAgent()
}

// Register creates a new account with role User and no balance. Duplicate
// emails are a validation failure, not a conflict the client can act on
// differently.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email and password are required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid email address"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "email address already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create user"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user created successfully"})
}

// Login authenticates a regular user and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	return h.authenticate(c, false)
}

// AdminLogin authenticates against the admin panel. Besides the regular
// checks it rejects non-Admin roles and audit-logs failed and unauthorized
// attempts.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.authenticate(c, true)
}

// authenticate runs the shared credential flow. The check order is fixed:
// credentials first, then active status, then (admin mode only) the role.
// A request with a wrong password learns nothing about account status, and
// a disabled account learns nothing about admin privileges.
func (h *AuthHandler) authenticate(c echo.Context, adminMode bool) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Lookup uses the email exactly as provided; registration stores it
	// lowercased, so case mismatches fail as invalid credentials.
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return h.invalidCredentials(c, ctx, adminMode, req.Email)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return h.invalidCredentials(c, ctx, adminMode, req.Email)
	}
	if !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "your account is disabled, please contact an administrator"})
	}
	if adminMode && u.Role != model.RoleAdmin {
		h.Audit.Log(ctx, u.ID, "unauthorized admin panel login attempt", c.Path())
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin access required"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not issue access token"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not issue refresh token"})
	}
	// One record per (user, device): a repeat login from the same device
	// overwrites the previous secret instead of stacking sessions.
	if err := h.Tokens.Upsert(ctx, u.ID, deviceInfo(c), utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not save session"})
	}

	msg := "login successful"
	if adminMode {
		msg = "admin login successful"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      msg,
		"accessToken":  access.Token,
		"refreshToken": refresh.Raw,
		"user":         userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()},
	})
}

// invalidCredentials answers the uniform 401 for unknown email or wrong
// password, audit-logging the attempt when it targeted the admin panel.
func (h *AuthHandler) invalidCredentials(c echo.Context, ctx context.Context, adminMode bool, email string) error {
	if adminMode {
		h.Audit.Log(ctx, 0, "failed admin login attempt: "+email, c.Path())
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
}

// Refresh exchanges a valid refresh token, matched by value and device,
// for a new token pair. Rotation is strict: the stored secret is replaced
// on every success, so a replayed old value matches nothing.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "refreshToken is required"})
	}
	device := deviceInfo(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rt, err := h.Tokens.FindByTokenAndDevice(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)), device)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session not found"})
	}
	// Should be unreachable given the FK, but a malformed row must not
	// mint tokens for user 0.
	if rt.UserID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session not found"})
	}
	if !time.Now().UTC().Before(rt.ExpiresAt) {
		_ = h.Tokens.DeleteByID(ctx, rt.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session expired, please log in again"})
	}

	// Role and email are re-read live, so a role change since the last
	// login takes effect on the next refresh.
	u, err := h.Users.GetByID(ctx, rt.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session not found"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not issue access token"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not issue refresh token"})
	}
	if err := h.Tokens.Upsert(ctx, u.ID, device, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not save session"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  access.Token,
		"refreshToken": refresh.Raw,
	})
}

// Logout deletes the caller's refresh record for this device. Outstanding
// access tokens stay valid until their own expiry; only the ability to
// renew is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.DeleteByUserAndDevice(ctx, userID, deviceInfo(c)); err != nil {
		if errors.Is(err, repository.ErrRefreshNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "already logged out or session expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}
