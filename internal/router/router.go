// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/epinapi/epin-store/internal/config"
	"github.com/epinapi/epin-store/internal/handler"
	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
)

// Deps bundles everything route registration needs. The Redis client may be
// nil; caching and rate limiting then degrade to pass-through.
type Deps struct {
	Cfg       config.Config
	CacheCfg  config.CacheConfig
	RateCfg   config.RateLimitConfig
	Redis     *redis.Client
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Category  *handler.CategoryHandler
	Game      *handler.GameHandler
	Product   *handler.ProductTypeHandler
	Epin      *handler.EpinHandler
	Order     *handler.OrderHandler
	Dashboard *handler.DashboardHandler
	Log       *handler.LogHandler
}

// Register attaches every route. Public catalog GETs sit behind the Redis
// response cache; the credential endpoints sit behind the token-bucket rate
// limiter; everything stateful requires a verified access token, with admin
// surfaces additionally gated on the Admin role.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	jwtAuth := middleware.JWTAuth(d.Cfg.JWTSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleUser, model.RoleAdmin)
	cached := middleware.NewRedisCache(d.CacheCfg, d.Redis)
	limited := middleware.NewTokenBucket(d.RateCfg, d.Redis)

	api := e.Group("/api")

	// Authentication. Register/login/refresh are rate limited because each
	// request costs a bcrypt or token verification.
	users := api.Group("/users")
	users.POST("/register", d.Auth.Register, limited)
	users.POST("/login", d.Auth.Login, limited)
	users.POST("/admin-login", d.Auth.AdminLogin, limited)
	users.POST("/refresh", d.Auth.Refresh, limited)
	users.POST("/logout", d.Auth.Logout, jwtAuth)

	// User administration. Reading a single account is allowed for the
	// account owner; the rest is admin only.
	users.GET("", d.Users.List, jwtAuth, adminOnly)
	users.GET("/:id", d.Users.GetByID, jwtAuth, anyRole)
	users.PATCH("/:id/role", d.Users.UpdateRole, jwtAuth, adminOnly)
	users.PATCH("/:id/status", d.Users.UpdateStatus, jwtAuth, adminOnly)

	// Catalog: categories.
	categories := api.Group("/categories")
	categories.GET("", d.Category.List, cached)
	categories.POST("", d.Category.Create, jwtAuth, adminOnly)
	categories.PUT("/:id", d.Category.Update, jwtAuth, adminOnly)
	categories.DELETE("/:id", d.Category.Delete, jwtAuth, adminOnly)

	// Catalog: games and their product types.
	games := api.Group("/games")
	games.GET("", d.Game.List, cached)
	games.GET("/:id/product-types", d.Game.ListProductTypes, cached)
	games.POST("", d.Game.Create, jwtAuth, adminOnly)
	games.PUT("/:id", d.Game.Update, jwtAuth, adminOnly)
	games.DELETE("/:id", d.Game.Delete, jwtAuth, adminOnly)

	productTypes := api.Group("/game-product-types")
	productTypes.GET("/by-game/:gameId", d.Product.ListByGame, cached)
	productTypes.POST("", d.Product.Create, jwtAuth, adminOnly)
	productTypes.PUT("/:id", d.Product.Update, jwtAuth, adminOnly)
	productTypes.DELETE("/:id", d.Product.Delete, jwtAuth, adminOnly)

	// Inventory.
	epins := api.Group("/epins")
	epins.GET("", d.Epin.List, cached)
	epins.GET("/filter", d.Epin.Filter, cached)
	epins.GET("/:id", d.Epin.GetByID, cached)
	epins.POST("", d.Epin.Create, jwtAuth, adminOnly)
	epins.PUT("/:id", d.Epin.Update, jwtAuth, adminOnly)
	epins.PUT("/:id/status", d.Epin.UpdateStatus, jwtAuth, adminOnly)

	// Orders. Placement and listing are for any authenticated user; the
	// handlers scope what non-admins can see.
	orders := api.Group("/orders", jwtAuth, anyRole)
	orders.POST("", d.Order.Create)
	orders.GET("", d.Order.List)
	orders.GET("/:id", d.Order.GetByID)
	orders.PUT("/:id/status", d.Order.UpdateStatus, adminOnly)

	// Admin dashboard and audit trail.
	dashboard := api.Group("/dashboard", jwtAuth, adminOnly)
	dashboard.GET("/summary", d.Dashboard.Summary)
	dashboard.GET("/sales", d.Dashboard.Sales)
	dashboard.GET("/top-epins", d.Dashboard.TopEpins)

	logs := api.Group("/logs", jwtAuth, adminOnly)
	logs.GET("/admin-actions", d.Log.AdminActions)
	logs.GET("/failed-logins", d.Log.FailedLogins)
}
