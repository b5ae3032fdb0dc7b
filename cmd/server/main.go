package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/config"
	"github.com/epinapi/epin-store/internal/database"
	"github.com/epinapi/epin-store/internal/handler"
	"github.com/epinapi/epin-store/internal/queue"
	"github.com/epinapi/epin-store/internal/repository"
	"github.com/epinapi/epin-store/internal/router"
	"github.com/epinapi/epin-store/internal/service"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching and rate limiting disabled")
	}

	userRepo := repository.NewUserRepo(db)
	refreshRepo := repository.NewRefreshTokenRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	gameRepo := repository.NewGameRepo(db)
	productTypeRepo := repository.NewProductTypeRepo(db)
	epinRepo := repository.NewEpinRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	adminLogRepo := repository.NewAdminLogRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	audit := service.NewAdminLogService(adminLogRepo)

	deps := router.Deps{
		Cfg:       cfg,
		CacheCfg:  config.LoadCacheConfig(),
		RateCfg:   config.LoadRateLimitConfig(),
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, userRepo, refreshRepo, audit),
		Users:     handler.NewUserHandler(userRepo),
		Category:  handler.NewCategoryHandler(categoryRepo),
		Game:      handler.NewGameHandler(gameRepo, categoryRepo, productTypeRepo),
		Product:   handler.NewProductTypeHandler(productTypeRepo, gameRepo),
		Epin:      handler.NewEpinHandler(epinRepo, audit),
		Order:     handler.NewOrderHandler(orderRepo, epinRepo, userRepo, audit),
		Dashboard: handler.NewDashboardHandler(dashRepo),
		Log:       handler.NewLogHandler(adminLogRepo),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, deps)

	// Fulfillment consumer drains order.created in the background and
	// reconnects on broker failures.
	go queue.StartOrderConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
