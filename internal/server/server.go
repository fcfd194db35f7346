// Package server assembles repositories, services and the echo instance.
package server

import (
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/book-lending/internal/config"
	"github.com/iliyamo/book-lending/internal/handler"
	"github.com/iliyamo/book-lending/internal/middleware"
	"github.com/iliyamo/book-lending/internal/repository"
	"github.com/iliyamo/book-lending/internal/router"
	"github.com/iliyamo/book-lending/internal/service"
	"github.com/iliyamo/book-lending/internal/storage"
	"github.com/iliyamo/book-lending/internal/utils"
)

// App holds the wired services.
type App struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Bookings *service.ReservationService
	Admin    *service.AdminService
	Photos   *storage.DiskStore
}

// NewApp wires stores and services.  Revocations live in Redis when
// REVOCATION_STORE=redis and a client is available, otherwise in SQL.
func NewApp(cfg config.Config, db *sqlx.DB, rdb *redis.Client, events service.EventPublisher) *App {
	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)
	reservations := repository.NewReservationRepo(db)
	photos := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)

	var revocations service.RevocationStore = repository.NewTokenRepo(db)
	if cfg.Revocations == "redis" && rdb != nil {
		revocations = repository.NewRedisRevocations(rdb, "")
	}

	auth := service.NewAuthService(users, revocations, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	catalog := service.NewCatalogService(books, reservations, photos)
	bookings := service.NewReservationService(reservations, books, photos, events)
	return &App{
		Auth:     auth,
		Catalog:  catalog,
		Bookings: bookings,
		Admin:    service.NewAdminService(users, reservations, catalog, bookings),
		Photos:   photos,
	}
}

// New builds the echo instance with every route registered.  rdb may be
// nil, which disables caching and rate limiting.
func New(cfg config.Config, app *App, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Env == "dev"
	e.JSONSerializer = utils.JSONSerializer{}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	if cfg.MaxUploadBytes > 0 {
		// multipart overhead on top of the photo itself
		e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+1<<20, 10)))
	}
	e.Use(middleware.InvalidateCache(cacheCfg, rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(app.Auth), app.Auth, middleware.NewTokenBucket(rlCfg, rdb))
	router.RegisterBooks(e, handler.NewBookHandler(app.Catalog, app.Photos, cfg.MaxUploadBytes), app.Auth, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterReservations(e, handler.NewReservationHandler(app.Bookings), app.Auth)
	router.RegisterAdmin(e, handler.NewAdminHandler(app.Admin), app.Auth)
	return e
}
