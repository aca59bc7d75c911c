package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vehicle-yard/internal/config"
	"github.com/iliyamo/vehicle-yard/internal/handler"
	"github.com/iliyamo/vehicle-yard/internal/middleware"
)

// Handlers bundles every handler the router mounts. Keeping them in
// one struct keeps RegisterRoutes' signature stable as endpoints grow.
type Handlers struct {
	Auth     *handler.AuthHandler
	Vehicles *handler.VehicleHandler
	Audit    *handler.AuditHandler
	Export   *handler.ExportHandler
	Stats    *handler.StatsHandler
	Plates   *handler.PlateHandler
}

// RegisterRoutes mounts every endpoint on the Echo instance.
//
// Layout:
//   - /healthz is public, for load balancers and monitoring.
//   - /v1/auth/* issues and exchanges tokens without a session.
//   - everything else under /v1 requires a valid access token and one
//     of the staff roles, and is rate limited per user+route. The
//     read-heavy listing and stats endpoints additionally sit behind
//     the Redis response cache.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated session management.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	// Logout accepts either a bearer token or a refresh token in the
	// body, so it stays outside the JWT middleware.
	authGroup.POST("/logout", h.Auth.Logout)

	// Protected group: JWT, role check, then the distributed rate
	// limiter. Both staff roles may operate the yard.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RequireRole("user", "admin"))
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	v1.GET("/me", h.Auth.Me)

	// The response cache only wraps GETs that tolerate short staleness.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	v1.GET("/vehicles", h.Vehicles.List, cache)
	v1.GET("/vehicles/stats", h.Stats.Get, cache)
	v1.GET("/vehicles/export", h.Export.CSV)
	v1.POST("/vehicles", h.Vehicles.Create)
	v1.GET("/vehicles/:id", h.Vehicles.GetByID)
	v1.PUT("/vehicles/:id", h.Vehicles.Update)
	v1.DELETE("/vehicles/:id", h.Vehicles.Delete)
	v1.POST("/vehicles/:id/devolver", h.Vehicles.MarkAsReturned)
	v1.POST("/vehicles/:id/desfazer-devolucao", h.Vehicles.UndoReturn)
	v1.PATCH("/vehicles/:id/pericia", h.Vehicles.UpdatePericiaStatus)

	v1.GET("/logs", h.Audit.List)
	v1.POST("/logs/:id/reverter", h.Audit.Revert)

	v1.GET("/placas/:placa", h.Plates.Search)
}
