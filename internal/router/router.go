// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/show-booking/internal/config"
	"github.com/iliyamo/show-booking/internal/handler"
	"github.com/iliyamo/show-booking/internal/middleware"
	"github.com/iliyamo/show-booking/internal/model"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Auth        *handler.AuthHandler
	Events      *handler.EventHandler
	Finance     *handler.FinanceHandler
	Movements   *handler.MovementHandler
	Allocations *handler.AllocationHandler
	Actors      *handler.ActorHandler
	Stream      *handler.StreamHandler
}

// Register wires all routes.  /healthz and /v1/auth are public; the rest
// of /v1 sits behind JWT auth, the shared rate limiter and, for reads,
// the response cache.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)         // rotates the refresh token
	auth.POST("/refresh-access", h.Auth.RefreshAccess) // access only, no rotation
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1", limiter, middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleClient, model.RoleMember))
	v1.GET("/me", h.Auth.Me)

	v1.POST("/events", h.Events.Create)
	v1.GET("/events", h.Events.List, cache)
	v1.GET("/events/:id", h.Events.Get)
	v1.PUT("/events/:id", h.Events.Update)
	v1.POST("/events/:id/transition", h.Events.Transition)

	v1.GET("/events/:id/finance-summary", h.Finance.GetSummary)
	v1.PUT("/events/:id/finance/costs", h.Finance.UpdateManualCosts)

	v1.GET("/events/:id/movements", h.Movements.List)
	v1.POST("/events/:id/movements", h.Movements.Create)
	v1.PUT("/events/:id/movements/:movementId", h.Movements.Update)
	v1.DELETE("/events/:id/movements/:movementId", h.Movements.Delete)

	v1.GET("/events/:id/allocations", h.Allocations.Get)
	v1.POST("/events/:id/allocations", h.Allocations.Save)
	v1.PATCH("/events/:id/assignments/me", h.Allocations.PatchMyAssignment)

	v1.GET("/events/:id/stream", h.Stream.Stream)

	// Role management is the only admin-gated route group.
	admin := e.Group("/v1/actors", limiter, middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.PUT("/:id/role", h.Actors.UpdateRole)
}
