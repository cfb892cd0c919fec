// Package router wires handlers to routes and decides which middleware
// guards each group: JWT for customer endpoints, JWT plus the ADMIN role
// for overrides, and HMAC body signatures for the gateway webhook.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/teatralka/box-office/internal/config"
	"github.com/teatralka/box-office/internal/handler"
	"github.com/teatralka/box-office/internal/middleware"
)

// Deps carries everything route registration needs.
type Deps struct {
	Orders      *handler.OrderHandler
	Avail       *handler.AvailabilityHandler
	Settlements *handler.SettlementHandler
	Blocks      *handler.BlockHandler

	JWTSecret     string
	WebhookSecret string
	RateLimit     config.RateLimitConfig
	Cache         config.CacheConfig
	Redis         *redis.Client
}

// Register attaches all routes to the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	// Availability is public: seat maps render before login. It is also
	// the hottest read path, so it sits behind the response cache.
	e.GET("/v1/schedule/:id/availability", d.Avail.Snapshot,
		limiter, middleware.ResponseCache(d.Cache, d.Redis))

	// The gateway webhook authenticates with a body signature, not a
	// JWT; gateways do not hold user sessions.
	e.POST("/v1/payments/webhook/:gateway", d.Settlements.Webhook,
		middleware.VerifyWebhookSignature(d.WebhookSecret))

	auth := e.Group("/v1", middleware.JWTAuth(d.JWTSecret), limiter)
	auth.POST("/orders", d.Orders.Create)
	auth.GET("/orders", d.Orders.List)
	auth.GET("/orders/:id", d.Orders.Get)
	auth.POST("/payments/simulate", d.Settlements.Simulate)

	admin := e.Group("/v1/admin", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole("ADMIN"))
	admin.PUT("/orders/:id/status", d.Settlements.AdminSetStatus)
	admin.POST("/seat-blocks", d.Blocks.Create)
	admin.DELETE("/seat-blocks/:id", d.Blocks.Delete)
	admin.DELETE("/seat-blocks", d.Blocks.DeletePair)
}
