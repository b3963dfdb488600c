package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// RegisterCustomer registers authenticated ticket endpoints under /v1.
// Both roles may buy tickets; the purchase route additionally carries
// the rate limiter to blunt bursts against a single session.
func RegisterCustomer(e *echo.Echo, t *handler.TicketHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("/tickets", t.Purchase, middleware.RateLimit(rlCfg, rdb))
	g.GET("/my-tickets", t.MyTickets)
}
