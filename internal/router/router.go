// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-ticketing/internal/config"
	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login and the
// refresh flows live under /v1/auth and need no session; /v1/me needs
// a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh_token body (revoke one), so it carries no middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/auth/change-password", a.ChangePassword)
}

// PublicDeps groups the handlers serving unauthenticated browsing.
type PublicDeps struct {
	Films    *handler.FilmHandler
	Actors   *handler.ActorHandler
	Halls    *handler.HallHandler
	Sessions *handler.SessionHandler
	Tickets  *handler.TicketHandler
}

// RegisterPublic registers the guest browse endpoints.  Read traffic
// dominates here, so the group carries the Redis response cache when
// one is configured.
func RegisterPublic(e *echo.Echo, d PublicDeps, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.ResponseCache(cacheCfg, rdb))

	g.GET("/films", d.Films.List)
	g.GET("/films/:id", d.Films.Get)
	g.GET("/films/:id/actors", d.Films.Cast)
	g.GET("/films/:id/sessions", d.Sessions.ByFilm)

	g.GET("/actors", d.Actors.List)
	g.GET("/actors/:id", d.Actors.Get)

	g.GET("/halls", d.Halls.List)
	g.GET("/halls/:id", d.Halls.Get)

	g.GET("/sessions", d.Sessions.List)
	g.GET("/sessions/:id", d.Sessions.Get)
	g.GET("/sessions/:id/free-seats", d.Tickets.FreeSeats)
}
