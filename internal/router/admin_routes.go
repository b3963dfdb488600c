package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/handler"
	"github.com/iliyamo/cinema-ticketing/internal/middleware"
	"github.com/iliyamo/cinema-ticketing/internal/model"
)

// AdminDeps groups the handlers behind the ADMIN role.
type AdminDeps struct {
	Films    *handler.FilmHandler
	Actors   *handler.ActorHandler
	Halls    *handler.HallHandler
	Sessions *handler.SessionHandler
	Tickets  *handler.TicketHandler
	Users    *handler.UserHandler
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1: catalogue
// and schedule mutations, ticket reports and user management.
func RegisterAdmin(e *echo.Echo, d AdminDeps, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Films ----
	g.POST("/films", d.Films.Create)
	g.PATCH("/films/:id", d.Films.Update)
	g.PUT("/films/:id", d.Films.Update)
	g.DELETE("/films/:id", d.Films.Delete)
	g.POST("/films/:id/actors", d.Films.LinkActor)
	g.GET("/films/:id/sold-tickets", d.Films.SoldTickets)

	// ---- Actors ----
	g.POST("/actors", d.Actors.Create)
	g.DELETE("/actors/:id", d.Actors.Delete)

	// ---- Halls ----
	g.POST("/halls", d.Halls.Create)
	g.PATCH("/halls/:id", d.Halls.Update)
	g.PUT("/halls/:id", d.Halls.Update)
	g.DELETE("/halls/:id", d.Halls.Delete)

	// ---- Sessions ----
	g.POST("/sessions", d.Sessions.Create)
	g.DELETE("/sessions/:id", d.Sessions.Delete)

	// ---- Tickets ----
	g.GET("/tickets", d.Tickets.ListAll)
	g.DELETE("/tickets/:id", d.Tickets.Void)
	g.GET("/sessions/:id/tickets", d.Tickets.BySession)

	// ---- Users ----
	g.GET("/users", d.Users.List)
	g.GET("/users/:id", d.Users.Get)
	g.PATCH("/users/:id", d.Users.Update)
	g.DELETE("/users/:id", d.Users.Delete)
}
