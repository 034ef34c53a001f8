package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/handler"
	"github.com/gamearena/arena-server/internal/middleware"
)

// RegisterArena registers the player-scoped endpoints under /v1: the
// V/S matchmaking queue, direct match requests, notifications and
// tournament registration.  All routes require a valid JWT with the
// PLAYER role.
func RegisterArena(
	e *echo.Echo,
	vs *handler.VSMatchHandler,
	req *handler.RequestHandler,
	n *handler.NotificationHandler,
	t *handler.TournamentHandler,
	jwtSecret string,
) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PLAYER"),
	)

	// ---- V/S matchmaking ----
	g.POST("/vs-matches", vs.RequestMatch)
	g.GET("/vs-matches", vs.ListTickets)
	g.GET("/vs-matches/:id", vs.GetTicket)
	g.DELETE("/vs-matches/:id", vs.CancelTicket)

	// ---- Direct match requests ----
	g.POST("/match-requests", req.Send)
	g.GET("/match-requests/incoming", req.Incoming)
	g.GET("/match-requests", req.History)
	g.POST("/match-requests/:id/resolve", req.Resolve)

	// ---- Notifications ----
	g.GET("/notifications", n.List)
	g.POST("/notifications/:id/read", n.MarkRead)

	// ---- Tournament registration ----
	g.POST("/tournaments/:id/register", t.Register)
	g.GET("/my-registrations", t.MyRegistrations)
}
