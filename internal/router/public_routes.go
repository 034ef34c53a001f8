package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints: the
// player directory, the tournament listing, the matchmaking window
// and the contact form.  No JWT or role middleware is applied so
// guests can browse before signing up.  The optional middleware (the
// Redis response cache) applies to the GET listings only; cached
// responses here are the same for every caller.
func RegisterPublic(
	e *echo.Echo,
	players *handler.PlayerHandler,
	tournaments *handler.TournamentHandler,
	vs *handler.VSMatchHandler,
	contact *handler.ContactHandler,
	mw ...echo.MiddlewareFunc,
) {
	// Player directory; ?q= filters by username, game UID or level.
	e.GET("/v1/players", players.List, mw...)
	e.GET("/v1/players/:id", players.Get, mw...)

	// Tournaments, soonest first.
	e.GET("/v1/tournaments", tournaments.List, mw...)
	e.GET("/v1/tournaments/:id", tournaments.Get, mw...)

	// Tonight's matchmaking window, for countdown displays.  Not
	// cached: the open flag must flip exactly at the boundary.
	e.GET("/v1/vs-matches/window", vs.Window)

	e.POST("/v1/contact", contact.Submit)
}
