package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/repository"
)

// PlayerHandler serves the player directory.
type PlayerHandler struct {
	Profiles *repository.ProfileRepo
}

func NewPlayerHandler(p *repository.ProfileRepo) *PlayerHandler {
	return &PlayerHandler{Profiles: p}
}

// List returns all player cards, optionally filtered by the q query
// parameter (username or game UID substring, or an exact level).
func (h *PlayerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Profiles.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list players failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"players": toProfileViews(list)})
}

// Get returns one player card by user id.
func (h *PlayerHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid player id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load player failed"})
	}
	return c.JSON(http.StatusOK, toProfileView(p))
}
