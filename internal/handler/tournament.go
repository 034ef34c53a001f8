package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/repository"
)

// TournamentHandler serves the tournament listing and registrations.
type TournamentHandler struct {
	Tournaments *repository.TournamentRepo
}

func NewTournamentHandler(t *repository.TournamentRepo) *TournamentHandler {
	return &TournamentHandler{Tournaments: t}
}

// List returns all tournaments, the soonest first.
func (h *TournamentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Tournaments.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tournaments failed"})
	}
	views := make([]tournamentView, 0, len(list))
	for _, t := range list {
		views = append(views, toTournamentView(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tournaments": views})
}

// Get returns one tournament.
func (h *TournamentHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tournament not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load tournament failed"})
	}
	return c.JSON(http.StatusOK, toTournamentView(t))
}

type registerTournamentReq struct {
	TeamName string `json:"team_name"`
}

// Register enters the caller into a tournament.  Duplicate entries
// and registrations past the participant cap are rejected.
func (h *TournamentHandler) Register(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tournament id"})
	}
	var req registerTournamentReq
	_ = c.Bind(&req)
	var team *string
	if t := strings.TrimSpace(req.TeamName); t != "" {
		team = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tournaments.Register(ctx, id, uid, team); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tournament not found"})
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered"})
		case errors.Is(err, repository.ErrTournamentFull):
			return c.JSON(http.StatusConflict, echo.Map{"error": "tournament is full"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"tournament_id": id, "registered": true})
}

// MyRegistrations lists the caller's registrations, newest first.
func (h *TournamentHandler) MyRegistrations(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	regs, err := h.Tournaments.ListRegistrationsByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list registrations failed"})
	}
	type regView struct {
		ID           uint64  `json:"id"`
		TournamentID uint64  `json:"tournament_id"`
		TeamName     *string `json:"team_name,omitempty"`
		CreatedAt    string  `json:"created_at"`
	}
	views := make([]regView, 0, len(regs))
	for _, r := range regs {
		views = append(views, regView{
			ID:           r.ID,
			TournamentID: r.TournamentID,
			TeamName:     r.TeamName,
			CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": views})
}
