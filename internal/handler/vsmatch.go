package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/matchmaking"
	"github.com/gamearena/arena-server/internal/model"
	"github.com/gamearena/arena-server/internal/repository"
)

// VSMatchHandler exposes the nightly V/S matchmaking queue.  Ticket
// creation goes through the pairing engine; reads and cancellation go
// straight to the ticket store.
type VSMatchHandler struct {
	Engine  *matchmaking.Engine
	Tickets *repository.TicketRepo
}

func NewVSMatchHandler(engine *matchmaking.Engine, tickets *repository.TicketRepo) *VSMatchHandler {
	return &VSMatchHandler{Engine: engine, Tickets: tickets}
}

type requestMatchReq struct {
	MatchSize string `json:"match_size"`
}

// RequestMatch creates a ticket and tries to pair it immediately.
// 201 with a PAIRED ticket when an opponent was found on the spot,
// 202 with a WAITING ticket when the user entered the queue.
func (h *VSMatchHandler) RequestMatch(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req requestMatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Engine.Request(ctx, uid, model.MatchSize(req.MatchSize))
	if err != nil {
		switch {
		case errors.Is(err, matchmaking.ErrBadMatchSize):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "match_size must be 1v1, 2v2 or 4v4"})
		case errors.Is(err, matchmaking.ErrOutsideWindow):
			opensAt, closesAt := matchmaking.WindowBounds(time.Now())
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":     "matchmaking is only open between 21:00 and 24:00",
				"opens_at":  opensAt.Format(time.RFC3339),
				"closes_at": closesAt.Format(time.RFC3339),
			})
		case errors.Is(err, repository.ErrAlreadyActive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already have an active match ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "request match failed"})
	}

	status := http.StatusAccepted
	if ticket.Status == model.TicketPaired {
		status = http.StatusCreated
	}
	return c.JSON(status, toTicketView(ticket))
}

// GetTicket returns one of the caller's tickets, for status polling.
func (h *VSMatchHandler) GetTicket(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByIDForUser(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}
	return c.JSON(http.StatusOK, toTicketView(ticket))
}

// ListTickets returns the caller's ticket history, newest first.
func (h *VSMatchHandler) ListTickets(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	views := make([]ticketView, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, toTicketView(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": views})
}

// CancelTicket withdraws a WAITING ticket early.  Only the owner may
// cancel, and only while the ticket has not paired or expired.
func (h *VSMatchHandler) CancelTicket(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tickets.CancelTicket(ctx, id, uid); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your ticket"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already paired or expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel ticket failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Window reports whether matchmaking is currently open and the bounds
// of today's window, so clients can render a countdown.
func (h *VSMatchHandler) Window(c echo.Context) error {
	now := time.Now()
	opensAt, closesAt := matchmaking.WindowBounds(now)
	return c.JSON(http.StatusOK, echo.Map{
		"open":      matchmaking.IsWindowOpen(now),
		"opens_at":  opensAt.Format(time.RFC3339),
		"closes_at": closesAt.Format(time.RFC3339),
	})
}
