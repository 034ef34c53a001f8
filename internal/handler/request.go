package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/model"
	"github.com/gamearena/arena-server/internal/repository"
)

// RequestHandler manages direct player-to-player match requests,
// separate from the nightly V/S queue.
type RequestHandler struct {
	Requests      *repository.MatchRequestRepo
	Profiles      *repository.ProfileRepo
	Notifications *repository.NotificationRepo
}

func NewRequestHandler(r *repository.MatchRequestRepo, p *repository.ProfileRepo, n *repository.NotificationRepo) *RequestHandler {
	return &RequestHandler{Requests: r, Profiles: p, Notifications: n}
}

type sendRequestReq struct {
	ReceiverID    uint64 `json:"receiver_id"`
	MatchType     string `json:"match_type"`
	AvailableTime string `json:"available_time"`
}

type resolveRequestReq struct {
	Action string `json:"action"` // "accept" or "reject"
	Reason string `json:"reason"` // optional, rejections only
}

// Send creates a PENDING request and notifies the receiver.
func (h *RequestHandler) Send(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReceiverID == 0 || req.ReceiverID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid receiver"})
	}
	if !model.ValidMatchSize(model.MatchSize(req.MatchType)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "match_type must be 1v1, 2v2 or 4v4"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	receiver, err := h.Profiles.GetByUserID(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiver not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load receiver failed"})
	}
	sender, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load sender failed"})
	}

	id, err := h.Requests.Create(ctx, uid, req.ReceiverID, req.MatchType, strings.TrimSpace(req.AvailableTime))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}

	// Best effort; the request itself already succeeded.
	if err := h.Notifications.Create(ctx, receiver.UserID,
		"New match request",
		fmt.Sprintf("%s challenged you to a %s match.", sender.Username, req.MatchType),
		model.NotifyRequest); err != nil {
		c.Logger().Warnf("request notification failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": model.RequestPending})
}

// Incoming lists requests addressed to the caller, newest first.
func (h *RequestHandler) Incoming(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListIncoming(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list requests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

// History lists requests the caller sent or received, newest first.
func (h *RequestHandler) History(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListForUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list requests failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": list})
}

// Resolve lets the receiver accept or reject a pending request.  The
// sender is notified of the outcome either way.
func (h *RequestHandler) Resolve(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req resolveRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var status string
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "accept":
		status = model.RequestAccepted
	case "reject":
		status = model.RequestRejected
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be accept or reject"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	if mr.ReceiverID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the receiver can resolve a request"})
	}

	var reason *string
	if status == model.RequestRejected {
		if r := strings.TrimSpace(req.Reason); r != "" {
			reason = &r
		}
	}
	if err := h.Requests.UpdateStatus(ctx, id, status, reason); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "request already resolved"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "resolve request failed"})
	}

	receiver, err := h.Profiles.GetByUserID(ctx, uid)
	receiverName := "Your opponent"
	if err == nil {
		receiverName = receiver.Username
	}
	message := fmt.Sprintf("%s accepted your %s match request.", receiverName, mr.MatchType)
	if status == model.RequestRejected {
		message = fmt.Sprintf("%s declined your %s match request.", receiverName, mr.MatchType)
		if reason != nil {
			message += " Reason: " + *reason
		}
	}
	if err := h.Notifications.Create(ctx, mr.SenderID, "Match request "+strings.ToLower(status), message, model.NotifyRequest); err != nil {
		c.Logger().Warnf("resolution notification failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}
