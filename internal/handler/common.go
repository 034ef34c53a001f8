package handler // handler defines the HTTP handlers of the arena server

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gamearena/arena-server/internal/model"
)

// currentUserID extracts the authenticated user id stored in the
// context by the JWT middleware and converts it to uint64.
func currentUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// ----- response shapes shared across handlers -----

type profileView struct {
	UserID       uint64  `json:"user_id"`
	Username     string  `json:"username"`
	GameUID      string  `json:"game_uid"`
	Level        uint32  `json:"level"`
	Phone        string  `json:"phone,omitempty"`
	ActiveTime   string  `json:"active_time,omitempty"`
	Tokens       int64   `json:"tokens"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toProfileView(p *model.Profile) profileView {
	return profileView{
		UserID:       p.UserID,
		Username:     p.Username,
		GameUID:      p.GameUID,
		Level:        p.Level,
		Phone:        p.Phone,
		ActiveTime:   p.ActiveTime,
		Tokens:       p.Tokens,
		ProfilePhoto: p.ProfilePhoto,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toProfileViews(ps []*model.Profile) []profileView {
	out := make([]profileView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfileView(p))
	}
	return out
}

type ticketView struct {
	ID               uint64  `json:"id"`
	MatchSize        string  `json:"match_size"`
	Status           string  `json:"status"`
	OpponentTicketID *uint64 `json:"opponent_ticket_id,omitempty"`
	RoomID           *string `json:"room_id,omitempty"`
	RoomSecret       *string `json:"room_secret,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toTicketView(t *model.MatchTicket) ticketView {
	return ticketView{
		ID:               t.ID,
		MatchSize:        string(t.MatchSize),
		Status:           string(t.Status),
		OpponentTicketID: t.OpponentTicketID,
		RoomID:           t.RoomID,
		RoomSecret:       t.RoomSecret,
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type notificationView struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationView(n *model.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Kind:      n.Kind,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type tournamentView struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	MatchType       string `json:"match_type"`
	EntryFeeTokens  uint32 `json:"entry_fee_tokens"`
	PrizePoolTokens uint32 `json:"prize_pool_tokens"`
	MaxParticipants uint32 `json:"max_participants"`
	Participants    uint32 `json:"participants"`
	StartTime       string `json:"start_time"`
}

func toTournamentView(t *model.Tournament) tournamentView {
	return tournamentView{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		MatchType:       t.MatchType,
		EntryFeeTokens:  t.EntryFeeTokens,
		PrizePoolTokens: t.PrizePoolTokens,
		MaxParticipants: t.MaxParticipants,
		Participants:    t.Participants,
		StartTime:       t.StartTime.UTC().Format(time.RFC3339),
	}
}
