package model

import "time"

// MatchSize enumerates the supported V/S match formats.
type MatchSize string

const (
	Size1v1 MatchSize = "1v1"
	Size2v2 MatchSize = "2v2"
	Size4v4 MatchSize = "4v4"
)

// ValidMatchSize reports whether s is one of the supported formats.
func ValidMatchSize(s MatchSize) bool {
	switch s {
	case Size1v1, Size2v2, Size4v4:
		return true
	}
	return false
}

// TicketStatus enumerates the lifecycle states of a match ticket.
// Transitions are monotonic: WAITING → PAIRED and WAITING → EXPIRED
// are the only ones; PAIRED and EXPIRED are terminal.
type TicketStatus string

const (
	TicketWaiting TicketStatus = "WAITING"
	TicketPaired  TicketStatus = "PAIRED"
	TicketExpired TicketStatus = "EXPIRED"
)

// MatchTicket is one user's standing request to be paired for a V/S
// match during the nightly window.  A user may hold at most one
// ticket in WAITING or PAIRED state at any time; the store enforces
// this at creation.  OpponentTicketID, RoomID and RoomSecret are set
// together exactly once when the ticket is paired, and two paired
// tickets always reference each other reciprocally and carry the
// same room credentials.  Tickets are never deleted; they remain as
// match history.
//
// Fields:
//  ID               – primary key identifier, assigned at creation.
//  UserID           – owner; exactly one user per ticket.
//  MatchSize        – 1v1/2v2/4v4, fixed at creation.
//  Status           – WAITING, PAIRED or EXPIRED.
//  OpponentTicketID – the other ticket of the pairing (null until paired).
//  RoomID           – shared room identifier (null until paired).
//  RoomSecret       – shared room secret (null until paired).
//  CreatedAt        – creation timestamp; queue order and timeout base.
//  UpdatedAt        – last update timestamp.
type MatchTicket struct {
	ID               uint64       // vs_tickets.id
	UserID           uint64       // vs_tickets.user_id
	MatchSize        MatchSize    // vs_tickets.match_size
	Status           TicketStatus // vs_tickets.status
	OpponentTicketID *uint64      // vs_tickets.opponent_ticket_id (nullable)
	RoomID           *string      // vs_tickets.room_id (nullable)
	RoomSecret       *string      // vs_tickets.room_secret (nullable)
	CreatedAt        time.Time    // vs_tickets.created_at
	UpdatedAt        time.Time    // vs_tickets.updated_at
}
