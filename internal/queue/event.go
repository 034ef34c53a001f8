// Package queue defines message payloads exchanged over the message broker.
package queue

// MatchResolvedEvent is published whenever a V/S ticket reaches a
// terminal state, paired or expired.  It carries enough for
// downstream consumers to log or trigger analytics without querying
// the primary database.  The room secret travels only in the
// notification row, never over the broker.
type MatchResolvedEvent struct {
	TicketID         uint64  `json:"ticket_id"`
	UserID           uint64  `json:"user_id"`
	MatchSize        string  `json:"match_size"`
	Outcome          string  `json:"outcome"` // "paired" or "expired"
	OpponentTicketID *uint64 `json:"opponent_ticket_id,omitempty"`
	RoomID           *string `json:"room_id,omitempty"`
	ResolvedAt       string  `json:"resolved_at"`
}
