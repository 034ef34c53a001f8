package model

import "time"

// Request statuses for direct player-to-player match requests.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestRejected = "REJECTED"
)

// MatchRequest is a direct challenge from one player to another,
// independent of the nightly V/S matchmaking queue.  The receiver
// accepts or rejects it; a rejection may carry a reason.
//
// Fields:
//  ID              – primary key identifier.
//  SenderID        – user who sent the request.
//  ReceiverID      – user who received the request.
//  MatchType       – requested format (1v1/2v2/4v4).
//  AvailableTime   – free-form text proposed by the sender.
//  Status          – PENDING, ACCEPTED or REJECTED.
//  RejectionReason – optional reason supplied on rejection.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type MatchRequest struct {
	ID              uint64    // match_requests.id
	SenderID        uint64    // match_requests.sender_id
	ReceiverID      uint64    // match_requests.receiver_id
	MatchType       string    // match_requests.match_type
	AvailableTime   string    // match_requests.available_time
	Status          string    // match_requests.status
	RejectionReason *string   // match_requests.rejection_reason (nullable)
	CreatedAt       time.Time // match_requests.created_at
	UpdatedAt       time.Time // match_requests.updated_at
}
