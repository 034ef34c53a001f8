package model

import "time"

// Notification kinds.  Match pairing and timeout notifications are
// produced by the matchmaking notifier; request notifications by the
// match-request handlers.
const (
	NotifyMatch   = "match"
	NotifyRequest = "request"
	NotifySystem  = "system"
)

// Notification is an in-app message for a single user.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient.
//  Title     – short headline.
//  Message   – body text.
//  Kind      – match, request or system.
//  Read      – whether the user has opened it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Kind      string    // notifications.kind
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
