// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the matchmaking engine to distinguish between different
// failure scenarios with errors.Is instead of string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed due to
// conflicting state. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrAlreadyActive is returned by the ticket store when a user who
// already holds a WAITING or PAIRED ticket tries to create another
// one. The one-active-ticket rule is enforced atomically at insert
// time, not checked-then-acted.
var ErrAlreadyActive = errors.New("user already has an active ticket")

// ErrStaleTicket is returned by PairTickets when either ticket is no
// longer WAITING at commit time (raced into another pairing or
// expired). The whole operation is rolled back; the caller retries
// matching for the unaffected ticket.
var ErrStaleTicket = errors.New("ticket no longer waiting")

// ErrAlreadyRegistered is returned when a user registers twice for
// the same tournament.
var ErrAlreadyRegistered = errors.New("already registered for this tournament")

// ErrTournamentFull is returned when a tournament has reached its
// participant cap.
var ErrTournamentFull = errors.New("tournament is full")
