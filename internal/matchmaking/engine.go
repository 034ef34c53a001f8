package matchmaking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gamearena/arena-server/internal/model"
	"github.com/gamearena/arena-server/internal/repository"
)

// TicketStore is the persistence surface the pairing engine and the
// timeout supervisor need.  *repository.TicketRepo satisfies it; the
// tests use an in-memory implementation.  Every mutation must be an
// atomic conditional update so concurrent callers can never both
// claim the same ticket.
type TicketStore interface {
	CreateTicket(ctx context.Context, userID uint64, size model.MatchSize) (*model.MatchTicket, error)
	GetByID(ctx context.Context, id uint64) (*model.MatchTicket, error)
	FindWaitingCandidate(ctx context.Context, size model.MatchSize, excludeUserID uint64) (*model.MatchTicket, error)
	PairTickets(ctx context.Context, aID, bID uint64, roomID, roomSecret string) error
	ExpireIfStillWaiting(ctx context.Context, ticketID uint64) (bool, error)
	ExpireOverdue(ctx context.Context, cutoff time.Time) ([]*model.MatchTicket, error)
}

// Outcome is the terminal result of a ticket, delivered to its owner.
type Outcome string

const (
	OutcomePaired  Outcome = "paired"
	OutcomeExpired Outcome = "expired"
)

// Notifier informs a user of their ticket's outcome.  Fire and
// forget: delivery failures are not the engine's concern, so the
// interface returns nothing.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, outcome Outcome, ticket *model.MatchTicket)
}

// ErrOutsideWindow is returned when a ticket is requested outside
// the nightly matchmaking window.
var ErrOutsideWindow = errors.New("matchmaking window is closed")

// ErrBadMatchSize is returned for a match size other than 1v1/2v2/4v4.
var ErrBadMatchSize = errors.New("invalid match size")

// pairAttempts bounds the candidate-lookup retries after a stale
// pairing race, so the engine cannot loop under heavy contention.
const pairAttempts = 2

// Engine drives ticket creation and pairing.  Pairing is best
// effort: a request either pairs immediately with the oldest waiting
// ticket of the same size, or returns the ticket in WAITING state
// and leaves it to the supervisor's timeout.
type Engine struct {
	store    TicketStore
	notifier Notifier
	sup      *Supervisor
	now      func() time.Time
}

// NewEngine builds an engine and its timeout supervisor.  timeout is
// how long a ticket may wait for an opponent before it expires.  now
// may be nil, in which case time.Now is used; tests inject a fixed
// clock to pin the eligibility window.
func NewEngine(store TicketStore, n Notifier, timeout time.Duration, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:    store,
		notifier: n,
		sup:      NewSupervisor(store, n, timeout),
		now:      now,
	}
}

// Request creates a ticket for the user and attempts to pair it.
//
// Synchronous failures: ErrOutsideWindow when the nightly window is
// closed, ErrBadMatchSize for an unknown size, and
// repository.ErrAlreadyActive when the user already holds a WAITING
// or PAIRED ticket.  Stale-ticket races during pairing are retried a
// bounded number of times and then degrade to waiting for the
// timeout; they are never surfaced to the caller.
//
// The returned ticket is PAIRED when an opponent was found
// immediately, otherwise WAITING with the timeout armed.
func (e *Engine) Request(ctx context.Context, userID uint64, size model.MatchSize) (*model.MatchTicket, error) {
	if !model.ValidMatchSize(size) {
		return nil, ErrBadMatchSize
	}
	if !IsWindowOpen(e.now()) {
		return nil, ErrOutsideWindow
	}
	ticket, err := e.store.CreateTicket(ctx, userID, size)
	if err != nil {
		return nil, err
	}

	for i := 0; i < pairAttempts; i++ {
		candidate, err := e.store.FindWaitingCandidate(ctx, size, userID)
		if err != nil {
			log.Printf("matchmaking: candidate lookup failed for ticket %d: %v", ticket.ID, err)
			break
		}
		if candidate == nil {
			break
		}
		roomID, roomSecret := newRoomCredentials()
		err = e.store.PairTickets(ctx, ticket.ID, candidate.ID, roomID, roomSecret)
		if errors.Is(err, repository.ErrStaleTicket) {
			// Candidate raced into another pairing or expired; look again.
			continue
		}
		if err != nil {
			log.Printf("matchmaking: pairing tickets %d/%d failed: %v", ticket.ID, candidate.ID, err)
			break
		}
		return e.finishPairing(ctx, ticket.ID, candidate.ID)
	}

	e.sup.Arm(ticket.ID)
	return ticket, nil
}

// finishPairing reloads both sides after a successful pairing and
// notifies both owners with the room credentials.
func (e *Engine) finishPairing(ctx context.Context, aID, bID uint64) (*model.MatchTicket, error) {
	a, err := e.store.GetByID(ctx, aID)
	if err != nil {
		return nil, err
	}
	b, err := e.store.GetByID(ctx, bID)
	if err != nil {
		return nil, err
	}
	e.notifier.Notify(ctx, a.UserID, OutcomePaired, a)
	e.notifier.Notify(ctx, b.UserID, OutcomePaired, b)
	return a, nil
}

// RunSweeper runs the supervisor's durable expiry sweep until ctx is
// cancelled.  Intended to be started once from main.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	e.sup.RunSweeper(ctx, interval)
}

// Stop cancels all armed in-process timers.
func (e *Engine) Stop() { e.sup.Stop() }

// newRoomCredentials generates the opaque room identifier and secret
// shared by both paired tickets.  Derived from random UUIDs, so a
// collision is negligible; the short upper-case form matches what
// players type into the game client.
func newRoomCredentials() (roomID, roomSecret string) {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	secret := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ROOM_" + id[:8], secret[:12]
}
