package matchmaking

import (
	"context"
	"log"
	"sync"
	"time"
)

// Supervisor enforces the ticket timeout.  Two mechanisms cooperate:
// a one-shot in-process timer per armed ticket for promptness, and a
// periodic database sweep (RunSweeper) that expires any WAITING
// ticket past its deadline, so a process restart cannot leave a user
// waiting forever.  Both paths go through the store's conditional
// ExpireIfStillWaiting / ExpireOverdue, which makes redundant firing
// harmless: a ticket that already paired or expired is a silent
// no-op and never produces a duplicate notification.
type Supervisor struct {
	store    TicketStore
	notifier Notifier
	delay    time.Duration

	mu     sync.Mutex
	timers map[uint64]*time.Timer
}

// NewSupervisor returns a supervisor expiring tickets after delay.
func NewSupervisor(store TicketStore, n Notifier, delay time.Duration) *Supervisor {
	return &Supervisor{
		store:    store,
		notifier: n,
		delay:    delay,
		timers:   make(map[uint64]*time.Timer),
	}
}

// Arm schedules a one-shot expiry check for the ticket.  Arming the
// same ticket twice is safe and keeps the earlier timer.
func (s *Supervisor) Arm(ticketID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[ticketID]; ok {
		return
	}
	s.timers[ticketID] = time.AfterFunc(s.delay, func() { s.fire(ticketID) })
}

func (s *Supervisor) fire(ticketID uint64) {
	s.mu.Lock()
	delete(s.timers, ticketID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed, err := s.store.ExpireIfStillWaiting(ctx, ticketID)
	if err != nil {
		log.Printf("matchmaking: expiring ticket %d failed: %v", ticketID, err)
		return
	}
	if !changed {
		// Paired (or already expired) in the meantime.
		return
	}
	t, err := s.store.GetByID(ctx, ticketID)
	if err != nil {
		log.Printf("matchmaking: loading expired ticket %d failed: %v", ticketID, err)
		return
	}
	s.notifier.Notify(ctx, t.UserID, OutcomeExpired, t)
}

// RunSweeper periodically expires overdue WAITING tickets straight
// from the database and notifies their owners.  It blocks until ctx
// is cancelled.
func (s *Supervisor) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Supervisor) sweep(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	expired, err := s.store.ExpireOverdue(sctx, time.Now().Add(-s.delay))
	if err != nil {
		log.Printf("matchmaking: sweep failed: %v", err)
		return
	}
	for _, t := range expired {
		s.notifier.Notify(sctx, t.UserID, OutcomeExpired, t)
	}
}

// Stop cancels all armed timers.  Pending tickets are picked up by
// the sweeper on the next start.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
