package matchmaking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gamearena/arena-server/internal/model"
	"github.com/gamearena/arena-server/internal/repository"
)

// memStore is an in-memory TicketStore with the same conditional
// semantics as the MySQL repository.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	tickets map[uint64]*model.MatchTicket
}

func newMemStore() *memStore {
	return &memStore{tickets: make(map[uint64]*model.MatchTicket)}
}

func (s *memStore) CreateTicket(_ context.Context, userID uint64, size model.MatchSize) (*model.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.UserID == userID && (t.Status == model.TicketWaiting || t.Status == model.TicketPaired) {
			return nil, repository.ErrAlreadyActive
		}
	}
	s.nextID++
	t := &model.MatchTicket{
		ID:        s.nextID,
		UserID:    userID,
		MatchSize: size,
		Status:    model.TicketWaiting,
		CreatedAt: time.Now(),
	}
	s.tickets[t.ID] = t
	cp := *t
	return &cp, nil
}

func (s *memStore) GetByID(_ context.Context, id uint64) (*model.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, errors.New("ticket not found")
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) FindWaitingCandidate(_ context.Context, size model.MatchSize, excludeUserID uint64) (*model.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var waiting []*model.MatchTicket
	for _, t := range s.tickets {
		if t.Status == model.TicketWaiting && t.MatchSize == size && t.UserID != excludeUserID {
			waiting = append(waiting, t)
		}
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	sort.Slice(waiting, func(i, j int) bool {
		if waiting[i].CreatedAt.Equal(waiting[j].CreatedAt) {
			return waiting[i].ID < waiting[j].ID
		}
		return waiting[i].CreatedAt.Before(waiting[j].CreatedAt)
	})
	cp := *waiting[0]
	return &cp, nil
}

func (s *memStore) PairTickets(_ context.Context, aID, bID uint64, roomID, roomSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, okA := s.tickets[aID]
	b, okB := s.tickets[bID]
	if !okA || !okB || a.Status != model.TicketWaiting || b.Status != model.TicketWaiting {
		return repository.ErrStaleTicket
	}
	for _, pair := range [2][2]*model.MatchTicket{{a, b}, {b, a}} {
		t, opp := pair[0], pair[1]
		t.Status = model.TicketPaired
		oppID, rid, sec := opp.ID, roomID, roomSecret
		t.OpponentTicketID = &oppID
		t.RoomID = &rid
		t.RoomSecret = &sec
	}
	return nil
}

func (s *memStore) ExpireIfStillWaiting(_ context.Context, ticketID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok || t.Status != model.TicketWaiting {
		return false, nil
	}
	t.Status = model.TicketExpired
	return true, nil
}

func (s *memStore) ExpireOverdue(_ context.Context, cutoff time.Time) ([]*model.MatchTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []*model.MatchTicket
	for _, t := range s.tickets {
		if t.Status == model.TicketWaiting && !t.CreatedAt.After(cutoff) {
			t.Status = model.TicketExpired
			cp := *t
			expired = append(expired, &cp)
		}
	}
	return expired, nil
}

// recordingNotifier captures outcome deliveries.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifyEvent
}

type notifyEvent struct {
	userID  uint64
	outcome Outcome
	ticket  *model.MatchTicket
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint64, outcome Outcome, t *model.MatchTicket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifyEvent{userID: userID, outcome: outcome, ticket: t})
}

func (n *recordingNotifier) byOutcome(o Outcome) []notifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifyEvent
	for _, ev := range n.events {
		if ev.outcome == o {
			out = append(out, ev)
		}
	}
	return out
}

func insideWindow() time.Time {
	return time.Date(2025, 6, 10, 21, 5, 0, 0, time.Local)
}

func outsideWindow() time.Time {
	return time.Date(2025, 6, 10, 14, 0, 0, 0, time.Local)
}

func newTestEngine(t *testing.T, store TicketStore, timeout time.Duration) (*Engine, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	e := NewEngine(store, n, timeout, insideWindow)
	t.Cleanup(e.Stop)
	return e, n
}

func TestRequestOutsideWindow(t *testing.T) {
	n := &recordingNotifier{}
	e := NewEngine(newMemStore(), n, time.Minute, outsideWindow)
	defer e.Stop()

	if _, err := e.Request(context.Background(), 1, model.Size1v1); !errors.Is(err, ErrOutsideWindow) {
		t.Fatalf("expected ErrOutsideWindow, got %v", err)
	}
}

func TestRequestBadMatchSize(t *testing.T) {
	e, _ := newTestEngine(t, newMemStore(), time.Minute)
	if _, err := e.Request(context.Background(), 1, model.MatchSize("3v3")); !errors.Is(err, ErrBadMatchSize) {
		t.Fatalf("expected ErrBadMatchSize, got %v", err)
	}
}

func TestImmediatePairing(t *testing.T) {
	store := newMemStore()
	e, n := newTestEngine(t, store, time.Minute)
	ctx := context.Background()

	first, err := e.Request(ctx, 1, model.Size1v1)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if first.Status != model.TicketWaiting {
		t.Fatalf("first ticket should wait, got %s", first.Status)
	}

	second, err := e.Request(ctx, 2, model.Size1v1)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if second.Status != model.TicketPaired {
		t.Fatalf("second ticket should pair immediately, got %s", second.Status)
	}

	a, _ := store.GetByID(ctx, first.ID)
	b, _ := store.GetByID(ctx, second.ID)
	if a.Status != model.TicketPaired || b.Status != model.TicketPaired {
		t.Fatalf("both tickets should be paired, got %s/%s", a.Status, b.Status)
	}
	if a.RoomID == nil || b.RoomID == nil || *a.RoomID != *b.RoomID {
		t.Fatalf("room ids must match across the pair")
	}
	if a.RoomSecret == nil || b.RoomSecret == nil || *a.RoomSecret != *b.RoomSecret {
		t.Fatalf("room secrets must match across the pair")
	}
	if a.OpponentTicketID == nil || *a.OpponentTicketID != b.ID {
		t.Fatalf("first ticket must reference the second")
	}
	if b.OpponentTicketID == nil || *b.OpponentTicketID != a.ID {
		t.Fatalf("second ticket must reference the first")
	}

	paired := n.byOutcome(OutcomePaired)
	if len(paired) != 2 {
		t.Fatalf("expected 2 paired notifications, got %d", len(paired))
	}
	if paired[0].ticket.RoomID == nil || paired[0].ticket.RoomSecret == nil {
		t.Fatalf("paired notification must carry room credentials")
	}
}

func TestPairedTicketsAlwaysCarryCredentials(t *testing.T) {
	store := newMemStore()
	e, _ := newTestEngine(t, store, time.Minute)
	ctx := context.Background()

	if _, err := e.Request(ctx, 1, model.Size2v2); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := e.Request(ctx, 2, model.Size2v2); err != nil {
		t.Fatalf("request: %v", err)
	}
	for id := uint64(1); id <= 2; id++ {
		tk, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		set := tk.OpponentTicketID != nil && tk.RoomID != nil && tk.RoomSecret != nil
		if (tk.Status == model.TicketPaired) != set {
			t.Fatalf("ticket %d: status %s but credentials set=%v", id, tk.Status, set)
		}
	}
}

func TestAlreadyActive(t *testing.T) {
	e, _ := newTestEngine(t, newMemStore(), time.Minute)
	ctx := context.Background()

	if _, err := e.Request(ctx, 7, model.Size1v1); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := e.Request(ctx, 7, model.Size1v1); !errors.Is(err, repository.ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
}

func TestDifferentSizesDoNotPair(t *testing.T) {
	store := newMemStore()
	e, _ := newTestEngine(t, store, time.Minute)
	ctx := context.Background()

	if _, err := e.Request(ctx, 1, model.Size1v1); err != nil {
		t.Fatalf("request: %v", err)
	}
	tk, err := e.Request(ctx, 2, model.Size4v4)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if tk.Status != model.TicketWaiting {
		t.Fatalf("4v4 ticket should not pair with a 1v1 ticket, got %s", tk.Status)
	}
}

func TestLoneTicketExpires(t *testing.T) {
	store := newMemStore()
	e, n := newTestEngine(t, store, 40*time.Millisecond)
	ctx := context.Background()

	tk, err := e.Request(ctx, 1, model.Size2v2)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if tk.Status != model.TicketWaiting {
		t.Fatalf("lone ticket should wait, got %s", tk.Status)
	}

	deadline := time.After(2 * time.Second)
	for {
		cur, _ := store.GetByID(ctx, tk.ID)
		if cur.Status == model.TicketExpired {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("ticket never expired, status %s", cur.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}

	expired := n.byOutcome(OutcomeExpired)
	if len(expired) != 1 || expired[0].userID != 1 {
		t.Fatalf("expected one expiry notification for user 1, got %+v", expired)
	}
	if got := n.byOutcome(OutcomePaired); len(got) != 0 {
		t.Fatalf("lone ticket must never pair, got %d paired events", len(got))
	}
}

func TestTimerIsNoopAfterPairing(t *testing.T) {
	store := newMemStore()
	e, n := newTestEngine(t, store, 40*time.Millisecond)
	ctx := context.Background()

	first, err := e.Request(ctx, 1, model.Size1v1)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := e.Request(ctx, 2, model.Size1v1); err != nil {
		t.Fatalf("second request: %v", err)
	}

	// Let the first ticket's timer fire against the paired ticket.
	time.Sleep(150 * time.Millisecond)

	cur, _ := store.GetByID(ctx, first.ID)
	if cur.Status != model.TicketPaired {
		t.Fatalf("paired ticket must stay paired after the timer fires, got %s", cur.Status)
	}
	if got := n.byOutcome(OutcomeExpired); len(got) != 0 {
		t.Fatalf("timer firing on a paired ticket must not notify, got %d events", len(got))
	}
}

func TestConcurrentCrowdPairsOff(t *testing.T) {
	const players = 9 // odd on purpose: someone must be left over
	store := newMemStore()
	e, _ := newTestEngine(t, store, 40*time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= players; i++ {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			if _, err := e.Request(ctx, uid, model.Size1v1); err != nil {
				t.Errorf("request for user %d: %v", uid, err)
			}
		}(uint64(i))
	}
	wg.Wait()
	time.Sleep(150 * time.Millisecond) // let the leftover expire

	paired, expired := 0, 0
	seenOpponent := make(map[uint64]uint64)
	for id := uint64(1); id <= players; id++ {
		tk, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		switch tk.Status {
		case model.TicketPaired:
			paired++
			seenOpponent[tk.ID] = *tk.OpponentTicketID
		case model.TicketExpired:
			expired++
		default:
			t.Fatalf("ticket %d still %s after the dust settled", id, tk.Status)
		}
	}
	if paired+expired != players {
		t.Fatalf("tickets lost: %d paired + %d expired != %d", paired, expired, players)
	}
	if paired%2 != 0 {
		t.Fatalf("paired count must be even, got %d", paired)
	}
	if expired == 0 {
		t.Fatalf("odd crowd must leave at least one expired ticket")
	}
	for id, opp := range seenOpponent {
		if back, ok := seenOpponent[opp]; !ok || back != id {
			t.Fatalf("ticket %d's opponent %d does not reference it back", id, opp)
		}
	}
}

// staleOnceStore forces one ErrStaleTicket to exercise the bounded retry.
type staleOnceStore struct {
	*memStore
	mu     sync.Mutex
	staled bool
}

func (s *staleOnceStore) PairTickets(ctx context.Context, aID, bID uint64, roomID, roomSecret string) error {
	s.mu.Lock()
	first := !s.staled
	s.staled = true
	s.mu.Unlock()
	if first {
		return repository.ErrStaleTicket
	}
	return s.memStore.PairTickets(ctx, aID, bID, roomID, roomSecret)
}

func TestStalePairingIsRetried(t *testing.T) {
	store := &staleOnceStore{memStore: newMemStore()}
	e, _ := newTestEngine(t, store, time.Minute)
	ctx := context.Background()

	if _, err := e.Request(ctx, 1, model.Size1v1); err != nil {
		t.Fatalf("first request: %v", err)
	}
	tk, err := e.Request(ctx, 2, model.Size1v1)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if tk.Status != model.TicketPaired {
		t.Fatalf("second attempt should have paired after the stale retry, got %s", tk.Status)
	}
}

func TestSweeperExpiresOverdueTickets(t *testing.T) {
	store := newMemStore()
	n := &recordingNotifier{}
	e := NewEngine(store, n, 30*time.Millisecond, insideWindow)
	defer e.Stop()
	ctx := context.Background()

	// A ticket left over from a previous process: waiting, old, no timer armed.
	tk, err := store.CreateTicket(ctx, 5, model.Size1v1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.mu.Lock()
	store.tickets[tk.ID].CreatedAt = time.Now().Add(-time.Minute)
	store.mu.Unlock()

	sweepCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	go e.RunSweeper(sweepCtx, 20*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		cur, _ := store.GetByID(ctx, tk.ID)
		if cur.Status == model.TicketExpired {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("sweeper never expired the ticket")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := n.byOutcome(OutcomeExpired); len(got) != 1 {
		t.Fatalf("expected exactly one expiry notification, got %d", len(got))
	}
}
