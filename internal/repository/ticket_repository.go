package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/gamearena/arena-server/internal/model"
)

// TicketRepo provides data access to the vs_tickets table, the
// durable store behind the V/S matchmaking queue.  All mutations are
// atomic conditional statements so that concurrent pairing attempts
// can never both claim the same ticket: the WHERE status='WAITING'
// guard plus the affected-row count is the sole mutual-exclusion
// point of the matchmaking design.  Tickets are never deleted; they
// remain as match history.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, user_id, match_size, status, opponent_ticket_id, room_id, room_secret, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*model.MatchTicket, error) {
	var (
		t        model.MatchTicket
		opponent sql.NullInt64
		roomID   sql.NullString
		secret   sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &t.MatchSize, &t.Status, &opponent, &roomID, &secret, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if opponent.Valid {
		v := uint64(opponent.Int64)
		t.OpponentTicketID = &v
	}
	if roomID.Valid {
		v := roomID.String
		t.RoomID = &v
	}
	if secret.Valid {
		v := secret.String
		t.RoomSecret = &v
	}
	return &t, nil
}

// CreateTicket inserts a new WAITING ticket for the user, enforcing
// the one-active-ticket rule in the same statement: the conditional
// INSERT only fires when no WAITING or PAIRED ticket exists for the
// user.  Zero affected rows means the user is already active and
// ErrAlreadyActive is returned.  On success the freshly created row
// is read back so callers see database-assigned id and timestamps.
func (r *TicketRepo) CreateTicket(ctx context.Context, userID uint64, size model.MatchSize) (*model.MatchTicket, error) {
	const q = `INSERT INTO vs_tickets (user_id, match_size, status)
	           SELECT ?, ?, 'WAITING' FROM DUAL
	           WHERE NOT EXISTS (
	               SELECT 1 FROM vs_tickets WHERE user_id = ? AND status IN ('WAITING','PAIRED')
	           )`
	res, err := r.db.ExecContext(ctx, q, userID, size, userID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrAlreadyActive
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single ticket or sql.ErrNoRows.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.MatchTicket, error) {
	return scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM vs_tickets WHERE id = ? LIMIT 1`, id))
}

// GetByIDForUser returns a ticket only when it belongs to the given
// user.  ErrForbidden is returned for tickets owned by someone else,
// sql.ErrNoRows when the ticket does not exist.
func (r *TicketRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.MatchTicket, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, ErrForbidden
	}
	return t, nil
}

// FindWaitingCandidate returns the oldest WAITING ticket of the given
// size not owned by excludeUserID, or nil when the queue is empty.
// Ordering is created_at then id, which gives the FIFO fairness the
// pairing policy promises.
func (r *TicketRepo) FindWaitingCandidate(ctx context.Context, size model.MatchSize, excludeUserID uint64) (*model.MatchTicket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM vs_tickets
		 WHERE match_size = ? AND status = 'WAITING' AND user_id <> ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`, size, excludeUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// PairTickets atomically transitions two WAITING tickets into PAIRED
// state with reciprocal opponent references and shared room
// credentials.  Both conditional updates run in one transaction and
// each must hit exactly one row; otherwise the transaction is rolled
// back and ErrStaleTicket is returned, leaving both tickets
// untouched.
func (r *TicketRepo) PairTickets(ctx context.Context, aID, bID uint64, roomID, roomSecret string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE vs_tickets
	           SET status = 'PAIRED', opponent_ticket_id = ?, room_id = ?, room_secret = ?
	           WHERE id = ? AND status = 'WAITING'`
	for _, pair := range pairUpdateOrder(aID, bID) {
		res, err := tx.ExecContext(ctx, q, pair[1], roomID, roomSecret, pair[0])
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrStaleTicket
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// pairUpdateOrder returns the (ticket, opponent) update pairs with
// the lower ticket id first, so concurrent mutual pairings always
// take row locks in the same order and cannot deadlock each other.
func pairUpdateOrder(aID, bID uint64) [2][2]uint64 {
	if aID > bID {
		aID, bID = bID, aID
	}
	return [2][2]uint64{{aID, bID}, {bID, aID}}
}

// ExpireIfStillWaiting flips a ticket to EXPIRED only if it is still
// WAITING and reports whether anything changed.  A false return with
// nil error means the ticket already left the WAITING state (paired
// or expired by someone else) and the caller must not emit a timeout
// notification.
func (r *TicketRepo) ExpireIfStillWaiting(ctx context.Context, ticketID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vs_tickets SET status = 'EXPIRED' WHERE id = ? AND status = 'WAITING'`, ticketID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelTicket lets the owner withdraw a ticket early.  Same
// conditional-update discipline as expiry: only a WAITING ticket can
// be cancelled, and only by its owner.  ErrForbidden for someone
// else's ticket, ErrConflict when the ticket already paired or
// expired.
func (r *TicketRepo) CancelTicket(ctx context.Context, ticketID, userID uint64) error {
	t, err := r.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return ErrForbidden
	}
	changed, err := r.ExpireIfStillWaiting(ctx, ticketID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrConflict
	}
	return nil
}

// ExpireOverdue expires every WAITING ticket created at or before the
// cutoff and returns the affected tickets so the caller can notify
// their owners.  It backs the durable side of the timeout supervisor:
// in-process timers handle the common case, this sweep guarantees no
// ticket outlives its deadline across process restarts.  Select and
// update run in one transaction so each ticket is reported exactly
// once.
func (r *TicketRepo) ExpireOverdue(ctx context.Context, cutoff time.Time) ([]*model.MatchTicket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	rows, err := tx.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM vs_tickets
		 WHERE status = 'WAITING' AND created_at <= ?
		 FOR UPDATE`, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	var expired []*model.MatchTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		committed = true
		return nil, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE vs_tickets SET status = 'EXPIRED'
		 WHERE status = 'WAITING' AND created_at <= ?`, cutoff.UTC()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	for _, t := range expired {
		t.Status = model.TicketExpired
	}
	return expired, nil
}

// ListByUser returns the user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.MatchTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM vs_tickets WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]*model.MatchTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
