package repository

import (
	"context"
	"database/sql"

	"github.com/gamearena/arena-server/internal/model"
)

// MatchRequestRepo provides CRUD operations for direct match
// requests between players.  Requests join the sender and receiver
// profiles so that listing endpoints can render player cards without
// extra round trips.
type MatchRequestRepo struct {
	db *sql.DB
}

// NewMatchRequestRepo returns a new MatchRequestRepo bound to the given database.
func NewMatchRequestRepo(db *sql.DB) *MatchRequestRepo { return &MatchRequestRepo{db: db} }

// RequestParty is the slice of a profile embedded in a request listing.
type RequestParty struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	GameUID  string `json:"game_uid"`
	Level    uint32 `json:"level"`
}

// RequestDetail is a match request together with both parties'
// player cards, as returned by the listing queries.
type RequestDetail struct {
	ID              uint64       `json:"id"`
	MatchType       string       `json:"match_type"`
	AvailableTime   string       `json:"available_time"`
	Status          string       `json:"status"`
	RejectionReason *string      `json:"rejection_reason,omitempty"`
	CreatedAt       string       `json:"created_at"`
	Sender          RequestParty `json:"sender"`
	Receiver        RequestParty `json:"receiver"`
}

// Create inserts a new PENDING request and returns its id.
func (r *MatchRequestRepo) Create(ctx context.Context, senderID, receiverID uint64, matchType, availableTime string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO match_requests (sender_id, receiver_id, match_type, available_time, status)
		 VALUES (?,?,?,?,'PENDING')`,
		senderID, receiverID, matchType, availableTime)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns a bare request row or sql.ErrNoRows.
func (r *MatchRequestRepo) GetByID(ctx context.Context, id uint64) (*model.MatchRequest, error) {
	var (
		m      model.MatchRequest
		reason sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sender_id, receiver_id, match_type, available_time, status, rejection_reason, created_at, updated_at
		 FROM match_requests WHERE id = ? LIMIT 1`, id).
		Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.MatchType, &m.AvailableTime, &m.Status, &reason, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		v := reason.String
		m.RejectionReason = &v
	}
	return &m, nil
}

// UpdateStatus resolves a PENDING request to ACCEPTED or REJECTED
// with an optional rejection reason.  The status guard makes the
// update conditional so a request cannot be resolved twice;
// ErrConflict is returned when the request already left PENDING.
func (r *MatchRequestRepo) UpdateStatus(ctx context.Context, id uint64, status string, reason *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE match_requests SET status = ?, rejection_reason = ?
		 WHERE id = ? AND status = 'PENDING'`,
		status, reason, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

const requestDetailQuery = `SELECT r.id, r.match_type, r.available_time, r.status, r.rejection_reason, r.created_at,
       s.user_id, s.username, s.game_uid, s.level,
       t.user_id, t.username, t.game_uid, t.level
FROM match_requests r
JOIN profiles s ON s.user_id = r.sender_id
JOIN profiles t ON t.user_id = r.receiver_id`

// ListIncoming returns requests addressed to the user, newest first.
func (r *MatchRequestRepo) ListIncoming(ctx context.Context, userID uint64) ([]RequestDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		requestDetailQuery+` WHERE r.receiver_id = ? ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequestDetails(rows)
}

// ListForUser returns requests the user sent or received, newest first.
func (r *MatchRequestRepo) ListForUser(ctx context.Context, userID uint64) ([]RequestDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		requestDetailQuery+` WHERE r.sender_id = ? OR r.receiver_id = ? ORDER BY r.created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequestDetails(rows)
}

func collectRequestDetails(rows *sql.Rows) ([]RequestDetail, error) {
	details := make([]RequestDetail, 0)
	for rows.Next() {
		var (
			d      RequestDetail
			reason sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.MatchType, &d.AvailableTime, &d.Status, &reason, &d.CreatedAt,
			&d.Sender.UserID, &d.Sender.Username, &d.Sender.GameUID, &d.Sender.Level,
			&d.Receiver.UserID, &d.Receiver.Username, &d.Receiver.GameUID, &d.Receiver.Level,
		); err != nil {
			return nil, err
		}
		if reason.Valid {
			v := reason.String
			d.RejectionReason = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
