package repository

import (
	"context"
	"database/sql"

	"github.com/gamearena/arena-server/internal/model"
)

// NotificationRepo provides access to in-app notifications.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification row for a user.
func (r *NotificationRepo) Create(ctx context.Context, userID uint64, title, message, kind string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, message, kind) VALUES (?,?,?,?)`,
		userID, title, message, kind)
	return err
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, kind, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead flags one notification as read, scoped to its owner so a
// user cannot touch someone else's row.  Returns ErrForbidden when
// the row exists but belongs to another user, sql.ErrNoRows when it
// does not exist.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM notifications WHERE id = ? LIMIT 1`, id).Scan(&owner)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	return err
}
