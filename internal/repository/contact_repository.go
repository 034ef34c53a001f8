package repository

import (
	"context"
	"database/sql"
)

// ContactRepo stores contact-form submissions.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo returns a new ContactRepo bound to the given database.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts one contact message.
func (r *ContactRepo) Create(ctx context.Context, name, email, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, message) VALUES (?,?,?)`,
		name, email, message)
	return err
}
