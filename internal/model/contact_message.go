package model

import "time"

// ContactMessage stores one submission of the public contact form.
type ContactMessage struct {
	ID        uint64    // contact_messages.id
	Name      string    // contact_messages.name
	Email     string    // contact_messages.email
	Message   string    // contact_messages.message
	CreatedAt time.Time // contact_messages.created_at
}
