package models

import "time"

// Notification is an append-only per-user message. The read flag is the only
// mutable field.
type Notification struct {
	ID          int64     `db:"id" json:"id"`
	RecipientID int64     `db:"recipient_id" json:"recipient_id"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Read        bool      `db:"read" json:"read"`
}
