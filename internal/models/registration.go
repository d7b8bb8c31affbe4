package models

import "time"

// RegistrationStatus represents the lifecycle of a registration.
type RegistrationStatus string

// Possible registration statuses.
const (
	RegistrationStatusPending    RegistrationStatus = "PENDING"
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusDropped    RegistrationStatus = "DROPPED"
)

// Registration is a student's enrollment record against one offering.
// Entries are append-only; a drop flips the status, it never deletes.
type Registration struct {
	ID         int64              `db:"id" json:"id"`
	StudentID  int64              `db:"student_id" json:"student_id"`
	OfferingID int64              `db:"offering_id" json:"offering_id"`
	Status     RegistrationStatus `db:"status" json:"status"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}
