package models

import "time"

// RequestStatus represents the lifecycle of a special request.
type RequestStatus string

// Possible special request statuses.
const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// SpecialRequest is a student petition tied to one offering, routed to the
// instructor who owns that offering.
type SpecialRequest struct {
	ID         int64         `db:"id" json:"id"`
	StudentID  int64         `db:"student_id" json:"student_id"`
	OfferingID int64         `db:"offering_id" json:"offering_id"`
	Reason     string        `db:"reason" json:"reason"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}
