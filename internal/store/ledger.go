package store

import (
	"time"

	"github.com/unireg/registrar-api/internal/models"
)

// CommitRegistration appends a REGISTERED ledger entry and increments the
// offering's enrollment. Callers must have validated capacity first; the
// ledger id counter is monotonic and ids are never reused.
func (st *State) CommitRegistration(studentID, offeringID int64) *models.Registration {
	reg := &models.Registration{
		ID:         st.nextRegistrationID,
		StudentID:  studentID,
		OfferingID: offeringID,
		Status:     models.RegistrationStatusRegistered,
		CreatedAt:  time.Now().UTC(),
	}
	st.nextRegistrationID++
	st.ledger = append(st.ledger, reg)
	st.registrationIDs[reg.ID] = reg
	if off, ok := st.offerings[offeringID]; ok && off.Enrolled < off.Capacity {
		off.Enrolled++
	}
	return reg
}

// DropRegistration marks the entry dropped and releases its seat. The entry
// stays in the ledger; history is append-only.
func (st *State) DropRegistration(reg *models.Registration) {
	reg.Status = models.RegistrationStatusDropped
	if off, ok := st.offerings[reg.OfferingID]; ok && off.Enrolled > 0 {
		off.Enrolled--
	}
}

// RegistrationByID looks up a ledger entry.
func (st *State) RegistrationByID(id int64) (*models.Registration, bool) {
	reg, ok := st.registrationIDs[id]
	return reg, ok
}

// Ledger returns the full registration history in insertion order.
func (st *State) Ledger() []models.Registration {
	out := make([]models.Registration, 0, len(st.ledger))
	for _, reg := range st.ledger {
		out = append(out, *reg)
	}
	return out
}

// StudentRegistrations recomputes a student's history from the ledger.
func (st *State) StudentRegistrations(studentID int64) []*models.Registration {
	var out []*models.Registration
	for _, reg := range st.ledger {
		if reg.StudentID == studentID {
			out = append(out, reg)
		}
	}
	return out
}

// RegisteredInOffering returns REGISTERED entries for the offering in
// ledger insertion order.
func (st *State) RegisteredInOffering(offeringID int64) []models.Registration {
	var out []models.Registration
	for _, reg := range st.ledger {
		if reg.OfferingID == offeringID && reg.Status == models.RegistrationStatusRegistered {
			out = append(out, *reg)
		}
	}
	return out
}

// HasActiveRegistration reports whether the student already holds a
// non-dropped entry for the offering.
func (st *State) HasActiveRegistration(studentID, offeringID int64) bool {
	for _, reg := range st.ledger {
		if reg.StudentID == studentID && reg.OfferingID == offeringID &&
			reg.Status != models.RegistrationStatusDropped {
			return true
		}
	}
	return false
}

// AppendRequest creates a PENDING special request.
func (st *State) AppendRequest(studentID, offeringID int64, reason string) *models.SpecialRequest {
	req := &models.SpecialRequest{
		ID:         st.nextRequestID,
		StudentID:  studentID,
		OfferingID: offeringID,
		Reason:     reason,
		Status:     models.RequestStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	st.nextRequestID++
	st.requests = append(st.requests, req)
	st.requestIDs[req.ID] = req
	return req
}

// RequestByID looks up a special request.
func (st *State) RequestByID(id int64) (*models.SpecialRequest, bool) {
	req, ok := st.requestIDs[id]
	return req, ok
}

// StudentRequests returns the requests a student has submitted.
func (st *State) StudentRequests(studentID int64) []models.SpecialRequest {
	var out []models.SpecialRequest
	for _, req := range st.requests {
		if req.StudentID == studentID {
			out = append(out, *req)
		}
	}
	return out
}

// PendingRequestsForInstructor recomputes an instructor's queue: pending
// requests whose offering the instructor owns, in submission order.
func (st *State) PendingRequestsForInstructor(instructorID int64) []models.SpecialRequest {
	var out []models.SpecialRequest
	for _, req := range st.requests {
		if req.Status != models.RequestStatusPending {
			continue
		}
		if off, ok := st.offerings[req.OfferingID]; ok && off.InstructorID == instructorID {
			out = append(out, *req)
		}
	}
	return out
}

// Emit appends a notification with a fresh sequential id.
func (st *State) Emit(recipientID int64, message string) *models.Notification {
	n := &models.Notification{
		ID:          st.nextNotificationID,
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	st.nextNotificationID++
	st.notifications = append(st.notifications, n)
	st.notificationIDs[n.ID] = n
	return n
}

// NotificationsFor returns a user's notifications in emission order,
// regardless of read status.
func (st *State) NotificationsFor(userID int64) []models.Notification {
	var out []models.Notification
	for _, n := range st.notifications {
		if n.RecipientID == userID {
			out = append(out, *n)
		}
	}
	return out
}

// NotificationByID looks up a notification.
func (st *State) NotificationByID(id int64) (*models.Notification, bool) {
	n, ok := st.notificationIDs[id]
	return n, ok
}
