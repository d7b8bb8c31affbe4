package store

import (
	"strings"
	"sync"

	"github.com/unireg/registrar-api/internal/models"
)

// Store owns the registrar state behind a single lock. Registration,
// enrollment counts, histories and notifications must mutate together, so
// every workflow runs as one View or Update transaction; there is no partial
// commit and no other transaction can observe intermediate state.
type Store struct {
	mu    sync.RWMutex
	state State
}

// State is the in-memory arena. All relations are id-to-id; derived views
// (student history, instructor queues) are recomputed from the arenas on
// demand. Accessors must only be called from within View or Update.
type State struct {
	courses     map[string]*models.Course
	courseOrder []string

	offerings     map[int64]*models.Offering
	offeringOrder []int64

	ledger          []*models.Registration
	registrationIDs map[int64]*models.Registration

	requests   []*models.SpecialRequest
	requestIDs map[int64]*models.SpecialRequest

	notifications   []*models.Notification
	notificationIDs map[int64]*models.Notification

	users        map[int64]*models.User
	usersByEmail map[string]int64
	userOrder    []int64

	refreshTokens map[string]*models.RefreshToken

	terms  map[string]*models.Term
	policy models.RegistrationPolicy

	nextOfferingID     int64
	nextRegistrationID int64
	nextRequestID      int64
	nextNotificationID int64
	nextUserID         int64
}

// New builds an empty store with the given starting policy.
func New(policy models.RegistrationPolicy) *Store {
	s := &Store{}
	s.state.reset()
	s.state.policy = policy
	return s
}

// View runs fn with shared read access to the state. fn must not mutate.
func (s *Store) View(fn func(*State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Update runs fn with exclusive access to the state.
func (s *Store) Update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (st *State) reset() {
	st.courses = make(map[string]*models.Course)
	st.courseOrder = nil
	st.offerings = make(map[int64]*models.Offering)
	st.offeringOrder = nil
	st.ledger = nil
	st.registrationIDs = make(map[int64]*models.Registration)
	st.requests = nil
	st.requestIDs = make(map[int64]*models.SpecialRequest)
	st.notifications = nil
	st.notificationIDs = make(map[int64]*models.Notification)
	st.users = make(map[int64]*models.User)
	st.usersByEmail = make(map[string]int64)
	st.userOrder = nil
	st.refreshTokens = make(map[string]*models.RefreshToken)
	st.terms = make(map[string]*models.Term)
	st.policy = models.DefaultRegistrationPolicy()
	st.nextOfferingID = 1
	st.nextRegistrationID = 1
	st.nextRequestID = 1
	st.nextNotificationID = 1
	st.nextUserID = 1
}

// Snapshot copies the full state for the persistence collaborator.
func (st *State) Snapshot() models.Snapshot {
	snap := models.Snapshot{Policy: st.policy}
	for _, code := range st.courseOrder {
		snap.Courses = append(snap.Courses, *st.courses[code])
	}
	for _, id := range st.offeringOrder {
		snap.Offerings = append(snap.Offerings, *st.offerings[id])
	}
	for _, reg := range st.ledger {
		snap.Registrations = append(snap.Registrations, *reg)
	}
	for _, req := range st.requests {
		snap.Requests = append(snap.Requests, *req)
	}
	for _, n := range st.notifications {
		snap.Notifications = append(snap.Notifications, *n)
	}
	for _, id := range st.userOrder {
		snap.Users = append(snap.Users, *st.users[id])
	}
	for _, t := range st.terms {
		snap.Terms = append(snap.Terms, *t)
	}
	return snap
}

// Restore replaces the state with the snapshot contents. Counters resume
// past the highest restored ids (ledger entries are never deleted, so the
// maximum id is the last one issued) and enrollment counts are recomputed
// from the ledger to re-establish the capacity invariant.
func (st *State) Restore(snap models.Snapshot) {
	st.reset()
	st.policy = snap.Policy
	for i := range snap.Courses {
		course := snap.Courses[i]
		st.courses[course.Code] = &course
		st.courseOrder = append(st.courseOrder, course.Code)
	}
	for i := range snap.Offerings {
		off := snap.Offerings[i]
		off.Enrolled = 0
		st.offerings[off.ID] = &off
		st.offeringOrder = append(st.offeringOrder, off.ID)
		if off.ID >= st.nextOfferingID {
			st.nextOfferingID = off.ID + 1
		}
	}
	for i := range snap.Registrations {
		reg := snap.Registrations[i]
		st.ledger = append(st.ledger, &reg)
		st.registrationIDs[reg.ID] = &reg
		if reg.ID >= st.nextRegistrationID {
			st.nextRegistrationID = reg.ID + 1
		}
		if reg.Status == models.RegistrationStatusRegistered {
			if off, ok := st.offerings[reg.OfferingID]; ok {
				off.Enrolled++
			}
		}
	}
	for i := range snap.Requests {
		req := snap.Requests[i]
		st.requests = append(st.requests, &req)
		st.requestIDs[req.ID] = &req
		if req.ID >= st.nextRequestID {
			st.nextRequestID = req.ID + 1
		}
	}
	for i := range snap.Notifications {
		n := snap.Notifications[i]
		st.notifications = append(st.notifications, &n)
		st.notificationIDs[n.ID] = &n
		if n.ID >= st.nextNotificationID {
			st.nextNotificationID = n.ID + 1
		}
	}
	for i := range snap.Users {
		user := snap.Users[i]
		st.users[user.ID] = &user
		st.usersByEmail[strings.ToLower(user.Email)] = user.ID
		st.userOrder = append(st.userOrder, user.ID)
		if user.ID >= st.nextUserID {
			st.nextUserID = user.ID + 1
		}
	}
	for i := range snap.Terms {
		term := snap.Terms[i]
		st.terms[term.Name] = &term
	}
}
