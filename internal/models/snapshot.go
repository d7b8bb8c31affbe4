package models

// Snapshot is a full copy of the registrar state, exchanged between the
// in-memory store and the persistence collaborator. Prerequisites travel
// inside each Course; id counters are reconstructed from the highest ids
// since ledgers are append-only.
type Snapshot struct {
	Courses       []Course
	Offerings     []Offering
	Registrations []Registration
	Requests      []SpecialRequest
	Notifications []Notification
	Users         []User
	Terms         []Term
	Policy        RegistrationPolicy
}
