package models

// RegistrationPolicy is the global policy administrators configure.
// MaxCredits of zero means no credit cap.
type RegistrationPolicy struct {
	MaxCredits          int  `db:"max_credits" json:"max_credits"`
	AllowConflicts      bool `db:"allow_conflicts" json:"allow_conflicts"`
	AllowPrereqOverride bool `db:"allow_prereq_override" json:"allow_prereq_override"`
}

// DefaultRegistrationPolicy returns the policy applied until an administrator
// changes it.
func DefaultRegistrationPolicy() RegistrationPolicy {
	return RegistrationPolicy{MaxCredits: 18}
}

// Term tracks whether registration is open for a semester label. Offerings
// reference terms by their semester string; terms never seen by an
// administrator default to open.
type Term struct {
	Name             string `db:"name" json:"name"`
	RegistrationOpen bool   `db:"registration_open" json:"registration_open"`
}
