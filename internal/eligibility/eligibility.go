// Package eligibility holds the pure decision rules of the registration
// pipeline. Functions operate on snapshots and never mutate state, so the
// engine can call them inside a transaction and tests can call them bare.
package eligibility

import "github.com/unireg/registrar-api/internal/models"

// ActiveCourse is one REGISTERED entry of a student's history resolved
// against the catalog.
type ActiveCourse struct {
	CourseCode string
	Credits    int
	Schedule   models.Schedule
}

// PrerequisitesSatisfied reports whether every prerequisite of the course is
// covered by a REGISTERED entry. All prerequisites must hold; the order of
// the prerequisite list does not affect the result.
func PrerequisitesSatisfied(active []ActiveCourse, course *models.Course) bool {
	for _, prereq := range course.Prerequisites {
		found := false
		for _, entry := range active {
			if entry.CourseCode == prereq {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// HasCapacity reports whether the offering can take one more registration.
func HasCapacity(off *models.Offering) bool {
	return off.Enrolled < off.Capacity
}

// ScheduleConflicts reports whether the candidate offering collides with any
// REGISTERED entry of the student's history.
func ScheduleConflicts(active []ActiveCourse, candidate *models.Offering) bool {
	for _, entry := range active {
		if entry.Schedule.ConflictsWith(candidate.Schedule) {
			return true
		}
	}
	return false
}

// RegisteredCredits sums the credits a student currently holds.
func RegisteredCredits(active []ActiveCourse) int {
	total := 0
	for _, entry := range active {
		total += entry.Credits
	}
	return total
}
