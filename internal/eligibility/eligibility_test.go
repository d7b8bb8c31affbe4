package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unireg/registrar-api/internal/models"
)

func TestPrerequisitesSatisfied(t *testing.T) {
	course := &models.Course{Code: "CS301", Prerequisites: []string{"CS101", "CS201"}}

	active := []ActiveCourse{{CourseCode: "CS201"}, {CourseCode: "CS101"}}
	assert.True(t, PrerequisitesSatisfied(active, course), "order must not matter")

	partial := []ActiveCourse{{CourseCode: "CS101"}}
	assert.False(t, PrerequisitesSatisfied(partial, course))

	assert.True(t, PrerequisitesSatisfied(nil, &models.Course{Code: "CS101"}),
		"course without prerequisites is always satisfied")
}

func TestHasCapacity(t *testing.T) {
	assert.True(t, HasCapacity(&models.Offering{Capacity: 2, Enrolled: 1}))
	assert.False(t, HasCapacity(&models.Offering{Capacity: 2, Enrolled: 2}))
}

func TestScheduleConflicts(t *testing.T) {
	monWed := models.Schedule{Days: []string{"Mon", "Wed"}, StartTime: "09:00", EndTime: "10:30"}
	active := []ActiveCourse{{CourseCode: "CS101", Schedule: monWed}}

	sharedDaySameStart := &models.Offering{Schedule: models.Schedule{Days: []string{"Wed", "Fri"}, StartTime: "09:00", EndTime: "10:30"}}
	assert.True(t, ScheduleConflicts(active, sharedDaySameStart))

	sameStartDisjointDays := &models.Offering{Schedule: models.Schedule{Days: []string{"Tue", "Thu"}, StartTime: "09:00", EndTime: "10:30"}}
	assert.False(t, ScheduleConflicts(active, sameStartDisjointDays))

	sharedDayDifferentStart := &models.Offering{Schedule: models.Schedule{Days: []string{"Mon"}, StartTime: "11:00", EndTime: "12:30"}}
	assert.False(t, ScheduleConflicts(active, sharedDayDifferentStart))
}

func TestRegisteredCredits(t *testing.T) {
	active := []ActiveCourse{{Credits: 3}, {Credits: 4}}
	assert.Equal(t, 7, RegisteredCredits(active))
	assert.Equal(t, 0, RegisteredCredits(nil))
}
