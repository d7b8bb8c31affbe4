package store

import (
	appErrors "github.com/unireg/registrar-api/pkg/errors"

	"github.com/unireg/registrar-api/internal/models"
)

// AddCourse registers a new catalog entry.
func (st *State) AddCourse(code, title string, credits int, description string) (*models.Course, error) {
	if _, exists := st.courses[code]; exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCourse, "course "+code+" already exists")
	}
	course := &models.Course{Code: code, Title: title, Credits: credits, Description: description}
	st.courses[code] = course
	st.courseOrder = append(st.courseOrder, code)
	return course, nil
}

// CourseByCode looks up a course.
func (st *State) CourseByCode(code string) (*models.Course, bool) {
	course, ok := st.courses[code]
	return course, ok
}

// Courses returns catalog entries in insertion order.
func (st *State) Courses() []models.Course {
	out := make([]models.Course, 0, len(st.courseOrder))
	for _, code := range st.courseOrder {
		out = append(out, *st.courses[code])
	}
	return out
}

// AddPrerequisite appends a prerequisite course code. Both courses must
// exist; no cycle detection is performed.
func (st *State) AddPrerequisite(code, prereqCode string) error {
	course, ok := st.courses[code]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "course "+code+" not found")
	}
	if _, ok := st.courses[prereqCode]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "prerequisite course "+prereqCode+" not found")
	}
	course.Prerequisites = append(course.Prerequisites, prereqCode)
	return nil
}

// AddOffering creates an offering under an existing course and assigns the
// next offering id.
func (st *State) AddOffering(courseCode string, instructorID int64, semester string, schedule models.Schedule, capacity int) (*models.Offering, error) {
	if _, ok := st.courses[courseCode]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course "+courseCode+" not found")
	}
	off := &models.Offering{
		ID:           st.nextOfferingID,
		CourseCode:   courseCode,
		InstructorID: instructorID,
		Semester:     semester,
		Schedule:     schedule,
		Capacity:     capacity,
	}
	st.nextOfferingID++
	st.offerings[off.ID] = off
	st.offeringOrder = append(st.offeringOrder, off.ID)
	return off, nil
}

// OfferingByID looks up an offering.
func (st *State) OfferingByID(id int64) (*models.Offering, bool) {
	off, ok := st.offerings[id]
	return off, ok
}

// Offerings returns all offerings in insertion order.
func (st *State) Offerings() []models.Offering {
	out := make([]models.Offering, 0, len(st.offeringOrder))
	for _, id := range st.offeringOrder {
		out = append(out, *st.offerings[id])
	}
	return out
}

// OfferingsByCourse returns the offerings scheduled for a course.
func (st *State) OfferingsByCourse(code string) []models.Offering {
	var out []models.Offering
	for _, id := range st.offeringOrder {
		if st.offerings[id].CourseCode == code {
			out = append(out, *st.offerings[id])
		}
	}
	return out
}

// RemoveCourse deletes a course only when no offering references it.
func (st *State) RemoveCourse(code string) error {
	if _, ok := st.courses[code]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "course "+code+" not found")
	}
	for _, id := range st.offeringOrder {
		if st.offerings[id].CourseCode == code {
			return appErrors.Clone(appErrors.ErrCourseInUse, "course "+code+" has offerings")
		}
	}
	delete(st.courses, code)
	for i, c := range st.courseOrder {
		if c == code {
			st.courseOrder = append(st.courseOrder[:i], st.courseOrder[i+1:]...)
			break
		}
	}
	return nil
}
