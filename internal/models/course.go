package models

import "strings"

// Course is a catalog entry. Immutable once created except for appended
// prerequisites; offerings reference it by code.
type Course struct {
	Code          string   `db:"code" json:"code"`
	Title         string   `db:"title" json:"title"`
	Credits       int      `db:"credits" json:"credits"`
	Description   string   `db:"description" json:"description"`
	Prerequisites []string `json:"prerequisites"`
}

// Schedule describes when an offering meets.
type Schedule struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// ConflictsWith reports whether two schedules collide: they share at least
// one day and their start times are textually identical.
func (s Schedule) ConflictsWith(other Schedule) bool {
	if s.StartTime != other.StartTime {
		return false
	}
	for _, day := range s.Days {
		for _, otherDay := range other.Days {
			if day == otherDay {
				return true
			}
		}
	}
	return false
}

// String renders the schedule as "Mon,Wed: 09:00 - 10:30".
func (s Schedule) String() string {
	return strings.Join(s.Days, ",") + ": " + s.StartTime + " - " + s.EndTime
}

// Offering is a scheduled instance of a Course for a semester.
type Offering struct {
	ID           int64    `db:"id" json:"id"`
	CourseCode   string   `db:"course_code" json:"course_code"`
	InstructorID int64    `db:"instructor_id" json:"instructor_id"`
	Semester     string   `db:"semester" json:"semester"`
	Schedule     Schedule `json:"schedule"`
	Capacity     int      `db:"capacity" json:"capacity"`
	Enrolled     int      `db:"enrolled" json:"enrolled"`
}

// OfferingDetail enriches an Offering with catalog context for responses.
type OfferingDetail struct {
	Offering
	CourseTitle    string `json:"course_title"`
	CourseCredits  int    `json:"course_credits"`
	InstructorName string `json:"instructor_name"`
}
