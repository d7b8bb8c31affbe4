// Package seed loads a small demo dataset for development environments.
package seed

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/store"
)

// Load populates the store with demo accounts, the introductory course chain
// and one offering per course. It is a no-op when any user already exists.
func Load(st *store.Store, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var seedErr error
	st.Update(func(s *store.State) {
		if len(s.Users()) > 0 {
			return
		}

		admin := models.User{
			Email: "admin@registrar.local", PasswordHash: string(hash),
			FullName: "Registrar Admin", Role: models.RoleAdmin, Active: true,
			Admin: &models.AdminProfile{AdminRole: "SUPERUSER"},
		}
		instructor := models.User{
			Email: "turing@registrar.local", PasswordHash: string(hash),
			FullName: "Alan Turing", Role: models.RoleInstructor, Active: true,
			Instructor: &models.InstructorProfile{Department: "Computer Science"},
		}
		student := models.User{
			Email: "ada@registrar.local", PasswordHash: string(hash),
			FullName: "Ada Lovelace", Role: models.RoleStudent, Active: true,
			Student: &models.StudentProfile{Level: 1, Major: "Computer Science"},
		}

		if _, err := s.AddUser(admin); err != nil {
			seedErr = err
			return
		}
		lecturer, err := s.AddUser(instructor)
		if err != nil {
			seedErr = err
			return
		}
		if _, err := s.AddUser(student); err != nil {
			seedErr = err
			return
		}

		courses := []struct {
			code, title, desc string
			credits           int
			prereq            string
		}{
			{"CS101", "Introduction to Programming", "Programming fundamentals", 3, ""},
			{"CS201", "Data Structures", "Lists, trees and graphs", 3, "CS101"},
			{"CS301", "Algorithms", "Design and analysis of algorithms", 3, "CS201"},
		}
		for _, c := range courses {
			if _, err := s.AddCourse(c.code, c.title, c.credits, c.desc); err != nil {
				seedErr = err
				return
			}
			if c.prereq != "" {
				if err := s.AddPrerequisite(c.code, c.prereq); err != nil {
					seedErr = err
					return
				}
			}
		}

		schedules := map[string]models.Schedule{
			"CS101": {Days: []string{"Mon", "Wed"}, StartTime: "09:00", EndTime: "10:30"},
			"CS201": {Days: []string{"Tue", "Thu"}, StartTime: "11:00", EndTime: "12:30"},
			"CS301": {Days: []string{"Mon", "Wed"}, StartTime: "14:00", EndTime: "15:30"},
		}
		for _, c := range courses {
			if _, err := s.AddOffering(c.code, lecturer.ID, "FALL2026", schedules[c.code], 30); err != nil {
				seedErr = err
				return
			}
		}
	})
	if seedErr != nil {
		return seedErr
	}

	logger.Info("seed data loaded")
	return nil
}
