package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/models"
)

func newSnapshotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSnapshotRepositorySave(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	now := time.Now().UTC()
	snap := models.Snapshot{
		Users: []models.User{{
			ID: 1, Email: "ada@example.com", PasswordHash: "hash", FullName: "Ada Lovelace",
			Role: models.RoleStudent, Active: true, CreatedAt: now,
			Student: &models.StudentProfile{Level: 2, Major: "Computer Science"},
		}},
		Courses: []models.Course{{Code: "CS201", Title: "Data Structures", Credits: 3, Prerequisites: []string{"CS101"}}},
		Offerings: []models.Offering{{
			ID: 1, CourseCode: "CS201", InstructorID: 2, Semester: "FALL2026",
			Schedule: models.Schedule{Days: []string{"Mon", "Wed"}, StartTime: "09:00", EndTime: "10:30"},
			Capacity: 30, Enrolled: 1,
		}},
		Registrations: []models.Registration{{ID: 1, StudentID: 1, OfferingID: 1, Status: models.RegistrationStatusRegistered, CreatedAt: now}},
		Notifications: []models.Notification{{ID: 1, RecipientID: 1, Message: "Successfully registered for Data Structures.", CreatedAt: now}},
		Terms:         []models.Term{{Name: "FALL2026", RegistrationOpen: true}},
		Policy:        models.RegistrationPolicy{MaxCredits: 18},
	}

	mock.ExpectBegin()
	for _, table := range []string{"notifications", "special_requests", "registrations", "course_prerequisites", "offerings", "courses", "users", "terms", "registration_policy"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO courses").
		WithArgs("CS201", "Data Structures", 3, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO course_prerequisites").
		WithArgs("CS201", "CS101", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO offerings").
		WithArgs(int64(1), "CS201", int64(2), "FALL2026", "Mon,Wed", "09:00", "10:30", 30, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO registrations").
		WithArgs(int64(1), int64(1), int64(1), "REGISTERED", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(int64(1), int64(1), "Successfully registered for Data Structures.", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO terms").
		WithArgs("FALL2026", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO registration_policy").
		WithArgs(18, false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLoadEmpty(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM courses").WillReturnRows(sqlmock.NewRows([]string{"code"}))
	mock.ExpectQuery("FROM course_prerequisites").WillReturnRows(sqlmock.NewRows([]string{"course_code"}))
	mock.ExpectQuery("FROM offerings").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM registrations").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM special_requests").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM notifications").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM terms").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectQuery("FROM registration_policy").WillReturnError(sql.ErrNoRows)

	_, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newSnapshotRepoMock(t)
	defer cleanup()
	repo := NewSnapshotRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users").WillReturnRows(
		sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "created_at", "level", "major", "department", "admin_role"}).
			AddRow(1, "ada@example.com", "hash", "Ada Lovelace", "STUDENT", true, now, 2, "Computer Science", nil, nil))
	mock.ExpectQuery("FROM courses").WillReturnRows(
		sqlmock.NewRows([]string{"code", "title", "credits", "description"}).
			AddRow("CS201", "Data Structures", 3, ""))
	mock.ExpectQuery("FROM course_prerequisites").WillReturnRows(
		sqlmock.NewRows([]string{"course_code", "prerequisite_code", "position"}).
			AddRow("CS201", "CS101", 0))
	mock.ExpectQuery("FROM offerings").WillReturnRows(
		sqlmock.NewRows([]string{"id", "course_code", "instructor_id", "semester", "days", "start_time", "end_time", "capacity", "enrolled"}).
			AddRow(1, "CS201", 2, "FALL2026", "Mon,Wed", "09:00", "10:30", 30, 1))
	mock.ExpectQuery("FROM registrations").WillReturnRows(
		sqlmock.NewRows([]string{"id", "student_id", "offering_id", "status", "created_at"}).
			AddRow(1, 1, 1, "REGISTERED", now))
	mock.ExpectQuery("FROM special_requests").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM notifications").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM terms").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectQuery("FROM registration_policy").WillReturnRows(
		sqlmock.NewRows([]string{"max_credits", "allow_conflicts", "allow_prereq_override"}).
			AddRow(18, false, false))

	snap, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)

	require.Len(t, snap.Users, 1)
	require.NotNil(t, snap.Users[0].Student)
	assert.Equal(t, "Computer Science", snap.Users[0].Student.Major)

	require.Len(t, snap.Courses, 1)
	assert.Equal(t, []string{"CS101"}, snap.Courses[0].Prerequisites)

	require.Len(t, snap.Offerings, 1)
	assert.Equal(t, []string{"Mon", "Wed"}, snap.Offerings[0].Schedule.Days)

	assert.Equal(t, 18, snap.Policy.MaxCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}
