package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/unireg/registrar-api/internal/models"
)

// SnapshotRepository persists full state snapshots to Postgres. The store is
// the source of truth; each save replaces the previous snapshot inside one
// transaction so readers never observe a half-written copy.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type userRow struct {
	ID           int64          `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	Role         string         `db:"role"`
	Active       bool           `db:"active"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	Level        sql.NullInt64  `db:"level"`
	Major        sql.NullString `db:"major"`
	Department   sql.NullString `db:"department"`
	AdminRole    sql.NullString `db:"admin_role"`
}

type offeringRow struct {
	ID           int64  `db:"id"`
	CourseCode   string `db:"course_code"`
	InstructorID int64  `db:"instructor_id"`
	Semester     string `db:"semester"`
	Days         string `db:"days"`
	StartTime    string `db:"start_time"`
	EndTime      string `db:"end_time"`
	Capacity     int    `db:"capacity"`
	Enrolled     int    `db:"enrolled"`
}

type prerequisiteRow struct {
	CourseCode       string `db:"course_code"`
	PrerequisiteCode string `db:"prerequisite_code"`
	Position         int    `db:"position"`
}

// Save replaces the stored snapshot with the provided one.
func (r *SnapshotRepository) Save(ctx context.Context, snap models.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	tables := []string{
		"notifications", "special_requests", "registrations",
		"course_prerequisites", "offerings", "courses",
		"users", "terms", "registration_policy",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, user := range snap.Users {
		row := userRow{
			ID:           user.ID,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			FullName:     user.FullName,
			Role:         string(user.Role),
			Active:       user.Active,
			CreatedAt:    sql.NullTime{Time: user.CreatedAt, Valid: !user.CreatedAt.IsZero()},
		}
		if user.Student != nil {
			row.Level = sql.NullInt64{Int64: int64(user.Student.Level), Valid: true}
			row.Major = sql.NullString{String: user.Student.Major, Valid: true}
		}
		if user.Instructor != nil {
			row.Department = sql.NullString{String: user.Instructor.Department, Valid: true}
		}
		if user.Admin != nil {
			row.AdminRole = sql.NullString{String: user.Admin.AdminRole, Valid: true}
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, level, major, department, admin_role)
			VALUES (:id, :email, :password_hash, :full_name, :role, :active, :created_at, :level, :major, :department, :admin_role)`, row); err != nil {
			return fmt.Errorf("insert user %d: %w", user.ID, err)
		}
	}

	for _, course := range snap.Courses {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO courses (code, title, credits, description)
			VALUES ($1, $2, $3, $4)`,
			course.Code, course.Title, course.Credits, course.Description); err != nil {
			return fmt.Errorf("insert course %s: %w", course.Code, err)
		}
		for i, prereq := range course.Prerequisites {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO course_prerequisites (course_code, prerequisite_code, position)
				VALUES ($1, $2, $3)`,
				course.Code, prereq, i); err != nil {
				return fmt.Errorf("insert prerequisite %s -> %s: %w", course.Code, prereq, err)
			}
		}
	}

	for _, off := range snap.Offerings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO offerings (id, course_code, instructor_id, semester, days, start_time, end_time, capacity, enrolled)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			off.ID, off.CourseCode, off.InstructorID, off.Semester,
			strings.Join(off.Schedule.Days, ","), off.Schedule.StartTime, off.Schedule.EndTime,
			off.Capacity, off.Enrolled); err != nil {
			return fmt.Errorf("insert offering %d: %w", off.ID, err)
		}
	}

	for _, reg := range snap.Registrations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO registrations (id, student_id, offering_id, status, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			reg.ID, reg.StudentID, reg.OfferingID, string(reg.Status), reg.CreatedAt); err != nil {
			return fmt.Errorf("insert registration %d: %w", reg.ID, err)
		}
	}

	for _, req := range snap.Requests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO special_requests (id, student_id, offering_id, reason, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			req.ID, req.StudentID, req.OfferingID, req.Reason, string(req.Status), req.CreatedAt); err != nil {
			return fmt.Errorf("insert request %d: %w", req.ID, err)
		}
	}

	for _, n := range snap.Notifications {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, recipient_id, message, created_at, read)
			VALUES ($1, $2, $3, $4, $5)`,
			n.ID, n.RecipientID, n.Message, n.CreatedAt, n.Read); err != nil {
			return fmt.Errorf("insert notification %d: %w", n.ID, err)
		}
	}

	for _, term := range snap.Terms {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO terms (name, registration_open)
			VALUES ($1, $2)`,
			term.Name, term.RegistrationOpen); err != nil {
			return fmt.Errorf("insert term %s: %w", term.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO registration_policy (max_credits, allow_conflicts, allow_prereq_override)
		VALUES ($1, $2, $3)`,
		snap.Policy.MaxCredits, snap.Policy.AllowConflicts, snap.Policy.AllowPrereqOverride); err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. The second return value is false when no
// snapshot has ever been saved.
func (r *SnapshotRepository) Load(ctx context.Context) (models.Snapshot, bool, error) {
	var snap models.Snapshot

	var userRows []userRow
	if err := r.db.SelectContext(ctx, &userRows, `
		SELECT id, email, password_hash, full_name, role, active, created_at, level, major, department, admin_role
		FROM users ORDER BY id`); err != nil {
		return snap, false, fmt.Errorf("load users: %w", err)
	}
	for _, row := range userRows {
		user := models.User{
			ID:           row.ID,
			Email:        row.Email,
			PasswordHash: row.PasswordHash,
			FullName:     row.FullName,
			Role:         models.UserRole(row.Role),
			Active:       row.Active,
		}
		if row.CreatedAt.Valid {
			user.CreatedAt = row.CreatedAt.Time
		}
		switch user.Role {
		case models.RoleStudent:
			user.Student = &models.StudentProfile{Level: int(row.Level.Int64), Major: row.Major.String}
		case models.RoleInstructor:
			user.Instructor = &models.InstructorProfile{Department: row.Department.String}
		case models.RoleAdmin:
			user.Admin = &models.AdminProfile{AdminRole: row.AdminRole.String}
		}
		snap.Users = append(snap.Users, user)
	}

	if err := r.db.SelectContext(ctx, &snap.Courses, `
		SELECT code, title, credits, description FROM courses ORDER BY code`); err != nil {
		return snap, false, fmt.Errorf("load courses: %w", err)
	}

	var prereqRows []prerequisiteRow
	if err := r.db.SelectContext(ctx, &prereqRows, `
		SELECT course_code, prerequisite_code, position
		FROM course_prerequisites ORDER BY course_code, position`); err != nil {
		return snap, false, fmt.Errorf("load prerequisites: %w", err)
	}
	byCode := make(map[string]int, len(snap.Courses))
	for i := range snap.Courses {
		byCode[snap.Courses[i].Code] = i
	}
	for _, row := range prereqRows {
		if i, ok := byCode[row.CourseCode]; ok {
			snap.Courses[i].Prerequisites = append(snap.Courses[i].Prerequisites, row.PrerequisiteCode)
		}
	}

	var offeringRows []offeringRow
	if err := r.db.SelectContext(ctx, &offeringRows, `
		SELECT id, course_code, instructor_id, semester, days, start_time, end_time, capacity, enrolled
		FROM offerings ORDER BY id`); err != nil {
		return snap, false, fmt.Errorf("load offerings: %w", err)
	}
	for _, row := range offeringRows {
		var days []string
		if row.Days != "" {
			days = strings.Split(row.Days, ",")
		}
		snap.Offerings = append(snap.Offerings, models.Offering{
			ID:           row.ID,
			CourseCode:   row.CourseCode,
			InstructorID: row.InstructorID,
			Semester:     row.Semester,
			Schedule:     models.Schedule{Days: days, StartTime: row.StartTime, EndTime: row.EndTime},
			Capacity:     row.Capacity,
			Enrolled:     row.Enrolled,
		})
	}

	if err := r.db.SelectContext(ctx, &snap.Registrations, `
		SELECT id, student_id, offering_id, status, created_at
		FROM registrations ORDER BY id`); err != nil {
		return snap, false, fmt.Errorf("load registrations: %w", err)
	}

	if err := r.db.SelectContext(ctx, &snap.Requests, `
		SELECT id, student_id, offering_id, reason, status, created_at
		FROM special_requests ORDER BY id`); err != nil {
		return snap, false, fmt.Errorf("load requests: %w", err)
	}

	if err := r.db.SelectContext(ctx, &snap.Notifications, `
		SELECT id, recipient_id, message, created_at, read
		FROM notifications ORDER BY id`); err != nil {
		return snap, false, fmt.Errorf("load notifications: %w", err)
	}

	if err := r.db.SelectContext(ctx, &snap.Terms, `
		SELECT name, registration_open FROM terms ORDER BY name`); err != nil {
		return snap, false, fmt.Errorf("load terms: %w", err)
	}

	err := r.db.GetContext(ctx, &snap.Policy, `
		SELECT max_credits, allow_conflicts, allow_prereq_override
		FROM registration_policy LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("load policy: %w", err)
	}

	return snap, true, nil
}
