package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// User represents an account in the registrar. Role-specific data lives in
// exactly one of the profile fields matching Role.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Student    *StudentProfile    `json:"student,omitempty"`
	Instructor *InstructorProfile `json:"instructor,omitempty"`
	Admin      *AdminProfile      `json:"admin,omitempty"`
}

// StudentProfile holds the student payload of a User.
type StudentProfile struct {
	Level int    `db:"level" json:"level"`
	Major string `db:"major" json:"major"`
}

// InstructorProfile holds the instructor payload of a User.
type InstructorProfile struct {
	Department string `db:"department" json:"department"`
}

// AdminProfile holds the administrator payload of a User.
type AdminProfile struct {
	AdminRole string `db:"admin_role" json:"admin_role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
