package models

import (
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleTeacher  UserRole = "TEACHER"
	RoleStudent  UserRole = "STUDENT"
	RoleGuardian UserRole = "GUARDIAN"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleGuardian:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display and token claims.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// TeacherProfile is the role-specific record owned by TEACHER users.
type TeacherProfile struct {
	ID             string  `db:"id" json:"id"`
	UserID         string  `db:"user_id" json:"userId"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
}

// StudentProfile is the role-specific record owned by STUDENT users.
type StudentProfile struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userId"`
	StudentNumber string     `db:"student_number" json:"studentNumber"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
}

// GuardianProfile is the role-specific record owned by GUARDIAN users.
type GuardianProfile struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"userId"`
	PhoneNumber *string `db:"phone_number" json:"phoneNumber,omitempty"`
	Address     *string `db:"address" json:"address,omitempty"`
}

// UserDetail joins the user row with its role profile, if any.
type UserDetail struct {
	User
	Teacher  *TeacherProfile  `json:"teacher,omitempty"`
	Student  *StudentProfile  `json:"student,omitempty"`
	Guardian *GuardianProfile `json:"guardian,omitempty"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role   *UserRole
	Search string
	Page   int
	Limit  int
}

// CreateUserRequest is the payload for registering a user of any role.
type CreateUserRequest struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      UserRole `json:"role" validate:"required"`

	// Role-specific fields; required conditionally per role.
	Specialization *string    `json:"specialization,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber    *string    `json:"phoneNumber,omitempty"`
	Address        *string    `json:"address,omitempty"`
}

// UpdateUserRequest is the partial-update payload for a user.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=6"`

	Specialization *string    `json:"specialization,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber    *string    `json:"phoneNumber,omitempty"`
	Address        *string    `json:"address,omitempty"`
}
