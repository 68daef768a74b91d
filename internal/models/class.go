package models

import "time"

// ClassStatus represents the lifecycle of a class.
type ClassStatus string

const (
	ClassStatusActive   ClassStatus = "ACTIVE"
	ClassStatusArchived ClassStatus = "ARCHIVED"
)

// Valid returns true when the status is a supported value.
func (s ClassStatus) Valid() bool {
	return s == ClassStatusActive || s == ClassStatusArchived
}

// Class represents a taught group of students.
type Class struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Level     string      `db:"level" json:"level"`
	Capacity  int         `db:"capacity" json:"capacity"`
	StartDate time.Time   `db:"start_date" json:"startDate"`
	EndDate   *time.Time  `db:"end_date" json:"endDate,omitempty"`
	Status    ClassStatus `db:"status" json:"status"`
	SubjectID *string     `db:"subject_id" json:"subjectId,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Search string
	Status ClassStatus
	Page   int
	Limit  int
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name      string     `json:"name" validate:"required"`
	Level     string     `json:"level" validate:"required"`
	Capacity  int        `json:"capacity" validate:"required,gt=0"`
	StartDate time.Time  `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	SubjectID *string    `json:"subjectId,omitempty" validate:"omitempty,uuid"`
}

// UpdateClassRequest is the partial-update payload for a class.
type UpdateClassRequest struct {
	Name      *string      `json:"name,omitempty"`
	Level     *string      `json:"level,omitempty"`
	Capacity  *int         `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	StartDate *time.Time   `json:"startDate,omitempty"`
	EndDate   *time.Time   `json:"endDate,omitempty"`
	Status    *ClassStatus `json:"status,omitempty"`
	SubjectID *string      `json:"subjectId,omitempty" validate:"omitempty,uuid"`
}
