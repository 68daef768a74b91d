package models

import "time"

// EnrollmentStatus represents the lifecycle of a student-class enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive       EnrollmentStatus = "ACTIVE"
	EnrollmentStatusEnrolledLate EnrollmentStatus = "ENROLLED_LATE"
	EnrollmentStatusDropped      EnrollmentStatus = "DROPPED"
	EnrollmentStatusCompleted    EnrollmentStatus = "COMPLETED"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusEnrolledLate, EnrollmentStatusDropped, EnrollmentStatusCompleted:
		return true
	default:
		return false
	}
}

// StudentClass links a student to a class. At most one row exists per
// (student, class) pair.
type StudentClass struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"studentId"`
	ClassID       string           `db:"class_id" json:"classId"`
	EnrolledAt    time.Time        `db:"enrolled_at" json:"enrolledAt"`
	EnrollmentEnd *time.Time       `db:"enrollment_end" json:"enrollmentEnd,omitempty"`
	Status        EnrollmentStatus `db:"status" json:"status"`
	Notes         *string          `db:"notes" json:"notes,omitempty"`
}

// StudentClassWithClass extends an enrollment with class context for
// classes-for-student listings.
type StudentClassWithClass struct {
	StudentClass
	ClassName  string `db:"class_name" json:"className"`
	ClassLevel string `db:"class_level" json:"classLevel"`
}

// StudentClassWithStudent extends an enrollment with student context for
// students-for-class listings.
type StudentClassWithStudent struct {
	StudentClass
	StudentName   string `db:"student_name" json:"studentName"`
	StudentNumber string `db:"student_number" json:"studentNumber"`
}

// EnrollRequest creates an enrollment.
type EnrollRequest struct {
	StudentID     string            `json:"studentId" validate:"required,uuid"`
	ClassID       string            `json:"classId" validate:"required,uuid"`
	Status        *EnrollmentStatus `json:"status,omitempty"`
	EnrollmentEnd *time.Time        `json:"enrollmentEnd,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
}

// UpdateEnrollmentRequest is the partial-update payload for an enrollment.
type UpdateEnrollmentRequest struct {
	Status        *EnrollmentStatus `json:"status,omitempty"`
	EnrollmentEnd *time.Time        `json:"enrollmentEnd,omitempty"`
	Notes         *string           `json:"notes,omitempty"`
}
