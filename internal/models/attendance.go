package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// Attendance is a per-student mark tied to a session. At most one row exists
// per (session, student) pair.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"sessionId"`
	StudentID string           `db:"student_id" json:"studentId"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// AttendanceDetail extends an attendance row with student context.
type AttendanceDetail struct {
	Attendance
	StudentName   string `db:"student_name" json:"studentName"`
	StudentNumber string `db:"student_number" json:"studentNumber"`
}

// StudentAttendanceRow extends an attendance row with session context for
// per-student history listings.
type StudentAttendanceRow struct {
	Attendance
	SessionDate time.Time `db:"session_date" json:"sessionDate"`
	ClassName   string    `db:"class_name" json:"className"`
}

// MarkAttendanceRequest records a mark for a student in a session.
type MarkAttendanceRequest struct {
	SessionID string           `json:"sessionId" validate:"required,uuid"`
	StudentID string           `json:"studentId" validate:"required,uuid"`
	Status    AttendanceStatus `json:"status" validate:"required"`
	Notes     *string          `json:"notes,omitempty"`
}

// UpdateAttendanceRequest is the partial-update payload for a mark.
type UpdateAttendanceRequest struct {
	Status *AttendanceStatus `json:"status,omitempty"`
	Notes  *string           `json:"notes,omitempty"`
}
