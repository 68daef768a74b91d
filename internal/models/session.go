package models

import "time"

// SessionStatus represents the lifecycle of a class session. The transition
// DRAFT -> VALIDATED is one-directional; there is no un-validate operation.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "DRAFT"
	SessionStatusValidated SessionStatus = "VALIDATED"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	return s == SessionStatusDraft || s == SessionStatusValidated
}

// Session is a scheduled class meeting with a draft/validated lifecycle.
type Session struct {
	ID        string        `db:"id" json:"id"`
	ClassID   string        `db:"class_id" json:"classId"`
	TeacherID string        `db:"teacher_id" json:"teacherId"`
	Date      time.Time     `db:"date" json:"date"`
	StartTime time.Time     `db:"start_time" json:"startTime"`
	EndTime   time.Time     `db:"end_time" json:"endTime"`
	Status    SessionStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// SessionDetail extends a session with class and teacher context.
// Attendances is populated on single-session reads only, never on listings.
type SessionDetail struct {
	Session
	ClassName   string             `db:"class_name" json:"className"`
	TeacherName string             `db:"teacher_name" json:"teacherName"`
	Attendances []AttendanceDetail `db:"-" json:"attendances,omitempty"`
}

// SessionFilter scopes session listings.
type SessionFilter struct {
	Search    string
	Status    SessionStatus
	TeacherID string
	Page      int
	Limit     int
}

// CreateSessionRequest is the payload for scheduling a session.
type CreateSessionRequest struct {
	ClassID   string    `json:"classId" validate:"required,uuid"`
	TeacherID string    `json:"teacherId" validate:"required,uuid"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

// UpdateSessionRequest is the partial-update payload for a draft session.
type UpdateSessionRequest struct {
	Date      *time.Time `json:"date,omitempty"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}
