package models

// GuardianStudent links a guardian to a student. At most one row exists per
// (guardian, student) pair, and at most one link per student is primary.
type GuardianStudent struct {
	ID           string `db:"id" json:"id"`
	GuardianID   string `db:"guardian_id" json:"guardianId"`
	StudentID    string `db:"student_id" json:"studentId"`
	RelationType string `db:"relation_type" json:"relationType"`
	IsPrimary    bool   `db:"is_primary" json:"isPrimary"`
}

// GuardianStudentWithGuardian extends a link with guardian context.
type GuardianStudentWithGuardian struct {
	GuardianStudent
	GuardianName string  `db:"guardian_name" json:"guardianName"`
	PhoneNumber  *string `db:"phone_number" json:"phoneNumber,omitempty"`
}

// GuardianStudentWithStudent extends a link with student context.
type GuardianStudentWithStudent struct {
	GuardianStudent
	StudentName   string `db:"student_name" json:"studentName"`
	StudentNumber string `db:"student_number" json:"studentNumber"`
}

// CreateGuardianStudentRequest creates a guardian-student link.
type CreateGuardianStudentRequest struct {
	GuardianID   string `json:"guardianId" validate:"required,uuid"`
	StudentID    string `json:"studentId" validate:"required,uuid"`
	RelationType string `json:"relationType" validate:"required"`
	IsPrimary    bool   `json:"isPrimary"`
}
