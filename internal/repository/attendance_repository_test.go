package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/school-api/internal/models"
)

func TestAttendanceRepositoryListBySession(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM attendances a(.+)JOIN students st(.+)WHERE a\.session_id = \$1(.+)ORDER BY student_name ASC`).
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "student_id", "status", "notes", "created_at", "updated_at",
			"student_name", "student_number",
		}).
			AddRow("mark-1", "session-1", "student-1", "PRESENT", nil, now, now, "Ada King", "STU000001").
			AddRow("mark-2", "session-1", "student-2", "LATE", "bus delay", now, now, "Sam Lee", "STU000002"))

	marks, err := repo.ListBySession(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, models.AttendanceStatusPresent, marks[0].Status)
	assert.Equal(t, "STU000002", marks[1].StudentNumber)
	require.NotNil(t, marks[1].Notes)
	assert.Equal(t, "bus delay", *marks[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByStudent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM attendances a(.+)JOIN sessions s(.+)WHERE a\.student_id = \$1(.+)ORDER BY s\.date DESC`).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "student_id", "status", "notes", "created_at", "updated_at",
			"session_date", "class_name",
		}).AddRow("mark-1", "session-1", "student-1", "ABSENT", nil, now, now, now, "Math 101"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM attendances WHERE student_id = \$1`).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.ListByStudent(context.Background(), "student-1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Math 101", rows[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(`INSERT INTO attendances`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	attendance := &models.Attendance{SessionID: "session-1", StudentID: "student-1", Status: models.AttendanceStatusPresent}
	require.NoError(t, repo.Create(context.Background(), attendance))
	assert.NotEmpty(t, attendance.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
