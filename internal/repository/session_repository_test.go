package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/school-api/internal/models"
)

func sessionDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "class_id", "teacher_id", "date", "start_time", "end_time",
		"status", "created_at", "updated_at", "class_name", "teacher_name",
	})
}

func TestSessionRepositoryListFiltersByClassName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM sessions s(.+)LOWER\(c\.name\) LIKE \$1(.+)s\.status = \$2(.+)ORDER BY s\.date DESC`).
		WithArgs("%math%", models.SessionStatusDraft).
		WillReturnRows(sessionDetailRows().
			AddRow("session-1", "class-1", "teacher-1", now, now, now.Add(time.Hour),
				"DRAFT", now, now, "Math 101", "Jane Doe"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sessions s`).
		WithArgs("%math%", models.SessionStatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{
		Search: "Math",
		Status: models.SessionStatusDraft,
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Math 101", sessions[0].ClassName)
	assert.Equal(t, "Jane Doe", sessions[0].TeacherName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFiltersByTeacher(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM sessions s(.+)s\.teacher_id = \$1`).
		WithArgs("teacher-1").
		WillReturnRows(sessionDetailRows())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sessions s`).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sessions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`UPDATE sessions SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("session-1", models.SessionStatusValidated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "session-1", models.SessionStatusValidated))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`UPDATE sessions SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("missing", models.SessionStatusValidated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "missing", models.SessionStatusValidated), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateDefaultsToDraft(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	session := &models.Session{ClassID: "class-1", TeacherID: "teacher-1", Date: now, StartTime: now, EndTime: now.Add(time.Hour)}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.Equal(t, models.SessionStatusDraft, session.Status)
	assert.NotEmpty(t, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
