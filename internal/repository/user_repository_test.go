package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/school-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password_hash", "role", "created_at", "updated_at"})
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows().AddRow("user-1", "Jane", "Doe", "jane@example.com", "hash", "TEACHER", now, now))

	user, err := repo.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, models.RoleTeacher, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(userRows())

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateRunsProfileInTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO students`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{FirstName: "Sam", LastName: "Lee", Email: "sam@example.com", PasswordHash: "hash", Role: models.RoleStudent}
	err := repo.Create(context.Background(), user, func(ctx context.Context, tx *sqlx.Tx, u *models.User) error {
		return repo.CreateStudentProfile(ctx, tx, &models.StudentProfile{UserID: u.ID, StudentNumber: "STU000001"})
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateRollsBackOnProfileError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Email: "x@example.com", Role: models.RoleStudent},
		func(context.Context, *sqlx.Tx, *models.User) error {
			return sql.ErrConnDone
		})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRotateRefreshToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE id = \$1`).
		WithArgs("row-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next := &models.RefreshToken{UserID: "user-1", Token: "next-token", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.RotateRefreshToken(context.Background(), "row-old", next))
	assert.NotEmpty(t, next.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindRefreshToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM refresh_tokens WHERE user_id = \$1 AND token = \$2`).
		WithArgs("user-1", "token-value").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow("row-1", "user-1", "token-value", now.Add(time.Hour), now))

	token, err := repo.FindRefreshToken(context.Background(), "user-1", "token-value")
	require.NoError(t, err)
	assert.Equal(t, "row-1", token.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteRefreshTokensByValue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token = \$1`).
		WithArgs("token-value").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Deleting an absent token is not an error.
	require.NoError(t, repo.DeleteRefreshTokensByValue(context.Background(), "token-value"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
