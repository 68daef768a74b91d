package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/internal/repository"
)

type mockUserRepo struct {
	findByID   func(ctx context.Context, id string) (*models.User, error)
	findDetail func(ctx context.Context, id string) (*models.UserDetail, error)
	list       func(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	createErr  error
	updateErr  error
	deleteErr  error

	createdUser     *models.User
	teacherProfile  *models.TeacherProfile
	studentProfile  *models.StudentProfile
	guardianProfile *models.GuardianProfile
	studentCount    int
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.findByID(ctx, id)
}

func (m *mockUserRepo) FindDetailByID(ctx context.Context, id string) (*models.UserDetail, error) {
	return m.findDetail(ctx, id)
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.list(ctx, filter)
}

// Create mirrors the real repository: the profile writer runs inside the
// same logical transaction as the user insert.
func (m *mockUserRepo) Create(ctx context.Context, user *models.User, profile repository.ProfileWriter) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "user-1"
	}
	m.createdUser = user
	if profile != nil {
		return profile(ctx, nil, user)
	}
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User, profile repository.ProfileWriter) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.createdUser = user
	if profile != nil {
		return profile(ctx, nil, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(context.Context, string) error {
	return m.deleteErr
}

func (m *mockUserRepo) CreateTeacherProfile(_ context.Context, _ *sqlx.Tx, p *models.TeacherProfile) error {
	m.teacherProfile = p
	return nil
}

func (m *mockUserRepo) CreateStudentProfile(_ context.Context, _ *sqlx.Tx, p *models.StudentProfile) error {
	m.studentProfile = p
	return nil
}

func (m *mockUserRepo) CreateGuardianProfile(_ context.Context, _ *sqlx.Tx, p *models.GuardianProfile) error {
	m.guardianProfile = p
	return nil
}

func (m *mockUserRepo) UpdateTeacherProfile(_ context.Context, _ *sqlx.Tx, _ string, specialization *string) error {
	m.teacherProfile = &models.TeacherProfile{Specialization: specialization}
	return nil
}

func (m *mockUserRepo) UpdateStudentProfile(_ context.Context, _ *sqlx.Tx, _ string, dateOfBirth *time.Time) error {
	m.studentProfile = &models.StudentProfile{DateOfBirth: dateOfBirth}
	return nil
}

func (m *mockUserRepo) UpdateGuardianProfile(_ context.Context, _ *sqlx.Tx, _ string, phoneNumber, address *string) error {
	m.guardianProfile = &models.GuardianProfile{PhoneNumber: phoneNumber, Address: address}
	return nil
}

func (m *mockUserRepo) NextStudentNumber(context.Context, *sqlx.Tx) (string, error) {
	m.studentCount++
	return "STU000042", nil
}

func detailFor(repo *mockUserRepo) func(ctx context.Context, id string) (*models.UserDetail, error) {
	return func(_ context.Context, id string) (*models.UserDetail, error) {
		detail := &models.UserDetail{}
		if repo.createdUser != nil {
			detail.User = *repo.createdUser
		} else {
			detail.User = models.User{ID: id}
		}
		detail.Teacher = repo.teacherProfile
		detail.Student = repo.studentProfile
		detail.Guardian = repo.guardianProfile
		return detail, nil
	}
}

func TestUserServiceCreateStudentAssignsNumber(t *testing.T) {
	repo := &mockUserRepo{}
	repo.findDetail = detailFor(repo)
	svc := NewUserService(repo)

	dob := time.Date(2010, 5, 14, 0, 0, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), models.CreateUserRequest{
		FirstName:   "Sam",
		LastName:    "Lee",
		Email:       "sam@example.com",
		Password:    "secret123",
		Role:        models.RoleStudent,
		DateOfBirth: &dob,
	})
	require.NoError(t, err)

	require.NotNil(t, detail.Student)
	assert.Equal(t, "STU000042", detail.Student.StudentNumber)
	assert.Equal(t, 1, repo.studentCount)
	assert.Equal(t, models.RoleStudent, detail.Role)

	// The stored hash verifies against the original password.
	require.NotNil(t, repo.createdUser)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.createdUser.PasswordHash), []byte("secret123")))
}

func TestUserServiceCreateTeacherProfile(t *testing.T) {
	repo := &mockUserRepo{}
	repo.findDetail = detailFor(repo)
	svc := NewUserService(repo)

	specialization := "mathematics"
	detail, err := svc.Create(context.Background(), models.CreateUserRequest{
		FirstName:      "Ada",
		LastName:       "King",
		Email:          "ada@example.com",
		Password:       "secret123",
		Role:           models.RoleTeacher,
		Specialization: &specialization,
	})
	require.NoError(t, err)

	require.NotNil(t, detail.Teacher)
	require.NotNil(t, detail.Teacher.Specialization)
	assert.Equal(t, "mathematics", *detail.Teacher.Specialization)
	assert.Nil(t, detail.Student)
}

func TestUserServiceCreateAdminHasNoProfile(t *testing.T) {
	repo := &mockUserRepo{}
	repo.findDetail = detailFor(repo)
	svc := NewUserService(repo)

	detail, err := svc.Create(context.Background(), models.CreateUserRequest{
		FirstName: "Root",
		LastName:  "Admin",
		Email:     "admin@example.com",
		Password:  "secret123",
		Role:      models.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Nil(t, detail.Teacher)
	assert.Nil(t, detail.Student)
	assert.Nil(t, detail.Guardian)
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		FirstName: "X",
		LastName:  "Y",
		Email:     "x@example.com",
		Password:  "secret123",
		Role:      "PRINCIPAL",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUserServiceCreateDuplicateEmailConflicts(t *testing.T) {
	repo := &mockUserRepo{createErr: &pq.Error{Code: "23505"}}
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), models.CreateUserRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "secret123",
		Role:      models.RoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestUserServiceUpdateGuardianContact(t *testing.T) {
	repo := &mockUserRepo{
		findByID: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "user-1", Role: models.RoleGuardian, FirstName: "Pat", LastName: "Smith"}, nil
		},
	}
	repo.findDetail = detailFor(repo)
	svc := NewUserService(repo)

	phone := "+15550101"
	_, err := svc.Update(context.Background(), "user-1", models.UpdateUserRequest{PhoneNumber: &phone})
	require.NoError(t, err)

	require.NotNil(t, repo.guardianProfile)
	require.NotNil(t, repo.guardianProfile.PhoneNumber)
	assert.Equal(t, "+15550101", *repo.guardianProfile.PhoneNumber)
}
