package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/school-api/internal/models"
)

type mockGuardianRepo struct {
	links         map[string]*models.GuardianStudent
	createErr     error
	setPrimaryErr error
	primaryCalls  []string
}

func newMockGuardianRepo() *mockGuardianRepo {
	return &mockGuardianRepo{links: map[string]*models.GuardianStudent{}}
}

func (m *mockGuardianRepo) FindByID(_ context.Context, id string) (*models.GuardianStudent, error) {
	link, ok := m.links[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return link, nil
}

func (m *mockGuardianRepo) ListByStudent(context.Context, string) ([]models.GuardianStudentWithGuardian, error) {
	return nil, nil
}

func (m *mockGuardianRepo) ListByGuardian(context.Context, string) ([]models.GuardianStudentWithStudent, error) {
	return nil, nil
}

func (m *mockGuardianRepo) Create(_ context.Context, link *models.GuardianStudent) error {
	if m.createErr != nil {
		return m.createErr
	}
	if link.ID == "" {
		link.ID = "link-1"
	}
	m.links[link.ID] = link
	return nil
}

// SetPrimary mimics the transactional demote-then-promote of the real
// repository.
func (m *mockGuardianRepo) SetPrimary(_ context.Context, id string) error {
	if m.setPrimaryErr != nil {
		return m.setPrimaryErr
	}
	target, ok := m.links[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.primaryCalls = append(m.primaryCalls, id)
	for _, link := range m.links {
		if link.StudentID == target.StudentID {
			link.IsPrimary = link.ID == id
		}
	}
	return nil
}

func (m *mockGuardianRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.links[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.links, id)
	return nil
}

func TestGuardianStudentServiceLink(t *testing.T) {
	repo := newMockGuardianRepo()
	svc := NewGuardianStudentService(repo)

	link, err := svc.Link(context.Background(), models.CreateGuardianStudentRequest{
		GuardianID:   "guardian-1",
		StudentID:    "student-1",
		RelationType: "mother",
	})
	require.NoError(t, err)
	assert.False(t, link.IsPrimary)
	assert.Empty(t, repo.primaryCalls)
}

func TestGuardianStudentServiceLinkAsPrimaryDemotesOthers(t *testing.T) {
	repo := newMockGuardianRepo()
	repo.links["link-0"] = &models.GuardianStudent{
		ID: "link-0", GuardianID: "guardian-0", StudentID: "student-1", IsPrimary: true,
	}
	svc := NewGuardianStudentService(repo)

	link, err := svc.Link(context.Background(), models.CreateGuardianStudentRequest{
		GuardianID:   "guardian-1",
		StudentID:    "student-1",
		RelationType: "father",
		IsPrimary:    true,
	})
	require.NoError(t, err)

	assert.True(t, link.IsPrimary)
	assert.False(t, repo.links["link-0"].IsPrimary, "previous primary link should be demoted")
}

func TestGuardianStudentServiceLinkDuplicateConflicts(t *testing.T) {
	repo := newMockGuardianRepo()
	repo.createErr = &pq.Error{Code: "23505"}
	svc := NewGuardianStudentService(repo)

	_, err := svc.Link(context.Background(), models.CreateGuardianStudentRequest{
		GuardianID:   "guardian-1",
		StudentID:    "student-1",
		RelationType: "mother",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestGuardianStudentServiceSetPrimary(t *testing.T) {
	repo := newMockGuardianRepo()
	repo.links["link-0"] = &models.GuardianStudent{ID: "link-0", StudentID: "student-1", IsPrimary: true}
	repo.links["link-1"] = &models.GuardianStudent{ID: "link-1", StudentID: "student-1"}
	svc := NewGuardianStudentService(repo)

	link, err := svc.SetPrimary(context.Background(), "link-1")
	require.NoError(t, err)

	assert.True(t, link.IsPrimary)
	assert.False(t, repo.links["link-0"].IsPrimary)
}

func TestGuardianStudentServiceSetPrimaryNotFound(t *testing.T) {
	svc := NewGuardianStudentService(newMockGuardianRepo())

	_, err := svc.SetPrimary(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestGuardianStudentServiceUnlinkNotFound(t *testing.T) {
	svc := NewGuardianStudentService(newMockGuardianRepo())

	err := svc.Unlink(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
