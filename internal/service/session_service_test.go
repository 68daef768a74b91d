package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

type mockSessionRepo struct {
	findByID     func(ctx context.Context, id string) (*models.Session, error)
	findDetail   func(ctx context.Context, id string) (*models.SessionDetail, error)
	list         func(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error)
	create       func(ctx context.Context, session *models.Session) error
	update       func(ctx context.Context, session *models.Session) error
	updateStatus func(ctx context.Context, id string, status models.SessionStatus) error
	delete       func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	return m.findByID(ctx, id)
}

func (m *mockSessionRepo) FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error) {
	return m.findDetail(ctx, id)
}

func (m *mockSessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error) {
	return m.list(ctx, filter)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	return m.create(ctx, session)
}

func (m *mockSessionRepo) Update(ctx context.Context, session *models.Session) error {
	return m.update(ctx, session)
}

func (m *mockSessionRepo) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	return m.updateStatus(ctx, id, status)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

type fakeCache struct {
	store       map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func (f *fakeCache) DeleteByPattern(context.Context, string) error {
	f.invalidated++
	f.store = map[string][]byte{}
	return nil
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	return appErr.Status
}

func draftSession() *models.Session {
	now := time.Now()
	return &models.Session{
		ID:        "session-1",
		ClassID:   "class-1",
		TeacherID: "teacher-1",
		Date:      now,
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Status:    models.SessionStatusDraft,
	}
}

func TestSessionServiceCreateRejectsInvertedTimes(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{}, nil, nil, 0, zap.NewNop())

	now := time.Now()
	_, err := svc.Create(context.Background(), models.CreateSessionRequest{
		ClassID:   "class-1",
		TeacherID: "teacher-1",
		Date:      now,
		StartTime: now.Add(time.Hour),
		EndTime:   now,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestSessionServiceValidate(t *testing.T) {
	session := draftSession()
	var updatedStatus models.SessionStatus
	repo := &mockSessionRepo{
		findByID: func(context.Context, string) (*models.Session, error) { return session, nil },
		updateStatus: func(_ context.Context, _ string, status models.SessionStatus) error {
			updatedStatus = status
			return nil
		},
	}
	svc := NewSessionService(repo, nil, nil, 0, zap.NewNop())

	result, err := svc.Validate(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusValidated, result.Status)
	assert.Equal(t, models.SessionStatusValidated, updatedStatus)
}

func TestSessionServiceValidateTwiceConflicts(t *testing.T) {
	session := draftSession()
	session.Status = models.SessionStatusValidated
	repo := &mockSessionRepo{
		findByID: func(context.Context, string) (*models.Session, error) { return session, nil },
	}
	svc := NewSessionService(repo, nil, nil, 0, zap.NewNop())

	_, err := svc.Validate(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestSessionServiceUpdateValidatedConflicts(t *testing.T) {
	session := draftSession()
	session.Status = models.SessionStatusValidated
	repo := &mockSessionRepo{
		findByID: func(context.Context, string) (*models.Session, error) { return session, nil },
	}
	svc := NewSessionService(repo, nil, nil, 0, zap.NewNop())

	date := time.Now()
	_, err := svc.Update(context.Background(), session.ID, models.UpdateSessionRequest{Date: &date})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestSessionServiceDeleteValidatedConflicts(t *testing.T) {
	session := draftSession()
	session.Status = models.SessionStatusValidated
	repo := &mockSessionRepo{
		findByID: func(context.Context, string) (*models.Session, error) { return session, nil },
	}
	svc := NewSessionService(repo, nil, nil, 0, zap.NewNop())

	err := svc.Delete(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

type stubMarksLister struct {
	marks []models.AttendanceDetail
}

func (s *stubMarksLister) ListBySession(context.Context, string) ([]models.AttendanceDetail, error) {
	return s.marks, nil
}

func TestSessionServiceGetIncludesAttendance(t *testing.T) {
	repo := &mockSessionRepo{
		findDetail: func(context.Context, string) (*models.SessionDetail, error) {
			detail := &models.SessionDetail{}
			detail.ID = "session-1"
			detail.ClassName = "Math 101"
			return detail, nil
		},
	}
	mark := models.AttendanceDetail{StudentName: "Ada King", StudentNumber: "STU000001"}
	mark.Status = models.AttendanceStatusPresent
	svc := NewSessionService(repo, &stubMarksLister{marks: []models.AttendanceDetail{mark}}, nil, 0, zap.NewNop())

	detail, err := svc.Get(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, detail.Attendances, 1)
	assert.Equal(t, "Ada King", detail.Attendances[0].StudentName)
}

func TestSessionServiceGetNotFound(t *testing.T) {
	repo := &mockSessionRepo{
		findDetail: func(context.Context, string) (*models.SessionDetail, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := NewSessionService(repo, nil, nil, 0, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestSessionServiceListUsesCache(t *testing.T) {
	listCalls := 0
	repo := &mockSessionRepo{
		list: func(context.Context, models.SessionFilter) ([]models.SessionDetail, int, error) {
			listCalls++
			detail := models.SessionDetail{}
			detail.ID = "session-1"
			detail.ClassName = "Math 101"
			return []models.SessionDetail{detail}, 1, nil
		},
	}
	cache := newFakeCache()
	svc := NewSessionService(repo, nil, cache, time.Minute, zap.NewNop())

	filter := models.SessionFilter{Search: "math", Page: 1, Limit: 10}

	first, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, pagination.Total)
	assert.Equal(t, 1, listCalls)

	second, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Math 101", second[0].ClassName)
	assert.Equal(t, 1, listCalls, "second read should come from cache")
}

func TestSessionServiceWritesInvalidateCache(t *testing.T) {
	session := draftSession()
	repo := &mockSessionRepo{
		findByID:     func(context.Context, string) (*models.Session, error) { return session, nil },
		create:       func(context.Context, *models.Session) error { return nil },
		updateStatus: func(context.Context, string, models.SessionStatus) error { return nil },
	}
	cache := newFakeCache()
	svc := NewSessionService(repo, nil, cache, time.Minute, zap.NewNop())

	now := time.Now()
	_, err := svc.Create(context.Background(), models.CreateSessionRequest{
		ClassID: "class-1", TeacherID: "teacher-1",
		Date: now, StartTime: now, EndTime: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.invalidated)
}
