package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

const sessionListKeyPrefix = "sessions:list"

// SessionRepository is the persistence surface the session service depends
// on.
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindDetailByID(ctx context.Context, id string) (*models.SessionDetail, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, int, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
	Delete(ctx context.Context, id string) error
}

// SessionMarksLister loads the attendance rows of a session.
type SessionMarksLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error)
}

// ListCache stores list snapshots. A nil implementation disables caching.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cachedSessionList struct {
	Sessions   []models.SessionDetail `json:"sessions"`
	Pagination *models.Pagination     `json:"pagination"`
}

// SessionService manages the session lifecycle: sessions are created as
// drafts, edited while drafts, and become read-only once validated.
type SessionService struct {
	repo     SessionRepository
	marks    SessionMarksLister
	cache    ListCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(repo SessionRepository, marks SessionMarksLister, cache ListCache, cacheTTL time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{repo: repo, marks: marks, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Get returns a session with class and teacher context plus its attendance
// rows.
func (s *SessionService) Get(ctx context.Context, id string) (*models.SessionDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.FromError(err)
	}

	if s.marks != nil {
		detail.Attendances, err = s.marks.ListBySession(ctx, id)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
	}
	return detail, nil
}

// List returns sessions newest-first. Results are cached per filter
// combination and invalidated by every write.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown session status")
	}

	key := s.listCacheKey(filter)
	if s.cache != nil {
		var cached cachedSessionList
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Sessions, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("session list cache read failed", zap.Error(err))
		}
	}

	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.FromError(err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pagination := models.NewPagination(total, page, limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedSessionList{Sessions: sessions, Pagination: pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("session list cache write failed", zap.Error(err))
		}
	}

	return sessions, pagination, nil
}

// Create schedules a session as a draft.
func (s *SessionService) Create(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}

	session := &models.Session{
		ClassID:   req.ClassID,
		TeacherID: req.TeacherID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    models.SessionStatusDraft,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.invalidateListCache(ctx)
	return session, nil
}

// Update reschedules a draft session. Validated sessions are immutable.
func (s *SessionService) Update(ctx context.Context, id string, req models.UpdateSessionRequest) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.FromError(err)
	}

	if session.Status == models.SessionStatusValidated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot modify a validated session")
	}

	if req.Date != nil {
		session.Date = *req.Date
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}

	if !session.EndTime.After(session.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endTime must be after startTime")
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.invalidateListCache(ctx)
	return session, nil
}

// Validate moves a draft session to VALIDATED. The transition is
// one-directional; validating twice is a conflict.
func (s *SessionService) Validate(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.FromError(err)
	}

	if session.Status == models.SessionStatusValidated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session already validated")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.SessionStatusValidated); err != nil {
		return nil, appErrors.FromError(err)
	}
	session.Status = models.SessionStatusValidated

	s.invalidateListCache(ctx)
	return session, nil
}

// Delete removes a draft session and its attendance marks. Validated
// sessions cannot be deleted.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.FromError(err)
	}

	if session.Status == models.SessionStatusValidated {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete a validated session")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}

	s.invalidateListCache(ctx)
	return nil
}

func (s *SessionService) listCacheKey(filter models.SessionFilter) string {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return fmt.Sprintf("%s:search=%s:status=%s:teacher=%s:page=%d:limit=%d",
		sessionListKeyPrefix, filter.Search, filter.Status, filter.TeacherID, page, limit)
}

func (s *SessionService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, sessionListKeyPrefix+":*"); err != nil {
		s.logger.Warn("session list cache invalidation failed", zap.Error(err))
	}
}
